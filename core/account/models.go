package account

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
)

// Account (pengguna) is a login identity, linked to at most one Teacher or Student.
type Account struct {
	ID           int         `json:"id_user" db:"id_user"`
	TeacherID    null.Int    `json:"id_guru" db:"id_guru"`
	StudentID    null.Int    `json:"id_siswa" db:"id_siswa"`
	Username     string      `json:"username" db:"username"`
	Email        null.String `json:"email" db:"email"`
	PasswordHash string      `json:"-" db:"password"`
	Role         Role        `json:"role" db:"role"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"` // UTC
	LastLogin    null.Time   `json:"last_login" db:"last_login"` // UTC
}

func (acc *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	acc.PasswordHash = string(hash)
	return nil
}

func (acc *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(pwd))
}

func (acc Account) IsAdmin() bool   { return acc.Role == RoleAdmin }
func (acc Account) IsTeacher() bool { return acc.Role == RoleTeacher }
func (acc Account) IsStudent() bool { return acc.Role == RoleStudent }

// Summary is the public view of an Account.
type Summary struct {
	ID        int      `json:"id_user"`
	Username  string   `json:"username"`
	Role      Role     `json:"role"`
	TeacherID null.Int `json:"id_guru"`
	StudentID null.Int `json:"id_siswa"`
}

func (acc Account) Summary() Summary {
	return Summary{
		ID:        acc.ID,
		Username:  acc.Username,
		Role:      acc.Role,
		TeacherID: acc.TeacherID,
		StudentID: acc.StudentID,
	}
}

// Profile is an Account with its linked roster record.
type Profile struct {
	ID       int             `json:"id_user"`
	Username string          `json:"username"`
	Role     Role            `json:"role"`
	Teacher  *roster.Teacher `json:"guru,omitempty"`
	Student  *roster.Student `json:"siswa,omitempty"`
}

// GetFilter selects one Account. The first non-zero field is used.
type GetFilter struct {
	ID        int
	Username  string
	Email     string
	TeacherID int
	StudentID int
}

// Registration contains what is needed to sign up. Role specific fields are checked by Service.Register.
//
// Username is trimmed and lowercased, then must be 3 to 50 characters made of letters, digits
// and underscores. Password must satisfy the password policy:
//   - at least 8 characters and no whitespace
//   - not entirely numeric
//   - at least one uppercase letter, one lowercase letter, one digit and one special character
//   - not similar (difflib quick ratio >= 0.7) to the username, e-mail or name
//   - not in the common passwords list
type Registration struct {
	Username          string `json:"username" validate:"required,min=3,max=50,alphanum_"`
	Password          string `json:"password" validate:"required"`
	Role              Role   `json:"role" validate:"required,role"`
	NISN              string `json:"nisn" validate:"max=20"`
	NIP               string `json:"nip" validate:"max=30"`
	Name              string `json:"nama" validate:"max=100"`
	Gender            string `json:"jenis_kelamin" validate:"omitempty,gender"`
	Phone             string `json:"no_hp" validate:"max=15"`
	Email             string `json:"email" validate:"omitempty,email,max=100"`
	SubjectID         *int   `json:"id_mapel"`
	TeacherClassID    *int   `json:"id_kelas_guru"`
	RegisteredClassID *int   `json:"id_kelas_registered"`
}

func (reg *Registration) Validate(validate *validator.Validate) error {
	reg.Username = core.CleanString(reg.Username, true /* lower */)
	reg.Email = core.CleanString(reg.Email, true /* lower */)
	reg.NISN = core.CleanString(reg.NISN)
	reg.NIP = core.CleanString(reg.NIP)
	reg.Name = core.CleanString(reg.Name)
	reg.Phone = core.CleanString(reg.Phone)
	return validate.Struct(reg)
}

// ProfileUpdate lists the fields an account may change on itself. Fields that do not apply to the
// account's role are ignored.
type ProfileUpdate struct {
	Name      *string    `json:"nama" validate:"omitempty,max=100"`
	Gender    *string    `json:"jenis_kelamin" validate:"omitempty,gender"`
	Email     *string    `json:"email" validate:"omitempty,email,max=100"`
	Phone     *string    `json:"no_hp" validate:"omitempty,max=15"`
	Address   *string    `json:"alamat"`
	BirthDate *core.Date `json:"tanggal_lahir"`
	Password  *string    `json:"password"`

	// set by Validate, used by the password policy
	username string
}

func (up *ProfileUpdate) Validate(acc Account, validate *validator.Validate) error {
	for _, s := range []*string{up.Name, up.Email, up.Phone, up.Address} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	if up.Email != nil {
		*up.Email = core.CleanString(*up.Email, true /* lower */)
	}
	// nama and jenis_kelamin cannot be blanked
	if up.Name != nil && *up.Name == "" {
		up.Name = nil
	}
	if up.Gender != nil && *up.Gender == "" {
		up.Gender = nil
	}
	if up.Password != nil && *up.Password == "" {
		up.Password = nil
	}
	up.username = acc.Username
	return validate.Struct(up)
}

// ResetPassword is the payload of a password reset confirmation.
type ResetPassword struct {
	UID      string `json:"uid" validate:"required"`
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (rp ResetPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }
