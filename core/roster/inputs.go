package roster

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
)

var errAssignmentExists = errors.New("Assignment already exists")

// ClassInput is the payload used to create or replace a Class.
type ClassInput struct {
	Major string `json:"jurusan" validate:"required,max=100"`
	Name  string `json:"kelas" validate:"required,max=50"`
}

func (in *ClassInput) Validate(validate *validator.Validate) error {
	in.Major = core.CleanString(in.Major)
	in.Name = core.CleanString(in.Name)
	return validate.Struct(in)
}

// StudentInput is the payload used to create or replace a Student.
type StudentInput struct {
	ClassID   *int      `json:"id_kelas"`
	NISN      string    `json:"nisn" validate:"required,max=20"`
	Name      string    `json:"nama" validate:"required,max=100"`
	Gender    string    `json:"jenis_kelamin" validate:"required,gender"`
	Address   string    `json:"alamat"`
	Phone     string    `json:"no_hp" validate:"max=15"`
	BirthDate core.Date `json:"tanggal_lahir"`
}

func (in *StudentInput) Validate(validate *validator.Validate) error {
	in.NISN = core.CleanString(in.NISN)
	in.Name = core.CleanString(in.Name)
	in.Address = core.CleanString(in.Address)
	in.Phone = core.CleanString(in.Phone)
	return validate.Struct(in)
}

func (in StudentInput) student(id int) Student {
	return Student{
		ID:        id,
		ClassID:   null.IntFromPtr(in.ClassID),
		NISN:      in.NISN,
		Name:      in.Name,
		Gender:    in.Gender,
		Address:   null.NewString(in.Address, in.Address != ""),
		Phone:     null.NewString(in.Phone, in.Phone != ""),
		BirthDate: in.BirthDate,
	}
}

// AssignmentRef is a (subject, class) pair given when creating a Teacher.
type AssignmentRef struct {
	SubjectID int  `json:"id_mapel" validate:"required"`
	ClassID   *int `json:"id_kelas"`
}

// TeacherInput is the payload used to create or replace a Teacher.
type TeacherInput struct {
	NIP         string          `json:"nip" validate:"required,max=30"`
	Name        string          `json:"nama" validate:"required,max=100"`
	Gender      string          `json:"jenis_kelamin" validate:"required,gender"`
	Email       string          `json:"email" validate:"omitempty,email,max=100"`
	Phone       string          `json:"no_hp" validate:"max=15"`
	ClassID     *int            `json:"id_kelas"`
	Assignments []AssignmentRef `json:"assignments" validate:"dive"`
}

func (in *TeacherInput) Validate(validate *validator.Validate) error {
	in.NIP = core.CleanString(in.NIP)
	in.Name = core.CleanString(in.Name)
	in.Email = core.CleanString(in.Email, true /* lower */)
	in.Phone = core.CleanString(in.Phone)
	return validate.Struct(in)
}

func (in TeacherInput) teacher(id int) Teacher {
	return Teacher{
		ID:      id,
		NIP:     in.NIP,
		Name:    in.Name,
		Gender:  in.Gender,
		Email:   null.NewString(in.Email, in.Email != ""),
		Phone:   null.NewString(in.Phone, in.Phone != ""),
		ClassID: null.IntFromPtr(in.ClassID),
	}
}

// SubjectInput is the payload used to create or replace a Subject.
type SubjectInput struct {
	Name     string `json:"nama_mapel" validate:"required,max=100"`
	Category string `json:"kategori" validate:"required,category"`
}

func (in *SubjectInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	return validate.Struct(in)
}

// AssignmentInput is the payload used to create or replace an Assignment.
type AssignmentInput struct {
	SubjectID int  `json:"id_mapel" validate:"required"`
	ClassID   *int `json:"id_kelas"`
	TeacherID int  `json:"id_guru" validate:"required"`
}

func (in *AssignmentInput) Validate(validate *validator.Validate) error {
	return validate.Struct(in)
}

var (
	genderTag    = "gender"
	genderText   = "jenis_kelamin must be one of: Laki-laki, Perempuan"
	categoryTag  = "category"
	categoryText = "kategori must be one of: Umum, Kejuruan"
)

// InitValidators registers the roster validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterEnumValidation(validate, translator, genderTag, genderText, Genders...)
	core.RegisterEnumValidation(validate, translator, categoryTag, categoryText, Categories...)
}
