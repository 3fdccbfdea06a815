package roster

import (
	"github.com/volatiletech/null/v8"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
)

// Genders
const (
	GenderMale   = "Laki-laki"
	GenderFemale = "Perempuan"
)

// Subject categories
const (
	CategoryGeneral    = "Umum"
	CategoryVocational = "Kejuruan"
)

var (
	Genders    = []string{GenderMale, GenderFemale}
	Categories = []string{CategoryGeneral, CategoryVocational}

	// errors
	ErrClassNotFound      = core.NewNotFoundError("Kelas not found")
	ErrStudentNotFound    = core.NewNotFoundError("Siswa not found")
	ErrTeacherNotFound    = core.NewNotFoundError("Guru not found")
	ErrSubjectNotFound    = core.NewNotFoundError("Mata pelajaran not found")
	ErrAssignmentNotFound = core.NewNotFoundError("Assignment not found")
	ErrAssignmentExists   = core.NewValidationError(errAssignmentExists)
)

type Class struct {
	ID    int    `json:"id_kelas" db:"id_kelas"`
	Major string `json:"jurusan" db:"jurusan"`
	Name  string `json:"kelas" db:"kelas"`
}

type Student struct {
	ID        int         `json:"id_siswa" db:"id_siswa"`
	ClassID   null.Int    `json:"id_kelas" db:"id_kelas"`
	NISN      string      `json:"nisn" db:"nisn"`
	Name      string      `json:"nama" db:"nama"`
	Gender    string      `json:"jenis_kelamin" db:"jenis_kelamin"`
	Address   null.String `json:"alamat" db:"alamat"`
	Phone     null.String `json:"no_hp" db:"no_hp"`
	BirthDate core.Date   `json:"tanggal_lahir" db:"tanggal_lahir"`
}

type Teacher struct {
	ID          int          `json:"id_guru" db:"id_guru"`
	NIP         string       `json:"nip" db:"nip"`
	Name        string       `json:"nama" db:"nama"`
	Gender      string       `json:"jenis_kelamin" db:"jenis_kelamin"`
	Email       null.String  `json:"email" db:"email"`
	Phone       null.String  `json:"no_hp" db:"no_hp"`
	ClassID     null.Int     `json:"id_kelas" db:"id_kelas"`
	Assignments []Assignment `json:"mapel_diampu" db:"-"`
}

// TeacherRef is the teacher as embedded in an Assignment.
type TeacherRef struct {
	NIP     string      `json:"nip"`
	Name    string      `json:"nama"`
	Gender  string      `json:"jenis_kelamin"`
	Email   null.String `json:"email"`
	Phone   null.String `json:"no_hp"`
	ClassID null.Int    `json:"id_kelas"`
}

type Subject struct {
	ID       int    `json:"id_mapel" db:"id_mapel"`
	Name     string `json:"nama_mapel" db:"nama_mapel"`
	Category string `json:"kategori" db:"kategori"`
}

// Assignment (mapel diampu) records that a teacher teaches a subject, optionally to one class.
type Assignment struct {
	ID        int      `json:"id_ampu" db:"id_ampu"`
	SubjectID int      `json:"id_mapel" db:"id_mapel"`
	ClassID   null.Int `json:"id_kelas" db:"id_kelas"`
	TeacherID int      `json:"id_guru" db:"id_guru"`

	Subject *Subject    `json:"mapel" db:"-"`
	Class   *Class      `json:"kelas" db:"-"`
	Teacher *TeacherRef `json:"guru" db:"-"`
}

func (t Teacher) Ref() *TeacherRef {
	return &TeacherRef{
		NIP:     t.NIP,
		Name:    t.Name,
		Gender:  t.Gender,
		Email:   t.Email,
		Phone:   t.Phone,
		ClassID: t.ClassID,
	}
}

// StudentFilter selects one Student. The first non-zero field is used.
type StudentFilter struct {
	ID   int
	NISN string
}

// TeacherFilter selects one Teacher. The first non-zero field is used.
type TeacherFilter struct {
	ID  int
	NIP string
}

// StudentQuery filters Student lists; zero values match everything.
type StudentQuery struct {
	ClassIDs []int
	Page     core.Pagination
}

// AssignmentFilter filters Assignment lists; zero values match everything.
type AssignmentFilter struct {
	TeacherID int
	ClassID   int
	SubjectID int
}
