package academic

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
)

// Attendance statuses
const (
	StatusPresent = "Hadir"
	StatusExcused = "Izin"
	StatusSick    = "Sakit"
	StatusAbsent  = "Alpa"
)

var (
	Statuses = []string{StatusPresent, StatusExcused, StatusSick, StatusAbsent}

	// errors
	ErrNotStudent = core.NewValidationError(errors.New("Only students can view their grades here"))
)

// Grade (nilai) is a student's score in one subject. Score is the integer mean of Midterm and Final.
type Grade struct {
	ID        int `json:"id_nilai" db:"id_nilai"`
	StudentID int `json:"id_siswa" db:"id_siswa"`
	SubjectID int `json:"id_mapel" db:"id_mapel"`
	Midterm   int `json:"nilai_uts" db:"nilai_uts"`
	Final     int `json:"nilai_uas" db:"nilai_uas"`
	Score     int `json:"nilai_akhir" db:"nilai_akhir"`

	Subject *roster.Subject `json:"mapel" db:"-"`
}

// FinalScore computes nilai_akhir.
func FinalScore(midterm, final int) int {
	return (midterm + final) / 2
}

// GradeInput is the payload used to record a grade. Missing scores count as 0.
type GradeInput struct {
	StudentID int  `json:"id_siswa" validate:"required"`
	SubjectID int  `json:"id_mapel" validate:"required"`
	Midterm   *int `json:"nilai_uts" validate:"omitempty,min=0,max=100"`
	Final     *int `json:"nilai_uas" validate:"omitempty,min=0,max=100"`
}

func (in *GradeInput) Validate(validate *validator.Validate) error {
	return validate.Struct(in)
}

// Attendance (absensi) is one attendance mark of a student on a date.
type Attendance struct {
	ID        int       `json:"id_absensi" db:"id_absensi"`
	StudentID int       `json:"id_siswa" db:"id_siswa"`
	ClassID   null.Int  `json:"id_kelas" db:"id_kelas"`
	Date      core.Date `json:"tanggal" db:"tanggal"`
	Status    string    `json:"status" db:"status"`
}

// AttendanceInput is the payload used to record today's attendance of a student.
type AttendanceInput struct {
	StudentID int    `json:"id_siswa" query:"id_siswa" form:"id_siswa" validate:"required"`
	ClassID   int    `json:"id_kelas" query:"id_kelas" form:"id_kelas" validate:"required"`
	Status    string `json:"status" query:"status" form:"status" validate:"required,attendance_status"`
}

func (in *AttendanceInput) Validate(validate *validator.Validate) error {
	in.Status = core.CleanString(in.Status)
	return validate.Struct(in)
}

// Recap counts attendance marks by status.
type Recap map[string]int

// RosterEntry is a student of a taught class with its grade in the taught subject, if any.
type RosterEntry struct {
	StudentID int    `json:"id_siswa"`
	Name      string `json:"nama"`
	NISN      string `json:"nisn"`
	Grade     *Grade `json:"nilai"`
}

// TeachingRoster is one assignment of a teacher with the students it covers.
type TeachingRoster struct {
	AssignmentID int           `json:"id_ampu"`
	ClassID      null.Int      `json:"id_kelas"`
	ClassName    string        `json:"kelas_nama"`
	SubjectID    int           `json:"id_mapel"`
	SubjectName  string        `json:"mapel_nama"`
	Students     []RosterEntry `json:"students"`
}

// GradeFilter filters Grade lists; zero values match everything.
type GradeFilter struct {
	StudentID int
	SubjectID int
}

var (
	statusTag  = "attendance_status"
	statusText = "status must be one of: Hadir, Izin, Sakit, Alpa"
)

// InitValidators registers the academic validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterEnumValidation(validate, translator, statusTag, statusText, Statuses...)
}
