package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
)

const (
	classColumns      = "id_kelas, jurusan, kelas"
	studentColumns    = "id_siswa, id_kelas, nisn, nama, jenis_kelamin, alamat, no_hp, tanggal_lahir"
	teacherColumns    = "id_guru, nip, nama, jenis_kelamin, email, no_hp, id_kelas"
	subjectColumns    = "id_mapel, nama_mapel, kategori"
	assignmentColumns = "id_ampu, id_mapel, id_kelas, id_guru"
)

type rosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) roster.Repository {
	return &rosterRepository{db: db}
}

// Classes

func (repo *rosterRepository) CreateClass(ctx context.Context, c roster.Class, exec ...core.DBExecutor) (roster.Class, error) {
	q := "INSERT INTO kelas (jurusan, kelas) VALUES ($1, $2) RETURNING " + classColumns
	err := getExec(repo.db, exec).GetContext(ctx, &c, q, c.Major, c.Name)
	return c, errors.Wrap(mapError(err, nil), "inserting kelas")
}

func (repo *rosterRepository) GetClass(ctx context.Context, id int, exec ...core.DBExecutor) (roster.Class, error) {
	var c roster.Class
	q := "SELECT " + classColumns + " FROM kelas WHERE id_kelas = $1"
	err := getExec(repo.db, exec).GetContext(ctx, &c, q, id)
	return c, mapError(err, roster.ErrClassNotFound)
}

func (repo *rosterRepository) ListClasses(ctx context.Context, page core.Pagination, exec ...core.DBExecutor) ([]roster.Class, error) {
	classes := make([]roster.Class, 0)
	q := "SELECT " + classColumns + " FROM kelas ORDER BY id_kelas LIMIT $1 OFFSET $2"
	err := getExec(repo.db, exec).SelectContext(ctx, &classes, q, page.Limit, page.Skip)
	return classes, errors.Wrap(err, "selecting kelas")
}

func (repo *rosterRepository) UpdateClass(ctx context.Context, c roster.Class, exec ...core.DBExecutor) (roster.Class, error) {
	q := "UPDATE kelas SET jurusan = $2, kelas = $3 WHERE id_kelas = $1 RETURNING " + classColumns
	err := getExec(repo.db, exec).GetContext(ctx, &c, q, c.ID, c.Major, c.Name)
	return c, mapError(err, roster.ErrClassNotFound)
}

func (repo *rosterRepository) DeleteClass(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.db, exec).ExecContext(ctx, "DELETE FROM kelas WHERE id_kelas = $1", id)
	if err != nil {
		return mapError(err, nil)
	}
	return checkAffected(res, roster.ErrClassNotFound)
}

// Students

func (repo *rosterRepository) CreateStudent(ctx context.Context, s roster.Student, exec ...core.DBExecutor) (roster.Student, error) {
	q := `INSERT INTO siswa (id_kelas, nisn, nama, jenis_kelamin, alamat, no_hp, tanggal_lahir)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING ` + studentColumns
	err := getExec(repo.db, exec).GetContext(ctx, &s, q,
		s.ClassID, s.NISN, s.Name, s.Gender, s.Address, s.Phone, s.BirthDate)
	return s, mapError(err, nil)
}

func (repo *rosterRepository) GetStudent(ctx context.Context, filter roster.StudentFilter, exec ...core.DBExecutor) (roster.Student, error) {
	var (
		s   roster.Student
		q   = "SELECT " + studentColumns + " FROM siswa WHERE "
		arg interface{}
	)
	switch {
	case filter.ID != 0:
		q, arg = q+"id_siswa = $1", filter.ID
	case filter.NISN != "":
		q, arg = q+"nisn = $1", filter.NISN
	default:
		return s, roster.ErrStudentNotFound
	}
	err := getExec(repo.db, exec).GetContext(ctx, &s, q, arg)
	return s, mapError(err, roster.ErrStudentNotFound)
}

func (repo *rosterRepository) ListStudents(ctx context.Context, query roster.StudentQuery, exec ...core.DBExecutor) ([]roster.Student, error) {
	var (
		q    = "SELECT " + studentColumns + " FROM siswa"
		args []interface{}
		err  error
	)
	if query.ClassIDs != nil {
		if len(query.ClassIDs) == 0 {
			return []roster.Student{}, nil
		}
		if q, args, err = sqlx.In(q+" WHERE id_kelas IN (?)", query.ClassIDs); err != nil {
			return nil, errors.Wrap(err, "building query")
		}
	}
	q += " ORDER BY nama, id_siswa"
	if query.Page.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, query.Page.Limit, query.Page.Skip)
	}

	students := make([]roster.Student, 0)
	ex := getExec(repo.db, exec)
	err = ex.SelectContext(ctx, &students, ex.Rebind(q), args...)
	return students, errors.Wrap(err, "selecting siswa")
}

func (repo *rosterRepository) CountStudents(ctx context.Context, classIDs []int, exec ...core.DBExecutor) (int, error) {
	if len(classIDs) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In("SELECT count(*) FROM siswa WHERE id_kelas IN (?)", classIDs)
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	var n int
	ex := getExec(repo.db, exec)
	err = ex.GetContext(ctx, &n, ex.Rebind(q), args...)
	return n, errors.Wrap(err, "counting siswa")
}

func (repo *rosterRepository) UpdateStudent(ctx context.Context, s roster.Student, exec ...core.DBExecutor) (roster.Student, error) {
	q := `UPDATE siswa SET id_kelas = $2, nisn = $3, nama = $4, jenis_kelamin = $5, alamat = $6, no_hp = $7, tanggal_lahir = $8
		WHERE id_siswa = $1 RETURNING ` + studentColumns
	err := getExec(repo.db, exec).GetContext(ctx, &s, q,
		s.ID, s.ClassID, s.NISN, s.Name, s.Gender, s.Address, s.Phone, s.BirthDate)
	return s, mapError(err, roster.ErrStudentNotFound)
}

func (repo *rosterRepository) DeleteStudent(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.db, exec).ExecContext(ctx, "DELETE FROM siswa WHERE id_siswa = $1", id)
	if err != nil {
		return mapError(err, nil)
	}
	return checkAffected(res, roster.ErrStudentNotFound)
}

// Teachers

func (repo *rosterRepository) CreateTeacher(ctx context.Context, t roster.Teacher, exec ...core.DBExecutor) (roster.Teacher, error) {
	q := `INSERT INTO guru (nip, nama, jenis_kelamin, email, no_hp, id_kelas)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING ` + teacherColumns
	err := getExec(repo.db, exec).GetContext(ctx, &t, q, t.NIP, t.Name, t.Gender, t.Email, t.Phone, t.ClassID)
	return t, mapError(err, nil)
}

func (repo *rosterRepository) GetTeacher(ctx context.Context, filter roster.TeacherFilter, exec ...core.DBExecutor) (roster.Teacher, error) {
	var (
		t   roster.Teacher
		q   = "SELECT " + teacherColumns + " FROM guru WHERE "
		arg interface{}
	)
	switch {
	case filter.ID != 0:
		q, arg = q+"id_guru = $1", filter.ID
	case filter.NIP != "":
		q, arg = q+"nip = $1", filter.NIP
	default:
		return t, roster.ErrTeacherNotFound
	}
	err := getExec(repo.db, exec).GetContext(ctx, &t, q, arg)
	return t, mapError(err, roster.ErrTeacherNotFound)
}

func (repo *rosterRepository) ListTeachers(ctx context.Context, page core.Pagination, exec ...core.DBExecutor) ([]roster.Teacher, error) {
	teachers := make([]roster.Teacher, 0)
	q := "SELECT " + teacherColumns + " FROM guru ORDER BY id_guru LIMIT $1 OFFSET $2"
	err := getExec(repo.db, exec).SelectContext(ctx, &teachers, q, page.Limit, page.Skip)
	return teachers, errors.Wrap(err, "selecting guru")
}

func (repo *rosterRepository) UpdateTeacher(ctx context.Context, t roster.Teacher, exec ...core.DBExecutor) (roster.Teacher, error) {
	q := `UPDATE guru SET nip = $2, nama = $3, jenis_kelamin = $4, email = $5, no_hp = $6, id_kelas = $7
		WHERE id_guru = $1 RETURNING ` + teacherColumns
	err := getExec(repo.db, exec).GetContext(ctx, &t, q, t.ID, t.NIP, t.Name, t.Gender, t.Email, t.Phone, t.ClassID)
	return t, mapError(err, roster.ErrTeacherNotFound)
}

func (repo *rosterRepository) DeleteTeacher(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.db, exec).ExecContext(ctx, "DELETE FROM guru WHERE id_guru = $1", id)
	if err != nil {
		return mapError(err, nil)
	}
	return checkAffected(res, roster.ErrTeacherNotFound)
}

// Subjects

func (repo *rosterRepository) CreateSubject(ctx context.Context, s roster.Subject, exec ...core.DBExecutor) (roster.Subject, error) {
	q := "INSERT INTO mata_pelajaran (nama_mapel, kategori) VALUES ($1, $2) RETURNING " + subjectColumns
	err := getExec(repo.db, exec).GetContext(ctx, &s, q, s.Name, s.Category)
	return s, mapError(err, nil)
}

func (repo *rosterRepository) GetSubject(ctx context.Context, id int, exec ...core.DBExecutor) (roster.Subject, error) {
	var s roster.Subject
	q := "SELECT " + subjectColumns + " FROM mata_pelajaran WHERE id_mapel = $1"
	err := getExec(repo.db, exec).GetContext(ctx, &s, q, id)
	return s, mapError(err, roster.ErrSubjectNotFound)
}

func (repo *rosterRepository) ListSubjects(ctx context.Context, page core.Pagination, exec ...core.DBExecutor) ([]roster.Subject, error) {
	subjects := make([]roster.Subject, 0)
	q := "SELECT " + subjectColumns + " FROM mata_pelajaran ORDER BY id_mapel LIMIT $1 OFFSET $2"
	err := getExec(repo.db, exec).SelectContext(ctx, &subjects, q, page.Limit, page.Skip)
	return subjects, errors.Wrap(err, "selecting mata_pelajaran")
}

func (repo *rosterRepository) UpdateSubject(ctx context.Context, s roster.Subject, exec ...core.DBExecutor) (roster.Subject, error) {
	q := "UPDATE mata_pelajaran SET nama_mapel = $2, kategori = $3 WHERE id_mapel = $1 RETURNING " + subjectColumns
	err := getExec(repo.db, exec).GetContext(ctx, &s, q, s.ID, s.Name, s.Category)
	return s, mapError(err, roster.ErrSubjectNotFound)
}

func (repo *rosterRepository) DeleteSubject(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.db, exec).ExecContext(ctx, "DELETE FROM mata_pelajaran WHERE id_mapel = $1", id)
	if err != nil {
		return mapError(err, nil)
	}
	return checkAffected(res, roster.ErrSubjectNotFound)
}

// Assignments

func (repo *rosterRepository) CreateAssignment(ctx context.Context, a roster.Assignment, exec ...core.DBExecutor) (roster.Assignment, error) {
	q := "INSERT INTO mapel_diampu (id_mapel, id_kelas, id_guru) VALUES ($1, $2, $3) RETURNING " + assignmentColumns
	err := getExec(repo.db, exec).GetContext(ctx, &a, q, a.SubjectID, a.ClassID, a.TeacherID)
	return a, mapError(err, nil)
}

func (repo *rosterRepository) GetAssignment(ctx context.Context, id int, exec ...core.DBExecutor) (roster.Assignment, error) {
	var a roster.Assignment
	q := "SELECT " + assignmentColumns + " FROM mapel_diampu WHERE id_ampu = $1"
	err := getExec(repo.db, exec).GetContext(ctx, &a, q, id)
	return a, mapError(err, roster.ErrAssignmentNotFound)
}

func (repo *rosterRepository) FindAssignment(ctx context.Context, teacherID, subjectID int, classID null.Int, exec ...core.DBExecutor) (roster.Assignment, error) {
	var a roster.Assignment
	q := "SELECT " + assignmentColumns + ` FROM mapel_diampu
		WHERE id_guru = $1 AND id_mapel = $2 AND id_kelas IS NOT DISTINCT FROM $3 LIMIT 1`
	err := getExec(repo.db, exec).GetContext(ctx, &a, q, teacherID, subjectID, classID)
	return a, mapError(err, roster.ErrAssignmentNotFound)
}

func (repo *rosterRepository) ListAssignments(ctx context.Context, filter roster.AssignmentFilter, exec ...core.DBExecutor) ([]roster.Assignment, error) {
	q := "SELECT " + assignmentColumns + ` FROM mapel_diampu
		WHERE ($1 = 0 OR id_guru = $1) AND ($2 = 0 OR id_kelas = $2) AND ($3 = 0 OR id_mapel = $3)
		ORDER BY id_ampu`
	assignments := make([]roster.Assignment, 0)
	err := getExec(repo.db, exec).SelectContext(ctx, &assignments, q, filter.TeacherID, filter.ClassID, filter.SubjectID)
	return assignments, errors.Wrap(err, "selecting mapel_diampu")
}

func (repo *rosterRepository) UpdateAssignment(ctx context.Context, a roster.Assignment, exec ...core.DBExecutor) (roster.Assignment, error) {
	q := "UPDATE mapel_diampu SET id_mapel = $2, id_kelas = $3, id_guru = $4 WHERE id_ampu = $1 RETURNING " + assignmentColumns
	err := getExec(repo.db, exec).GetContext(ctx, &a, q, a.ID, a.SubjectID, a.ClassID, a.TeacherID)
	return a, mapError(err, roster.ErrAssignmentNotFound)
}

func (repo *rosterRepository) DeleteAssignment(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.db, exec).ExecContext(ctx, "DELETE FROM mapel_diampu WHERE id_ampu = $1", id)
	if err != nil {
		return mapError(err, nil)
	}
	return checkAffected(res, roster.ErrAssignmentNotFound)
}
