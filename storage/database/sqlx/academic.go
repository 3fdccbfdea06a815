package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/academic"
)

const (
	gradeColumns      = "id_nilai, id_siswa, id_mapel, nilai_uts, nilai_uas, nilai_akhir"
	attendanceColumns = "id_absensi, id_siswa, id_kelas, tanggal, status"
)

type academicRepository struct {
	db *sqlx.DB
}

func NewAcademicRepository(db *sqlx.DB) academic.Repository {
	return &academicRepository{db: db}
}

func (repo *academicRepository) SaveGrade(ctx context.Context, g academic.Grade, exec ...core.DBExecutor) (academic.Grade, error) {
	q := `INSERT INTO nilai (id_siswa, id_mapel, nilai_uts, nilai_uas, nilai_akhir)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT nilai_siswa_mapel_key
		DO UPDATE SET nilai_uts = EXCLUDED.nilai_uts, nilai_uas = EXCLUDED.nilai_uas, nilai_akhir = EXCLUDED.nilai_akhir
		RETURNING ` + gradeColumns
	err := getExec(repo.db, exec).GetContext(ctx, &g, q, g.StudentID, g.SubjectID, g.Midterm, g.Final, g.Score)
	return g, mapError(err, nil)
}

func (repo *academicRepository) ListGrades(ctx context.Context, filter academic.GradeFilter, exec ...core.DBExecutor) ([]academic.Grade, error) {
	q := "SELECT " + gradeColumns + ` FROM nilai
		WHERE ($1 = 0 OR id_siswa = $1) AND ($2 = 0 OR id_mapel = $2)
		ORDER BY id_nilai`
	grades := make([]academic.Grade, 0)
	err := getExec(repo.db, exec).SelectContext(ctx, &grades, q, filter.StudentID, filter.SubjectID)
	return grades, errors.Wrap(err, "selecting nilai")
}

func (repo *academicRepository) CreateAttendance(ctx context.Context, a academic.Attendance, exec ...core.DBExecutor) (academic.Attendance, error) {
	q := "INSERT INTO absensi (id_siswa, id_kelas, tanggal, status) VALUES ($1, $2, $3, $4) RETURNING " + attendanceColumns
	err := getExec(repo.db, exec).GetContext(ctx, &a, q, a.StudentID, a.ClassID, a.Date, a.Status)
	return a, mapError(err, nil)
}

func (repo *academicRepository) ListAttendance(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]academic.Attendance, error) {
	q := "SELECT " + attendanceColumns + " FROM absensi WHERE id_siswa = $1 ORDER BY tanggal DESC, id_absensi DESC"
	marks := make([]academic.Attendance, 0)
	err := getExec(repo.db, exec).SelectContext(ctx, &marks, q, studentID)
	return marks, errors.Wrap(err, "selecting absensi")
}

func (repo *academicRepository) AttendanceRecap(ctx context.Context, studentID int, exec ...core.DBExecutor) (academic.Recap, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"total"`
	}
	q := "SELECT status, count(*) AS total FROM absensi WHERE id_siswa = $1 GROUP BY status"
	if err := getExec(repo.db, exec).SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "counting absensi")
	}
	recap := make(academic.Recap, len(rows))
	for _, r := range rows {
		recap[r.Status] = r.Count
	}
	return recap, nil
}
