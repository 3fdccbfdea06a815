package inmemdb

import (
	"context"
	"sort"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/academic"
)

type academicRepository struct {
	db *DB
}

func NewAcademicRepository(db *DB) academic.Repository {
	return &academicRepository{db: db}
}

// SaveGrade inserts the grade, or overwrites the scores of the existing (student, subject) grade.
func (repo *academicRepository) SaveGrade(_ context.Context, g academic.Grade, exec ...core.DBExecutor) (academic.Grade, error) {
	g.Subject = nil
	err := repo.db.write(exec, func(t *tables) error {
		if _, ok := t.students[g.StudentID]; !ok {
			return errStudentRef
		}
		if _, ok := t.subjects[g.SubjectID]; !ok {
			return errSubjectRef
		}
		g.ID = 0
		for id, other := range t.grades {
			if other.StudentID == g.StudentID && other.SubjectID == g.SubjectID {
				g.ID = id
				break
			}
		}
		if g.ID == 0 {
			g.ID = t.nextID("nilai")
		}
		t.grades[g.ID] = g
		return nil
	})
	return g, err
}

func (repo *academicRepository) ListGrades(_ context.Context, filter academic.GradeFilter, _ ...core.DBExecutor) ([]academic.Grade, error) {
	grades := make([]academic.Grade, 0)
	_ = repo.db.read(func(t *tables) error {
		for _, g := range t.grades {
			if filter.StudentID != 0 && g.StudentID != filter.StudentID {
				continue
			}
			if filter.SubjectID != 0 && g.SubjectID != filter.SubjectID {
				continue
			}
			grades = append(grades, g)
		}
		return nil
	})
	sort.Slice(grades, func(i, j int) bool { return grades[i].ID < grades[j].ID })
	return grades, nil
}

func (repo *academicRepository) CreateAttendance(_ context.Context, a academic.Attendance, exec ...core.DBExecutor) (academic.Attendance, error) {
	err := repo.db.write(exec, func(t *tables) error {
		if _, ok := t.students[a.StudentID]; !ok {
			return errStudentRef
		}
		if err := t.classRef(a.ClassID); err != nil {
			return err
		}
		a.ID = t.nextID("absensi")
		t.attendance[a.ID] = a
		return nil
	})
	return a, err
}

func (repo *academicRepository) ListAttendance(_ context.Context, studentID int, _ ...core.DBExecutor) ([]academic.Attendance, error) {
	marks := make([]academic.Attendance, 0)
	_ = repo.db.read(func(t *tables) error {
		for _, a := range t.attendance {
			if a.StudentID == studentID {
				marks = append(marks, a)
			}
		}
		return nil
	})
	sort.Slice(marks, func(i, j int) bool {
		di, dj := marks[i].Date.Time.Time, marks[j].Date.Time.Time
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return marks[i].ID > marks[j].ID
	})
	return marks, nil
}

func (repo *academicRepository) AttendanceRecap(_ context.Context, studentID int, _ ...core.DBExecutor) (academic.Recap, error) {
	recap := make(academic.Recap)
	_ = repo.db.read(func(t *tables) error {
		for _, a := range t.attendance {
			if a.StudentID == studentID {
				recap[a.Status]++
			}
		}
		return nil
	})
	return recap, nil
}
