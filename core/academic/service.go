package academic

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
)

type (
	Repository interface {
		// SaveGrade inserts g, or replaces the scores of the Grade with the same student and subject.
		SaveGrade(ctx context.Context, g Grade, exec ...core.DBExecutor) (Grade, error)
		ListGrades(ctx context.Context, filter GradeFilter, exec ...core.DBExecutor) ([]Grade, error)

		CreateAttendance(ctx context.Context, a Attendance, exec ...core.DBExecutor) (Attendance, error)
		ListAttendance(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]Attendance, error)
		AttendanceRecap(ctx context.Context, studentID int, exec ...core.DBExecutor) (Recap, error)
	}

	Service struct {
		repo   Repository
		roster roster.Repository
	}
)

func NewService(repo Repository, rosterRepo roster.Repository) *Service {
	return &Service{repo: repo, roster: rosterRepo}
}

// withSubjects loads the subject of each grade.
func (svc *Service) withSubjects(ctx context.Context, grades []Grade) ([]Grade, error) {
	subjects := make(map[int]*roster.Subject)
	for i, g := range grades {
		subj, ok := subjects[g.SubjectID]
		if !ok {
			s, err := svc.roster.GetSubject(ctx, g.SubjectID)
			if err != nil && errors.Cause(err) != roster.ErrSubjectNotFound {
				return nil, errors.Wrap(err, "getting subject")
			} else if err == nil {
				subj = &s
			}
			subjects[g.SubjectID] = subj
		}
		grades[i].Subject = subj
	}
	return grades, nil
}

func (svc *Service) ListGrades(ctx context.Context) ([]Grade, error) {
	grades, err := svc.repo.ListGrades(ctx, GradeFilter{})
	if err != nil {
		return nil, err
	}
	return svc.withSubjects(ctx, grades)
}

func (svc *Service) StudentGrades(ctx context.Context, studentID int) ([]Grade, error) {
	grades, err := svc.repo.ListGrades(ctx, GradeFilter{StudentID: studentID})
	if err != nil {
		return nil, err
	}
	return svc.withSubjects(ctx, grades)
}

// AccountGrades returns the grades of a Student account.
func (svc *Service) AccountGrades(ctx context.Context, acc account.Account) ([]Grade, error) {
	if !acc.IsStudent() || !acc.StudentID.Valid {
		return nil, ErrNotStudent
	}
	return svc.StudentGrades(ctx, acc.StudentID.Int)
}

// SaveGrade records the scores of a student in a subject, replacing any previous ones.
func (svc *Service) SaveGrade(ctx context.Context, in GradeInput) (Grade, error) {
	if _, err := svc.roster.GetStudent(ctx, roster.StudentFilter{ID: in.StudentID}); err != nil {
		if errors.Cause(err) == roster.ErrStudentNotFound {
			return Grade{}, core.NewValidationError(nil, core.FieldError{Field: "id_siswa", Error: err.Error()})
		}
		return Grade{}, errors.Wrap(err, "getting student")
	}
	if _, err := svc.roster.GetSubject(ctx, in.SubjectID); err != nil {
		if errors.Cause(err) == roster.ErrSubjectNotFound {
			return Grade{}, core.NewValidationError(nil, core.FieldError{Field: "id_mapel", Error: err.Error()})
		}
		return Grade{}, errors.Wrap(err, "getting subject")
	}

	var midterm, final int
	if in.Midterm != nil {
		midterm = *in.Midterm
	}
	if in.Final != nil {
		final = *in.Final
	}
	g, err := svc.repo.SaveGrade(ctx, Grade{
		StudentID: in.StudentID,
		SubjectID: in.SubjectID,
		Midterm:   midterm,
		Final:     final,
		Score:     FinalScore(midterm, final),
	})
	if err != nil {
		return Grade{}, errors.Wrap(err, "saving grade")
	}
	grades, err := svc.withSubjects(ctx, []Grade{g})
	if err != nil {
		return Grade{}, err
	}
	return grades[0], nil
}

// TeachingRosters lists, for each assignment of a Teacher account, the students of the taught
// class with their grade in the taught subject. Accounts without a Teacher get an empty list.
func (svc *Service) TeachingRosters(ctx context.Context, acc account.Account) ([]TeachingRoster, error) {
	rosters := make([]TeachingRoster, 0)
	if !acc.TeacherID.Valid {
		return rosters, nil
	}

	assignments, err := svc.roster.ListAssignments(ctx, roster.AssignmentFilter{TeacherID: acc.TeacherID.Int})
	if err != nil {
		return nil, errors.Wrap(err, "listing assignments")
	}
	for _, a := range assignments {
		tr := TeachingRoster{
			AssignmentID: a.ID,
			ClassID:      a.ClassID,
			SubjectID:    a.SubjectID,
			Students:     make([]RosterEntry, 0),
		}
		if subj, err := svc.roster.GetSubject(ctx, a.SubjectID); err == nil {
			tr.SubjectName = subj.Name
		} else if errors.Cause(err) != roster.ErrSubjectNotFound {
			return nil, errors.Wrap(err, "getting subject")
		}

		if a.ClassID.Valid {
			if tr.Students, err = svc.classRoster(ctx, &tr, a.ClassID.Int, a.SubjectID); err != nil {
				return nil, err
			}
		}
		rosters = append(rosters, tr)
	}
	return rosters, nil
}

func (svc *Service) classRoster(ctx context.Context, tr *TeachingRoster, classID, subjectID int) ([]RosterEntry, error) {
	entries := make([]RosterEntry, 0)
	class, err := svc.roster.GetClass(ctx, classID)
	if err != nil {
		if errors.Cause(err) == roster.ErrClassNotFound {
			return entries, nil
		}
		return nil, errors.Wrap(err, "getting class")
	}
	tr.ClassName = class.Name

	students, err := svc.roster.ListStudents(ctx, roster.StudentQuery{
		ClassIDs: []int{classID},
		Page:     core.Pagination{Limit: core.MaxLimit},
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing students")
	}
	for _, s := range students {
		entry := RosterEntry{StudentID: s.ID, Name: s.Name, NISN: s.NISN}
		grades, err := svc.repo.ListGrades(ctx, GradeFilter{StudentID: s.ID, SubjectID: subjectID})
		if err != nil {
			return nil, errors.Wrap(err, "listing grades")
		}
		if len(grades) > 0 {
			entry.Grade = &grades[0]
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// RecordAttendance marks a student's attendance for today.
func (svc *Service) RecordAttendance(ctx context.Context, in AttendanceInput) (Attendance, error) {
	if _, err := svc.roster.GetStudent(ctx, roster.StudentFilter{ID: in.StudentID}); err != nil {
		if errors.Cause(err) == roster.ErrStudentNotFound {
			return Attendance{}, core.NewValidationError(nil, core.FieldError{Field: "id_siswa", Error: err.Error()})
		}
		return Attendance{}, errors.Wrap(err, "getting student")
	}
	if _, err := svc.roster.GetClass(ctx, in.ClassID); err != nil {
		if errors.Cause(err) == roster.ErrClassNotFound {
			return Attendance{}, core.NewValidationError(nil, core.FieldError{Field: "id_kelas", Error: err.Error()})
		}
		return Attendance{}, errors.Wrap(err, "getting class")
	}

	return svc.repo.CreateAttendance(ctx, Attendance{
		StudentID: in.StudentID,
		ClassID:   null.IntFrom(in.ClassID),
		Date:      core.Today(),
		Status:    in.Status,
	})
}

func (svc *Service) StudentAttendance(ctx context.Context, studentID int) ([]Attendance, error) {
	return svc.repo.ListAttendance(ctx, studentID)
}

// AccountRecap returns the attendance recap of a Student account, and an empty one otherwise.
func (svc *Service) AccountRecap(ctx context.Context, acc account.Account) (Recap, error) {
	if !acc.IsStudent() || !acc.StudentID.Valid {
		return Recap{}, nil
	}
	return svc.repo.AttendanceRecap(ctx, acc.StudentID.Int)
}
