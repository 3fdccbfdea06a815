package dashboard

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/academic"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/news"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
)

// RecentNewsSize is the number of posts shown on the admin dashboard.
const RecentNewsSize = 5

type (
	Totals struct {
		Students int `json:"total_siswa" db:"total_siswa"`
		Teachers int `json:"total_guru" db:"total_guru"`
		Classes  int `json:"total_kelas" db:"total_kelas"`
		Subjects int `json:"total_mapel" db:"total_mapel"`
	}

	AdminStatistics struct {
		Totals
		RecentNews         []news.Post    `json:"recent_news"`
		GenderDistribution map[string]int `json:"gender_distribution"`
	}

	TeacherStatistics struct {
		Students        int `json:"total_students"`
		Subjects        int `json:"total_mapel"`
		Sessions        int `json:"total_sessions"`
		AssignedClasses int `json:"assigned_classes"`
	}

	StudentStatistics struct {
		AverageGrade float64        `json:"average_grade"`
		Attendance   academic.Recap `json:"attendance"`
		Subjects     int            `json:"total_subjects"`
		PendingTasks int            `json:"pending_tasks"`
	}

	Repository interface {
		Totals(ctx context.Context, exec ...core.DBExecutor) (Totals, error)
		// GenderDistribution counts students by jenis_kelamin.
		GenderDistribution(ctx context.Context, exec ...core.DBExecutor) (map[string]int, error)
	}

	// AssignmentLister lists assignments with their subject, class and teacher.
	AssignmentLister interface {
		ListAssignments(ctx context.Context, filter roster.AssignmentFilter) ([]roster.Assignment, error)
	}

	Service struct {
		repo        Repository
		rosterRepo  roster.Repository
		assignments AssignmentLister
		academic    academic.Repository
		news        news.Repository
	}
)

func NewService(
	repo Repository,
	rosterRepo roster.Repository,
	assignments AssignmentLister,
	academicRepo academic.Repository,
	newsRepo news.Repository,
) *Service {
	return &Service{
		repo:        repo,
		rosterRepo:  rosterRepo,
		assignments: assignments,
		academic:    academicRepo,
		news:        newsRepo,
	}
}

// AdminStatistics returns school wide totals, the latest news and the student gender distribution.
func (svc *Service) AdminStatistics(ctx context.Context) (AdminStatistics, error) {
	totals, err := svc.repo.Totals(ctx)
	if err != nil {
		return AdminStatistics{}, errors.Wrap(err, "counting totals")
	}
	recent, err := svc.news.ListPosts(ctx, RecentNewsSize)
	if err != nil {
		return AdminStatistics{}, errors.Wrap(err, "listing recent news")
	}
	genders, err := svc.repo.GenderDistribution(ctx)
	if err != nil {
		return AdminStatistics{}, errors.Wrap(err, "counting genders")
	}
	return AdminStatistics{Totals: totals, RecentNews: recent, GenderDistribution: genders}, nil
}

// TeacherStatistics summarizes the teaching load of a Teacher account; nil for other accounts.
func (svc *Service) TeacherStatistics(ctx context.Context, acc account.Account) (*TeacherStatistics, error) {
	if !acc.IsTeacher() || !acc.TeacherID.Valid {
		return nil, nil
	}
	assignments, err := svc.rosterRepo.ListAssignments(ctx, roster.AssignmentFilter{TeacherID: acc.TeacherID.Int})
	if err != nil {
		return nil, errors.Wrap(err, "listing assignments")
	}

	subjects := make(map[int]struct{})
	classes := make(map[int]struct{})
	for _, a := range assignments {
		subjects[a.SubjectID] = struct{}{}
		if a.ClassID.Valid {
			classes[a.ClassID.Int] = struct{}{}
		}
	}
	classIDs := make([]int, 0, len(classes))
	for id := range classes {
		classIDs = append(classIDs, id)
	}

	var students int
	if len(classIDs) > 0 {
		if students, err = svc.rosterRepo.CountStudents(ctx, classIDs); err != nil {
			return nil, errors.Wrap(err, "counting students")
		}
	}
	return &TeacherStatistics{
		Students:        students,
		Subjects:        len(subjects),
		Sessions:        len(assignments),
		AssignedClasses: len(classes),
	}, nil
}

// StudentStatistics summarizes the grades and attendance of a Student account; nil for other accounts.
func (svc *Service) StudentStatistics(ctx context.Context, acc account.Account) (*StudentStatistics, error) {
	if !acc.IsStudent() || !acc.StudentID.Valid {
		return nil, nil
	}
	student, err := svc.rosterRepo.GetStudent(ctx, roster.StudentFilter{ID: acc.StudentID.Int})
	if err != nil {
		if errors.Cause(err) == roster.ErrStudentNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "getting student")
	}

	grades, err := svc.academic.ListGrades(ctx, academic.GradeFilter{StudentID: student.ID})
	if err != nil {
		return nil, errors.Wrap(err, "listing grades")
	}
	recap, err := svc.academic.AttendanceRecap(ctx, student.ID)
	if err != nil {
		return nil, errors.Wrap(err, "recapping attendance")
	}

	var subjects int
	if student.ClassID.Valid {
		assignments, err := svc.rosterRepo.ListAssignments(ctx, roster.AssignmentFilter{ClassID: student.ClassID.Int})
		if err != nil {
			return nil, errors.Wrap(err, "listing assignments")
		}
		subjects = len(assignments)
	}

	return &StudentStatistics{
		AverageGrade: averageScore(grades),
		Attendance:   recap,
		Subjects:     subjects,
	}, nil
}

// Schedule lists the assignments of a Teacher account; empty for other accounts.
func (svc *Service) Schedule(ctx context.Context, acc account.Account) ([]roster.Assignment, error) {
	if !acc.TeacherID.Valid {
		return []roster.Assignment{}, nil
	}
	return svc.assignments.ListAssignments(ctx, roster.AssignmentFilter{TeacherID: acc.TeacherID.Int})
}

// averageScore is the mean nilai_akhir rounded to 2 decimals.
func averageScore(grades []academic.Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum int
	for _, g := range grades {
		sum += g.Score
	}
	return math.Round(float64(sum)/float64(len(grades))*100) / 100
}
