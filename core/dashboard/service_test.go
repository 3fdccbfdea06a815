package dashboard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/academic"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/news"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
	testutil "github.com/RezzaFairusNugraha/SMKN4PADALARANG/tests"
)

func intPtr(i int) *int { return &i }

func TestService(t *testing.T) {
	app := testutil.NewApp(t)
	svc := app.DashboardSvc
	ctx := context.Background()

	rpl := testutil.CreateClass(t, app.Roster, "RPL", "X RPL 1")
	tkj := testutil.CreateClass(t, app.Roster, "TKJ", "X TKJ 1")
	db := testutil.CreateSubject(t, app.Roster, "Basis Data", roster.CategoryVocational)
	mtk := testutil.CreateSubject(t, app.Roster, "Matematika", roster.CategoryGeneral)
	teacher := testutil.CreateTeacher(t, app.Roster, "1980", "Pak Dedi", roster.GenderMale)
	andi := testutil.CreateStudent(t, app.Roster, "001", "Andi", roster.GenderMale, rpl.ID)
	testutil.CreateStudent(t, app.Roster, "002", "Sari", roster.GenderFemale, rpl.ID)
	testutil.CreateStudent(t, app.Roster, "003", "Dewi", roster.GenderFemale, tkj.ID)
	testutil.CreateAssignment(t, app.Roster, teacher.ID, db.ID, rpl.ID)
	testutil.CreateAssignment(t, app.Roster, teacher.ID, mtk.ID, rpl.ID)
	testutil.CreateAssignment(t, app.Roster, teacher.ID, mtk.ID)

	admin := testutil.CreateAccount(t, app.Accounts, "tu", "", account.RoleAdmin)
	teacherAcc := testutil.CreateAccount(t, app.Accounts, "dedi", "", account.RoleTeacher, teacher.ID)
	studentAcc := testutil.CreateAccount(t, app.Accounts, "andi", "", account.RoleStudent, andi.ID)

	_, err := app.NewsSvc.Create(ctx, admin, news.PostInput{Title: "Libur", Body: "Semester ganjil"})
	require.NoError(t, err)

	t.Run("admin", func(t *testing.T) {
		stats, err := svc.AdminStatistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Students)
		assert.Equal(t, 1, stats.Teachers)
		assert.Equal(t, 2, stats.Classes)
		assert.Equal(t, 2, stats.Subjects)
		require.Len(t, stats.RecentNews, 1)
		assert.Equal(t, "Libur", stats.RecentNews[0].Title)
		assert.Equal(t, 1, stats.GenderDistribution[roster.GenderMale])
		assert.Equal(t, 2, stats.GenderDistribution[roster.GenderFemale])
	})

	t.Run("teacher", func(t *testing.T) {
		stats, err := svc.TeacherStatistics(ctx, teacherAcc)
		require.NoError(t, err)
		require.NotNil(t, stats)
		assert.Equal(t, 2, stats.Students)
		assert.Equal(t, 2, stats.Subjects)
		assert.Equal(t, 3, stats.Sessions)
		assert.Equal(t, 1, stats.AssignedClasses)

		stats, err = svc.TeacherStatistics(ctx, studentAcc)
		require.NoError(t, err)
		assert.Nil(t, stats)

		schedule, err := svc.Schedule(ctx, teacherAcc)
		require.NoError(t, err)
		assert.Len(t, schedule, 3)
		schedule, err = svc.Schedule(ctx, admin)
		require.NoError(t, err)
		assert.Empty(t, schedule)
	})

	t.Run("student", func(t *testing.T) {
		_, err := app.AcademicSvc.SaveGrade(ctx, academic.GradeInput{StudentID: andi.ID, SubjectID: db.ID, Midterm: intPtr(90), Final: intPtr(80)})
		require.NoError(t, err)
		_, err = app.AcademicSvc.SaveGrade(ctx, academic.GradeInput{StudentID: andi.ID, SubjectID: mtk.ID, Midterm: intPtr(70), Final: intPtr(74)})
		require.NoError(t, err)
		_, err = app.AcademicSvc.RecordAttendance(ctx, academic.AttendanceInput{StudentID: andi.ID, ClassID: rpl.ID, Status: academic.StatusExcused})
		require.NoError(t, err)

		stats, err := svc.StudentStatistics(ctx, studentAcc)
		require.NoError(t, err)
		require.NotNil(t, stats)
		assert.Equal(t, 78.5, stats.AverageGrade)
		assert.Equal(t, 1, stats.Attendance[academic.StatusExcused])
		assert.Equal(t, 2, stats.Subjects)
		assert.Zero(t, stats.PendingTasks)

		stats, err = svc.StudentStatistics(ctx, admin)
		require.NoError(t, err)
		assert.Nil(t, stats)
	})
}
