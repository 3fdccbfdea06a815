package academic_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/academic"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
	testutil "github.com/RezzaFairusNugraha/SMKN4PADALARANG/tests"
)

func intPtr(i int) *int { return &i }

func TestFinalScore(t *testing.T) {
	tests := []struct {
		midterm, final, want int
	}{
		{0, 0, 0},
		{80, 91, 85},
		{100, 100, 100},
		{70, 0, 35},
		{75, 76, 75},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, academic.FinalScore(tt.midterm, tt.final))
	}
}

func TestService_SaveGrade(t *testing.T) {
	app := testutil.NewApp(t)
	svc := app.AcademicSvc
	ctx := context.Background()

	student := testutil.CreateStudent(t, app.Roster, "001", "Andi", roster.GenderMale)
	subject := testutil.CreateSubject(t, app.Roster, "Matematika", roster.CategoryGeneral)

	_, err := svc.SaveGrade(ctx, academic.GradeInput{StudentID: 999, SubjectID: subject.ID})
	if assert.IsType(t, &core.ValidationError{}, err) {
		assert.Equal(t, "id_siswa", err.(*core.ValidationError).Fields[0].Field)
	}
	_, err = svc.SaveGrade(ctx, academic.GradeInput{StudentID: student.ID, SubjectID: 999})
	if assert.IsType(t, &core.ValidationError{}, err) {
		assert.Equal(t, "id_mapel", err.(*core.ValidationError).Fields[0].Field)
	}

	g, err := svc.SaveGrade(ctx, academic.GradeInput{StudentID: student.ID, SubjectID: subject.ID, Midterm: intPtr(80), Final: intPtr(91)})
	require.NoError(t, err)
	assert.Equal(t, 85, g.Score)
	require.NotNil(t, g.Subject)
	assert.Equal(t, "Matematika", g.Subject.Name)

	// regrading replaces the previous scores
	g2, err := svc.SaveGrade(ctx, academic.GradeInput{StudentID: student.ID, SubjectID: subject.ID, Midterm: intPtr(70)})
	require.NoError(t, err)
	assert.Equal(t, g.ID, g2.ID)
	assert.Equal(t, 0, g2.Final)
	assert.Equal(t, 35, g2.Score)

	grades, err := svc.StudentGrades(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, 35, grades[0].Score)

	acc := testutil.CreateAccount(t, app.Accounts, "andi", "", account.RoleStudent, student.ID)
	grades, err = svc.AccountGrades(ctx, acc)
	require.NoError(t, err)
	assert.Len(t, grades, 1)

	admin := testutil.CreateAccount(t, app.Accounts, "tu", "", account.RoleAdmin)
	_, err = svc.AccountGrades(ctx, admin)
	assert.Equal(t, academic.ErrNotStudent, err)
}

func TestService_TeachingRosters(t *testing.T) {
	app := testutil.NewApp(t)
	svc := app.AcademicSvc
	ctx := context.Background()

	class := testutil.CreateClass(t, app.Roster, "RPL", "X RPL 1")
	subject := testutil.CreateSubject(t, app.Roster, "Basis Data", roster.CategoryVocational)
	teacher := testutil.CreateTeacher(t, app.Roster, "1980", "Pak Dedi", roster.GenderMale)
	andi := testutil.CreateStudent(t, app.Roster, "001", "Andi", roster.GenderMale, class.ID)
	testutil.CreateStudent(t, app.Roster, "002", "Sari", roster.GenderFemale, class.ID)
	testutil.CreateStudent(t, app.Roster, "003", "Lain", roster.GenderFemale)
	testutil.CreateAssignment(t, app.Roster, teacher.ID, subject.ID, class.ID)
	testutil.CreateAssignment(t, app.Roster, teacher.ID, subject.ID)

	_, err := svc.SaveGrade(ctx, academic.GradeInput{StudentID: andi.ID, SubjectID: subject.ID, Midterm: intPtr(90), Final: intPtr(80)})
	require.NoError(t, err)

	acc := testutil.CreateAccount(t, app.Accounts, "dedi", "", account.RoleTeacher, teacher.ID)
	rosters, err := svc.TeachingRosters(ctx, acc)
	require.NoError(t, err)
	require.Len(t, rosters, 2)

	var withClass, withoutClass academic.TeachingRoster
	for _, tr := range rosters {
		if tr.ClassID.Valid {
			withClass = tr
		} else {
			withoutClass = tr
		}
	}
	assert.Equal(t, class.Name, withClass.ClassName)
	assert.Equal(t, "Basis Data", withClass.SubjectName)
	require.Len(t, withClass.Students, 2)
	for _, entry := range withClass.Students {
		if entry.StudentID == andi.ID {
			require.NotNil(t, entry.Grade)
			assert.Equal(t, 85, entry.Grade.Score)
		} else {
			assert.Nil(t, entry.Grade)
		}
	}
	assert.Empty(t, withoutClass.Students)

	admin := testutil.CreateAccount(t, app.Accounts, "tu", "", account.RoleAdmin)
	rosters, err = svc.TeachingRosters(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, rosters)
}

func TestService_Attendance(t *testing.T) {
	app := testutil.NewApp(t)
	svc := app.AcademicSvc
	ctx := context.Background()

	class := testutil.CreateClass(t, app.Roster, "RPL", "X RPL 1")
	student := testutil.CreateStudent(t, app.Roster, "001", "Andi", roster.GenderMale, class.ID)

	_, err := svc.RecordAttendance(ctx, academic.AttendanceInput{StudentID: student.ID, ClassID: 999, Status: academic.StatusPresent})
	if assert.IsType(t, &core.ValidationError{}, err) {
		assert.Equal(t, "id_kelas", err.(*core.ValidationError).Fields[0].Field)
	}

	for _, status := range []string{academic.StatusPresent, academic.StatusPresent, academic.StatusSick} {
		a, err := svc.RecordAttendance(ctx, academic.AttendanceInput{StudentID: student.ID, ClassID: class.ID, Status: status})
		require.NoError(t, err)
		assert.Equal(t, core.Today(), a.Date)
	}

	marks, err := svc.StudentAttendance(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, marks, 3)

	acc := testutil.CreateAccount(t, app.Accounts, "andi", "", account.RoleStudent, student.ID)
	recap, err := svc.AccountRecap(ctx, acc)
	require.NoError(t, err)
	assert.Equal(t, 2, recap[academic.StatusPresent])
	assert.Equal(t, 1, recap[academic.StatusSick])
	assert.Zero(t, recap[academic.StatusAbsent])

	teacher := testutil.CreateAccount(t, app.Accounts, "dedi", "", account.RoleTeacher)
	recap, err = svc.AccountRecap(ctx, teacher)
	require.NoError(t, err)
	assert.Empty(t, recap)
}
