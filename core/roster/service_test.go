package roster_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
	testutil "github.com/RezzaFairusNugraha/SMKN4PADALARANG/tests"
)

func intPtr(i int) *int { return &i }

func TestService_CreateTeacher(t *testing.T) {
	app := testutil.NewApp(t)
	svc := app.RosterSvc
	ctx := context.Background()

	class := testutil.CreateClass(t, app.Roster, "TKJ", "XI TKJ 2")
	math := testutil.CreateSubject(t, app.Roster, "Matematika", roster.CategoryGeneral)
	net := testutil.CreateSubject(t, app.Roster, "Jaringan Dasar", roster.CategoryVocational)

	t.Run("unknown subject", func(t *testing.T) {
		_, err := svc.CreateTeacher(ctx, roster.TeacherInput{
			NIP: "1980", Name: "Pak Dedi", Gender: roster.GenderMale,
			Assignments: []roster.AssignmentRef{{SubjectID: math.ID}, {SubjectID: 999}},
		})
		assert.IsType(t, &core.ValidationError{}, err)

		_, err = app.Roster.GetTeacher(ctx, roster.TeacherFilter{NIP: "1980"})
		assert.Equal(t, roster.ErrTeacherNotFound, errors.Cause(err))
	})

	t.Run("unknown homeroom class", func(t *testing.T) {
		_, err := svc.CreateTeacher(ctx, roster.TeacherInput{
			NIP: "1980", Name: "Pak Dedi", Gender: roster.GenderMale, ClassID: intPtr(999),
		})
		if assert.IsType(t, &core.ValidationError{}, err) {
			assert.Equal(t, "id_kelas", err.(*core.ValidationError).Fields[0].Field)
		}
	})

	teacher, err := svc.CreateTeacher(ctx, roster.TeacherInput{
		NIP: "1980", Name: "Pak Dedi", Gender: roster.GenderMale, ClassID: intPtr(class.ID),
		Assignments: []roster.AssignmentRef{{SubjectID: math.ID, ClassID: intPtr(class.ID)}, {SubjectID: net.ID}},
	})
	require.NoError(t, err)
	require.Len(t, teacher.Assignments, 2)
	for _, a := range teacher.Assignments {
		require.NotNil(t, a.Subject)
		if a.SubjectID == math.ID {
			require.NotNil(t, a.Class)
			assert.Equal(t, class.Name, a.Class.Name)
		} else {
			assert.Nil(t, a.Class)
		}
	}

	t.Run("duplicate NIP", func(t *testing.T) {
		_, err := svc.CreateTeacher(ctx, roster.TeacherInput{NIP: "1980", Name: "Pak Asep", Gender: roster.GenderMale})
		assert.True(t, core.IsUniqueViolation(err))
	})

	t.Run("duplicate assignment", func(t *testing.T) {
		_, err := svc.CreateAssignment(ctx, roster.AssignmentInput{TeacherID: teacher.ID, SubjectID: net.ID})
		assert.Equal(t, roster.ErrAssignmentExists, err)

		a, err := svc.CreateAssignment(ctx, roster.AssignmentInput{TeacherID: teacher.ID, SubjectID: net.ID, ClassID: intPtr(class.ID)})
		require.NoError(t, err)
		assert.Equal(t, teacher.ID, a.TeacherID)
	})

	t.Run("assignment for unknown teacher", func(t *testing.T) {
		_, err := svc.CreateAssignment(ctx, roster.AssignmentInput{TeacherID: 999, SubjectID: net.ID})
		if assert.IsType(t, &core.ValidationError{}, err) {
			assert.Equal(t, "id_guru", err.(*core.ValidationError).Fields[0].Field)
		}
	})
}

func TestService_deletes(t *testing.T) {
	app := testutil.NewApp(t)
	svc := app.RosterSvc
	ctx := context.Background()

	class := testutil.CreateClass(t, app.Roster, "RPL", "X RPL 1")
	subject := testutil.CreateSubject(t, app.Roster, "Pemrograman Dasar", roster.CategoryVocational)
	student := testutil.CreateStudent(t, app.Roster, "001", "Andi", roster.GenderMale, class.ID)
	teacher := testutil.CreateTeacher(t, app.Roster, "1980", "Pak Dedi", roster.GenderMale)
	testutil.CreateAssignment(t, app.Roster, teacher.ID, subject.ID, class.ID)
	testutil.CreateAssignment(t, app.Roster, teacher.ID, subject.ID)

	require.NoError(t, svc.DeleteClass(ctx, class.ID))

	s, err := svc.GetStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.False(t, s.ClassID.Valid)

	assignments, err := svc.ListAssignments(ctx, roster.AssignmentFilter{TeacherID: teacher.ID})
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.False(t, assignments[0].ClassID.Valid)

	require.NoError(t, svc.DeleteSubject(ctx, subject.ID))
	assignments, err = svc.ListAssignments(ctx, roster.AssignmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, assignments)

	assert.Equal(t, roster.ErrClassNotFound, errors.Cause(svc.DeleteClass(ctx, class.ID)))
	assert.Equal(t, roster.ErrSubjectNotFound, errors.Cause(svc.DeleteSubject(ctx, subject.ID)))
}

func TestService_students(t *testing.T) {
	app := testutil.NewApp(t)
	svc := app.RosterSvc
	ctx := context.Background()

	class := testutil.CreateClass(t, app.Roster, "AKL", "X AKL 1")

	_, err := svc.CreateStudent(ctx, roster.StudentInput{NISN: "001", Name: "Andi", Gender: roster.GenderMale, ClassID: intPtr(999)})
	assert.IsType(t, &core.ValidationError{}, err)

	andi, err := svc.CreateStudent(ctx, roster.StudentInput{NISN: "001", Name: "Andi", Gender: roster.GenderMale, ClassID: intPtr(class.ID)})
	require.NoError(t, err)
	assert.Equal(t, class.ID, andi.ClassID.Int)

	_, err = svc.CreateStudent(ctx, roster.StudentInput{NISN: "001", Name: "Budi", Gender: roster.GenderMale})
	assert.True(t, core.IsUniqueViolation(err))

	andi, err = svc.UpdateStudent(ctx, andi.ID, roster.StudentInput{NISN: "001", Name: "Andi Saputra", Gender: roster.GenderMale, Address: "Cimahi"})
	require.NoError(t, err)
	assert.Equal(t, "Andi Saputra", andi.Name)
	assert.Equal(t, "Cimahi", andi.Address.String)
	assert.False(t, andi.ClassID.Valid)

	for _, nisn := range []string{"002", "003", "004"} {
		testutil.CreateStudent(t, app.Roster, nisn, "Siswa "+nisn, roster.GenderFemale)
	}
	page, err := svc.ListStudents(ctx, core.Pagination{Skip: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
	all, err := svc.ListStudents(ctx, core.Pagination{Limit: -1})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
