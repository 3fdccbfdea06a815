package account_test

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
	testutil "github.com/RezzaFairusNugraha/SMKN4PADALARANG/tests"
)

func intPtr(i int) *int { return &i }

func TestService_Register(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	class := testutil.CreateClass(t, app.Roster, "RPL", "X RPL 1")
	subject := testutil.CreateSubject(t, app.Roster, "Basis Data", roster.CategoryVocational)
	claimedStudent := testutil.CreateStudent(t, app.Roster, "100", "Rina", roster.GenderFemale)
	testutil.CreateAccount(t, app.Accounts, "rina", "rina@test.id", account.RoleStudent, claimedStudent.ID)
	freeTeacher := testutil.CreateTeacher(t, app.Roster, "1975", "Pak Asep", roster.GenderMale)

	rosterSize := func(t *testing.T) (students, teachers int) {
		ss, err := app.Roster.ListStudents(ctx, roster.StudentQuery{Page: core.Pagination{Limit: core.MaxLimit}})
		require.NoError(t, err)
		ts, err := app.Roster.ListTeachers(ctx, core.Pagination{Limit: core.MaxLimit})
		require.NoError(t, err)
		return len(ss), len(ts)
	}

	tests := []struct {
		name       string
		reg        account.Registration
		wantErr    error
		sameRoster bool
		check      func(t *testing.T, acc account.Account)
	}{
		{
			name:    "duplicate username",
			reg:     account.Registration{Username: "rina", Password: testutil.Password, Role: account.RoleAdmin},
			wantErr: account.ErrDuplicateAccount,
		},
		{
			name:    "student without NISN",
			reg:     account.Registration{Username: "andi", Password: testutil.Password, Role: account.RoleStudent},
			wantErr: account.ErrNISNRequired,
		},
		{
			name:    "teacher without NIP",
			reg:     account.Registration{Username: "dedi", Password: testutil.Password, Role: account.RoleTeacher},
			wantErr: account.ErrNIPRequired,
		},
		{
			name:    "claimed student",
			reg:        account.Registration{Username: "rina2", Password: testutil.Password, Role: account.RoleStudent, NISN: "100"},
			wantErr:    account.ErrStudentClaimed,
			sameRoster: true,
		},
		{
			name:    "new student without name",
			reg:     account.Registration{Username: "andi", Password: testutil.Password, Role: account.RoleStudent, NISN: "200"},
			wantErr: account.ErrNewStudentFields,
		},
		{
			name:    "new teacher without gender",
			reg:     account.Registration{Username: "dedi", Password: testutil.Password, Role: account.RoleTeacher, NIP: "1980", Name: "Pak Dedi"},
			wantErr: account.ErrNewTeacherFields,
		},
		{
			name: "admin",
			reg:  account.Registration{Username: "tu", Password: testutil.Password, Role: account.RoleAdmin},
			check: func(t *testing.T, acc account.Account) {
				assert.False(t, acc.TeacherID.Valid)
				assert.False(t, acc.StudentID.Valid)
			},
		},
		{
			name:       "existing teacher",
			reg:        account.Registration{Username: "asep", Password: testutil.Password, Role: account.RoleTeacher, NIP: "1975"},
			sameRoster: true,
			check: func(t *testing.T, acc account.Account) {
				assert.Equal(t, freeTeacher.ID, acc.TeacherID.Int)
				teacher, err := app.Roster.GetTeacher(ctx, roster.TeacherFilter{ID: freeTeacher.ID})
				require.NoError(t, err)
				assert.Equal(t, "Pak Asep", teacher.Name)
			},
		},
		{
			name: "new student in class",
			reg: account.Registration{
				Username: "andi", Password: testutil.Password, Role: account.RoleStudent,
				NISN: "200", Name: "Andi", Gender: roster.GenderMale, RegisteredClassID: intPtr(class.ID),
			},
			check: func(t *testing.T, acc account.Account) {
				student, err := app.Roster.GetStudent(ctx, roster.StudentFilter{ID: acc.StudentID.Int})
				require.NoError(t, err)
				assert.Equal(t, "Andi", student.Name)
				assert.Equal(t, class.ID, student.ClassID.Int)
			},
		},
		{
			name: "new teacher with unknown class",
			reg: account.Registration{
				Username: "dedi", Password: testutil.Password, Role: account.RoleTeacher,
				NIP: "1980", Name: "Pak Dedi", Gender: roster.GenderMale,
				SubjectID: intPtr(subject.ID), TeacherClassID: intPtr(999),
			},
			check: func(t *testing.T, acc account.Account) {
				assignments, err := app.Roster.ListAssignments(ctx, roster.AssignmentFilter{TeacherID: acc.TeacherID.Int})
				require.NoError(t, err)
				assert.Empty(t, assignments)
			},
		},
		{
			name: "new teacher with first assignment",
			reg: account.Registration{
				Username: "ani", Password: testutil.Password, Role: account.RoleTeacher,
				NIP: "1977", Name: "Bu Ani", Gender: roster.GenderFemale,
				SubjectID: intPtr(subject.ID), TeacherClassID: intPtr(class.ID),
			},
			check: func(t *testing.T, acc account.Account) {
				assignments, err := app.Roster.ListAssignments(ctx, roster.AssignmentFilter{TeacherID: acc.TeacherID.Int})
				require.NoError(t, err)
				if assert.Len(t, assignments, 1) {
					assert.Equal(t, subject.ID, assignments[0].SubjectID)
					assert.Equal(t, class.ID, assignments[0].ClassID.Int)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			students, teachers := rosterSize(t)
			acc, err := app.AccountSvc.Register(ctx, tt.reg)
			if tt.sameRoster {
				gotStudents, gotTeachers := rosterSize(t)
				assert.Equal(t, students, gotStudents)
				assert.Equal(t, teachers, gotTeachers)
			}
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				if tt.wantErr != account.ErrDuplicateAccount {
					_, err = app.Accounts.GetAccount(ctx, account.GetFilter{Username: tt.reg.Username})
					assert.Equal(t, account.ErrNotFound, errors.Cause(err))
				}
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, acc.ID)
			assert.Equal(t, tt.reg.Role, acc.Role)
			assert.NoError(t, acc.CheckPassword(tt.reg.Password))
			if tt.check != nil {
				tt.check(t, acc)
			}
		})
	}
}

func TestService_Register_emailTaken(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	testutil.CreateAccount(t, app.Accounts, "budi", "budi@test.id", account.RoleAdmin)

	_, err := app.AccountSvc.Register(ctx, account.Registration{
		Username: "dedi", Password: testutil.Password, Role: account.RoleTeacher, Email: "budi@test.id",
		NIP: "1980", Name: "Pak Dedi", Gender: roster.GenderMale,
	})
	assert.IsType(t, &core.ValidationError{}, err)

	_, err = app.Roster.GetTeacher(ctx, roster.TeacherFilter{NIP: "1980"})
	assert.Equal(t, roster.ErrTeacherNotFound, errors.Cause(err))
}

// failingAccounts fails every CreateAccount with a username conflict.
type failingAccounts struct {
	account.Repository
}

func (failingAccounts) CreateAccount(context.Context, account.Account, ...core.DBExecutor) (account.Account, error) {
	return account.Account{}, core.NewUniqueViolationError("pengguna_username_key", "username")
}

func TestService_Register_rollsBackOnAccountFailure(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	class := testutil.CreateClass(t, app.Roster, "TKJ", "X TKJ 1")
	subject := testutil.CreateSubject(t, app.Roster, "Jaringan Dasar", roster.CategoryVocational)
	svc := account.NewService(app.DB, failingAccounts{app.Accounts}, app.Roster, app.Mail, app.Conf)

	_, err := svc.Register(ctx, account.Registration{
		Username: "dedi", Password: testutil.Password, Role: account.RoleTeacher,
		NIP: "1980", Name: "Pak Dedi", Gender: roster.GenderMale,
		SubjectID: intPtr(subject.ID), TeacherClassID: intPtr(class.ID),
	})
	require.Error(t, err)
	assert.True(t, core.IsUniqueViolation(err))

	_, err = app.Roster.GetTeacher(ctx, roster.TeacherFilter{NIP: "1980"})
	assert.Equal(t, roster.ErrTeacherNotFound, errors.Cause(err))

	assignments, err := app.Roster.ListAssignments(ctx, roster.AssignmentFilter{SubjectID: subject.ID})
	require.NoError(t, err)
	assert.Empty(t, assignments)

	_, err = app.Accounts.GetAccount(ctx, account.GetFilter{Username: "dedi"})
	assert.Equal(t, account.ErrNotFound, errors.Cause(err))
}

func TestService_Register_concurrentClaims(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	const n = 8
	var (
		wg   sync.WaitGroup
		errs = make([]error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = app.AccountSvc.Register(ctx, account.Registration{
				Username: "guru" + strconv.Itoa(i), Password: testutil.Password, Role: account.RoleTeacher,
				NIP: "1980", Name: "Pak Dedi", Gender: roster.GenderMale,
			})
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, account.ErrTeacherClaimed, errors.Cause(err))
	}
	assert.Equal(t, 1, ok)

	teachers, err := app.Roster.ListTeachers(ctx, core.Pagination{Limit: core.MaxLimit})
	require.NoError(t, err)
	assert.Len(t, teachers, 1)
}

func TestService_AuthenticateAuthorize(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	student := testutil.CreateAccount(t, app.Accounts, "siti", "", account.RoleStudent)

	_, err := app.AccountSvc.Authenticate(ctx, "nobody", testutil.Password)
	assert.Equal(t, account.ErrInvalidCredentials, err)
	_, err = app.AccountSvc.Authenticate(ctx, "siti", "wrong")
	assert.Equal(t, account.ErrInvalidCredentials, err)

	acc, err := app.AccountSvc.Authenticate(ctx, " SITI ", testutil.Password)
	require.NoError(t, err)
	assert.True(t, acc.LastLogin.Valid)

	_, err = app.AccountSvc.Authorize(ctx, "nobody", account.TierAuthenticated)
	assert.Equal(t, account.ErrInvalidToken, err)
	_, err = app.AccountSvc.Authorize(ctx, student.Username, account.TierTeacherOrAdmin)
	assert.Equal(t, account.ErrInsufficientPrivilege, err)
	acc, err = app.AccountSvc.Authorize(ctx, student.Username, account.TierAuthenticated)
	require.NoError(t, err)
	assert.Equal(t, student.ID, acc.ID)
}

func TestService_UpdateProfile(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	student := testutil.CreateStudent(t, app.Roster, "300", "Dewi", roster.GenderFemale)
	acc := testutil.CreateAccount(t, app.Accounts, "dewi", "", account.RoleStudent, student.ID)

	name, addr, pwd := "Dewi Lestari", "Jl. Raya Padalarang", "Baru#Sandi99"
	require.NoError(t, app.AccountSvc.UpdateProfile(ctx, acc, account.ProfileUpdate{
		Name: &name, Address: &addr, Password: &pwd,
	}))

	p, err := app.AccountSvc.Profile(ctx, acc)
	require.NoError(t, err)
	require.NotNil(t, p.Student)
	assert.Equal(t, name, p.Student.Name)
	assert.Equal(t, addr, p.Student.Address.String)
	assert.Nil(t, p.Teacher)

	_, err = app.AccountSvc.Authenticate(ctx, "dewi", pwd)
	assert.NoError(t, err)
}

func TestService_ResetPassword(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	acc := testutil.CreateAccount(t, app.Accounts, "budi", "budi@test.id", account.RoleAdmin)

	err := app.AccountSvc.RequestPasswordReset(ctx, "unknown@test.id")
	assert.Equal(t, account.ErrNotFound, errors.Cause(err))
	assert.Empty(t, app.Mail.Sent())

	require.NoError(t, app.AccountSvc.RequestPasswordReset(ctx, " BUDI@test.id "))
	sent := app.Mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, acc.Email.String, sent[0].To[0].Address)
	data := sent[0].TemplateData.(map[string]interface{})
	uid, token := data["UID"].(string), data["Token"].(string)

	badLink := account.ResetPassword{UID: uid, Token: "HE4TS-sig", Password: "Baru#Sandi99"}
	assert.IsType(t, &core.ValidationError{}, app.AccountSvc.ResetPassword(ctx, badLink))

	weak := account.ResetPassword{UID: uid, Token: token, Password: "short"}
	assert.IsType(t, &core.ValidationError{}, app.AccountSvc.ResetPassword(ctx, weak))

	require.NoError(t, app.AccountSvc.ResetPassword(ctx, account.ResetPassword{UID: uid, Token: token, Password: "Baru#Sandi99"}))
	_, err = app.AccountSvc.Authenticate(ctx, "budi", "Baru#Sandi99")
	assert.NoError(t, err)

	// the token is bound to the previous password hash
	err = app.AccountSvc.ResetPassword(ctx, account.ResetPassword{UID: uid, Token: token, Password: "Lain#Sandi77"})
	assert.IsType(t, &core.ValidationError{}, err)
}

func TestService_SaveAdmin(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	teacher := testutil.CreateTeacher(t, app.Roster, "1990", "Pak Ujang", roster.GenderMale)
	testutil.CreateAccount(t, app.Accounts, "ujang", "", account.RoleTeacher, teacher.ID)

	acc, err := app.AccountSvc.SaveAdmin(ctx, "UJANG", "ujang@test.id", "Admin#Baru1")
	require.NoError(t, err)
	assert.Equal(t, account.RoleAdmin, acc.Role)
	assert.False(t, acc.TeacherID.Valid)
	assert.Equal(t, "ujang@test.id", acc.Email.String)

	acc, err = app.AccountSvc.SaveAdmin(ctx, "kepsek", "", "Admin#Baru2")
	require.NoError(t, err)
	assert.False(t, acc.Email.Valid)
	_, err = app.AccountSvc.Authenticate(ctx, "kepsek", "Admin#Baru2")
	assert.NoError(t, err)
}
