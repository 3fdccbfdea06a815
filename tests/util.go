// Package testutil wires in-memory services and seeds fixtures for tests.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/academic"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/dashboard"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/news"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
	appfs "github.com/RezzaFairusNugraha/SMKN4PADALARANG/fs"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/services/email"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/services/filestore"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/services/logger"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/storage/database/inmem"
)

// Password satisfies the password policy.
const Password = "Rahasia#2024"

// App holds the services of an in-memory deployment.
type App struct {
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	DB         *inmemdb.DB
	Mail       *emailsvc.ConsoleServiceMock

	Accounts account.Repository
	Roster   roster.Repository
	Academic academic.Repository
	News     news.Repository

	AccountSvc   *account.Service
	RosterSvc    *roster.Service
	AcademicSvc  *academic.Service
	NewsSvc      *news.Service
	DashboardSvc *dashboard.Service
}

func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

// NewValidator registers every custom validation of the app.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	roster.InitValidators(validate, translator)
	academic.InitValidators(validate, translator)
	return validate, translator
}

func NewApp(t *testing.T) *App {
	conf := core.NewTestConfig()
	conf.UploadDir = t.TempDir()

	app := &App{Conf: conf, Logger: NewLogger(conf), DB: inmemdb.Open()}
	app.Validate, app.Translator = NewValidator()
	app.Mail = emailsvc.NewConsoleServiceMock(conf, app.Logger)
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, true /* strict */, app.Logger)
	account.LoadCommonPasswords(appfs.FS, appfs.CommonPasswords, app.Logger)

	app.Accounts = inmemdb.NewAccountRepository(app.DB)
	app.Roster = inmemdb.NewRosterRepository(app.DB)
	app.Academic = inmemdb.NewAcademicRepository(app.DB)
	app.News = inmemdb.NewNewsRepository(app.DB)

	images, err := filestore.NewLocalStore(conf.UploadDir, filestore.NewsDir)
	if err != nil {
		t.Fatalf("filestore.NewLocalStore(): %v", err)
	}

	app.RosterSvc = roster.NewService(app.DB, app.Roster)
	app.AccountSvc = account.NewService(app.DB, app.Accounts, app.Roster, app.Mail, conf)
	app.AcademicSvc = academic.NewService(app.Academic, app.Roster)
	app.NewsSvc = news.NewService(app.News, images, app.Logger)
	app.DashboardSvc = dashboard.NewService(
		inmemdb.NewDashboardRepository(app.DB), app.Roster, app.RosterSvc, app.Academic, app.News,
	)
	return app
}

func CreateAccount(t *testing.T, repo account.Repository, username, email string, role account.Role, linkID ...int) account.Account {
	ts := time.Now().UTC().Truncate(time.Microsecond)
	acc := account.Account{
		Username:  username,
		Email:     null.NewString(email, email != ""),
		Role:      role,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if len(linkID) > 0 {
		switch role {
		case account.RoleTeacher:
			acc.TeacherID = null.IntFrom(linkID[0])
		case account.RoleStudent:
			acc.StudentID = null.IntFrom(linkID[0])
		}
	}
	if err := acc.SetPassword(Password); err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	acc, err := repo.CreateAccount(context.Background(), acc)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acc
}

func CreateClass(t *testing.T, repo roster.Repository, major, name string) roster.Class {
	c, err := repo.CreateClass(context.Background(), roster.Class{Major: major, Name: name})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return c
}

func CreateStudent(t *testing.T, repo roster.Repository, nisn, name, gender string, classID ...int) roster.Student {
	s := roster.Student{NISN: nisn, Name: name, Gender: gender}
	if len(classID) > 0 {
		s.ClassID = null.IntFrom(classID[0])
	}
	s, err := repo.CreateStudent(context.Background(), s)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func CreateTeacher(t *testing.T, repo roster.Repository, nip, name, gender string) roster.Teacher {
	teacher, err := repo.CreateTeacher(context.Background(), roster.Teacher{NIP: nip, Name: name, Gender: gender})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return teacher
}

func CreateSubject(t *testing.T, repo roster.Repository, name, category string) roster.Subject {
	s, err := repo.CreateSubject(context.Background(), roster.Subject{Name: name, Category: category})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return s
}

func CreateAssignment(t *testing.T, repo roster.Repository, teacherID, subjectID int, classID ...int) roster.Assignment {
	a := roster.Assignment{TeacherID: teacherID, SubjectID: subjectID}
	if len(classID) > 0 {
		a.ClassID = null.IntFrom(classID[0])
	}
	a, err := repo.CreateAssignment(context.Background(), a)
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return a
}
