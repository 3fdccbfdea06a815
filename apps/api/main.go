package main

import (
	"context"
	"expvar"
	"fmt"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/RezzaFairusNugraha/SMKN4PADALARANG/apps/api/echo"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/academic"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/dashboard"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/news"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
	appfs "github.com/RezzaFairusNugraha/SMKN4PADALARANG/fs"
	emailsvc "github.com/RezzaFairusNugraha/SMKN4PADALARANG/services/email"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/services/filestore"
	logsvc "github.com/RezzaFairusNugraha/SMKN4PADALARANG/services/logger"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/storage/database"
	inmemdb "github.com/RezzaFairusNugraha/SMKN4PADALARANG/storage/database/inmem"
	sqlxrepos "github.com/RezzaFairusNugraha/SMKN4PADALARANG/storage/database/sqlx"
)

// repositories is one storage engine's implementation of every repository.
type repositories struct {
	tx        core.Transactor
	accounts  account.Repository
	roster    roster.Repository
	academic  academic.Repository
	news      news.Repository
	dashboard dashboard.Repository
	closer    io.Closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	repos, err := setUpRepositories(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.closer.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	images, err := filestore.NewLocalStore(conf.UploadDir, filestore.NewsDir)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up uploads: %v", err), err)
	}

	rosterSvc := roster.NewService(repos.tx, repos.roster)
	accountSvc := account.NewService(repos.tx, repos.accounts, repos.roster, mailSvc, conf)
	academicSvc := academic.NewService(repos.academic, repos.roster)
	newsSvc := news.NewService(repos.news, images, logger)
	dashboardSvc := dashboard.NewService(repos.dashboard, repos.roster, rosterSvc, repos.academic, repos.news)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	roster.InitValidators(validate, translator)
	academic.InitValidators(validate, translator)

	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, false /* strict */, logger)

	account.LoadCommonPasswords(appfs.FS, appfs.CommonPasswords, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("db").Set(conf.Database.Engine)

	if conf.Server.DebugHost != "" {
		go func() {
			if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
				logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()
	}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		conf.Server.Host,
		nil, /* shutdown */
		&echoapi.ServerDeps{
			Conf:         conf,
			Logger:       logger,
			Validate:     validate,
			Translator:   translator,
			AccountSvc:   accountSvc,
			RosterSvc:    rosterSvc,
			AcademicSvc:  academicSvc,
			NewsSvc:      newsSvc,
			DashboardSvc: dashboardSvc,
		},
	)

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpRepositories opens the configured storage engine: postgres (created and migrated on start)
// or memory, which forgets everything on exit.
func setUpRepositories(conf *core.Config) (*repositories, error) {
	if conf.Database.Engine == "memory" {
		db := inmemdb.Open()
		return &repositories{
			tx:        db,
			accounts:  inmemdb.NewAccountRepository(db),
			roster:    inmemdb.NewRosterRepository(db),
			academic:  inmemdb.NewAcademicRepository(db),
			news:      inmemdb.NewNewsRepository(db),
			dashboard: inmemdb.NewDashboardRepository(db),
			closer:    nopCloser{},
		}, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &repositories{
		tx:        sqlxrepos.NewTransactor(db),
		accounts:  sqlxrepos.NewAccountRepository(db),
		roster:    sqlxrepos.NewRosterRepository(db),
		academic:  sqlxrepos.NewAcademicRepository(db),
		news:      sqlxrepos.NewNewsRepository(db),
		dashboard: sqlxrepos.NewDashboardRepository(db),
		closer:    db,
	}, nil
}
