package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/academic"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/dashboard"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/news"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool

		AccountSvc   *account.Service
		RosterSvc    *roster.Service
		AcademicSvc  *academic.Service
		NewsSvc      *news.Service
		DashboardSvc *dashboard.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		address  string
		deps     *ServerDeps
		app      *echo.Echo
		tokens   tokenIssuer
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

// NewServer builds the API. When shutdown is nil the server listens for SIGINT and SIGTERM itself.
func NewServer(address string, shutdown chan os.Signal, deps *ServerDeps) Server {
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	}
	s := &server{
		address:  address,
		deps:     deps,
		app:      echo.New(),
		tokens:   newTokenIssuer(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: shutdown,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     conf.CORSOrigins,
		AllowCredentials: true,
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	api := s.app.Group("/api")
	api.Static("/uploads", conf.UploadDir)

	registerAccountAPI(api, s)
	registerRosterAPI(api, s)
	registerAcademicAPI(api, s)
	registerNewsAPI(api, s)
	registerDashboardAPI(api, s)
}

// require chains bearer token verification with the tier gate.
func (s *server) require(tier account.Tier) echo.MiddlewareFunc {
	verify := s.tokens.jwtMiddleware()
	check := gate(s.deps.AccountSvc, tier)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(check(next))
	}
}

func (s *server) Start() {
	if err := s.app.Start(s.address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, messageResponse{Message: "Welcome to the SMKN 4 Padalarang API"})
}
