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

	"github.com/acfjba/platformdigital-sub000/apps"
	"github.com/acfjba/platformdigital-sub000/core"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Svcs       *apps.Services
		Validate   *validator.Validate
		Translator ut.Translator
		// Verifier checks the bearer tokens; the local HS256 verifier when nil.
		Verifier TokenVerifier
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(ctx context.Context) error
		Close() error
	}

	server struct {
		ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	if deps.Verifier == nil {
		deps.Verifier = NewLocalVerifier(deps.Conf)
	}
	s := &server{
		ServerDeps: deps,
		app:        echo.New(),
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(metricsMiddleware())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	authed := authMiddleware(s.Verifier)

	// platform
	registerUserAPI(v1, authed, s.ServerDeps)
	registerSchoolAPI(v1, authed, s.ServerDeps)

	// school routes: tenant check first, then the license gate except for the
	// school detail, its license and the dashboard (registered last so that the
	// catch-all routes of the gated group do not shadow them)
	sg := v1.Group("/schools/:school_id", authed, tenantMiddleware(s.Svcs.Schools))
	lg := sg.Group("", licenseMiddleware(s.Svcs.Licenses))
	registerSchoolUserAPI(lg, s.ServerDeps)
	registerStaffAPI(lg, s.ServerDeps)
	registerStudentAPI(lg, s.ServerDeps)
	registerAttendanceAPI(lg, s.ServerDeps)
	registerExamAPI(lg, s.ServerDeps)
	registerDisciplineAPI(lg, s.ServerDeps)
	registerLibraryAPI(lg, s.ServerDeps)
	registerPlanningAPI(lg, s.ServerDeps)
	registerImportAPI(lg, s.ServerDeps)
	registerEmailConfigAPI(lg, s.ServerDeps)

	registerSchoolDetailAPI(sg, s.ServerDeps)
	registerDashboardAPI(v1, sg, authed, s.ServerDeps)
}

func (s *server) Start() {
	if err := s.app.Start(s.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
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
	default: // already signaled
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.Conf.AppName+" API!")
}
