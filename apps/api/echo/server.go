package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/dig"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/employee"
	"github.com/trezcool/lonesystem/core/payslip"
	"github.com/trezcool/lonesystem/core/raise"
	"github.com/trezcool/lonesystem/core/report"
	"github.com/trezcool/lonesystem/core/semester"
	"github.com/trezcool/lonesystem/core/tax"
	"github.com/trezcool/lonesystem/core/user"
)

const bodyLimit = "10M"

type (
	ServerDeps struct {
		dig.In

		Conf       *core.Config
		Logger     core.Logger
		DB         core.DB
		Validate   *validator.Validate
		Translator ut.Translator

		EmployeeSvc *employee.Service
		RaiseSvc    *raise.Service
		TaxCalc     tax.Calculator
		SemesterSvc *semester.Service
		ReportSvc   *report.Service
		PayslipSvc  *payslip.Service
		UserSvc     *user.Service
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(ctx context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     authenticator
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		auth:     authenticator{conf: deps.Conf, svc: deps.UserSvc},
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  conf.Server.AllowOrigins,
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))
	s.app.Use(middleware.BodyLimit(bodyLimit))

	s.app.GET("/", home)

	api := s.app.Group("/api")
	api.GET("/health", s.health)

	jwt := s.auth.middleware()
	registerAuthAPI(api, jwt, s.auth, s.deps.Validate)

	// the UI sends no credentials: the domain endpoints are only guarded when auth is enabled
	domain := api.Group("")
	if conf.Auth.Enabled {
		domain.Use(jwt)
	}
	registerEmployeeAPI(domain, s.deps.EmployeeSvc, s.deps.PayslipSvc, s.deps.Validate)
	registerRaiseAPI(domain, s.deps.RaiseSvc, s.deps.Validate)
	registerTaxAPI(domain, s.deps.EmployeeSvc, s.deps.TaxCalc)
	registerSemesterAPI(domain, s.deps.SemesterSvc, s.deps.Validate)
	registerReportAPI(domain, s.deps.ReportSvc)
}

func (s *server) Start() {
	s.app.Server.ReadTimeout = s.deps.Conf.Server.RequestTimeout
	s.app.Server.WriteTimeout = s.deps.Conf.Server.RequestTimeout
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
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
	default: // already shutting down
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Välkommen till Lönesystem API!")
}

func (s *server) health(ctx echo.Context) error {
	status := "ok"
	code := http.StatusOK
	if err := s.deps.DB.PingContext(ctx.Request().Context()); err != nil {
		status = "db not ready"
		code = http.StatusServiceUnavailable
	}
	return ctx.JSON(code, echo.Map{"status": status, "build": s.deps.Conf.Build})
}
