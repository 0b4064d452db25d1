package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/prediction"
	"github.com/trezcool/alama/core/student"
	"github.com/trezcool/alama/core/user"
	metricsvc "github.com/trezcool/alama/services/metrics"
	sessionsvc "github.com/trezcool/alama/services/session"
)

type (
	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		UserSvc       *user.Service
		StudentSvc    *student.Service
		PredictionSvc *prediction.Service
		Sessions      sessionsvc.Store
		Metrics       *metricsvc.Metrics // optional
		Validate      *validator.Validate
		Translator    ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	vala.BeginValidation().Validate(
		vala.IsNotNil(deps.Conf, "deps.Conf"),
		vala.IsNotNil(deps.Logger, "deps.Logger"),
		vala.IsNotNil(deps.UserSvc, "deps.UserSvc"),
		vala.IsNotNil(deps.StudentSvc, "deps.StudentSvc"),
		vala.IsNotNil(deps.PredictionSvc, "deps.PredictionSvc"),
		vala.IsNotNil(deps.Sessions, "deps.Sessions"),
		vala.IsNotNil(deps.Validate, "deps.Validate"),
		vala.IsNotNil(deps.Translator, "deps.Translator"),
	).CheckAndPanic()

	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	if s.deps.Metrics != nil {
		s.app.Use(s.deps.Metrics.Middleware())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     conf.Server.AllowOrigins,
		AllowCredentials: true,
	}))

	s.app.GET("/", home)

	g := s.app.Group("/api")
	authed := []echo.MiddlewareFunc{
		middleware.JWTWithConfig(newJWTConfig(conf)),
		revocationMiddleware(s.deps.Sessions),
	}

	registerAccountAPI(g, authed, accountApi{
		conf:       conf,
		svc:        s.deps.UserSvc,
		sessions:   s.deps.Sessions,
		captcha:    sessionsvc.NewCaptchaService(s.deps.Sessions, conf.Server.CaptchaTTL, conf.Server.CaptchaEnabled),
		validate:   s.deps.Validate,
		translator: s.deps.Translator,
	})
	registerStudentAPI(g, authed, s.deps.StudentSvc)
	registerPredictionAPI(g, authed, s.deps.PredictionSvc)
}

func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

// Errors reports a failure to start or keep serving.
func (s *Server) Errors() <-chan error {
	return s.errors
}

// ShutdownSignal receives SIGINT, SIGTERM and the signal raised by SignalShutdown.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the owner of the Server to shut it down gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Alama API!")
}
