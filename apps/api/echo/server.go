package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/class"
	"github.com/trezcool/icba/core/demographic"
	"github.com/trezcool/icba/core/feedback"
	"github.com/trezcool/icba/core/position"
	"github.com/trezcool/icba/core/survey"
	"github.com/trezcool/icba/core/user"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		UserSvc        *user.Service
		PositionSvc    *position.Service
		ClassSvc       *class.Service
		SurveySvc      *survey.Service
		DemographicSvc *demographic.Service
		FeedbackSvc    *feedback.Service

		// SignalShutdown is called when a handler fails with a core shutdown error.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, conf.Server.StrictStatusCodes, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	api := s.app.Group("/api")
	registerAuthAPI(api, s.opts.UserSvc)
	registerPositionAPI(api, s.opts.UserSvc, s.opts.PositionSvc)
	registerClassAPI(api, s.opts.UserSvc, s.opts.ClassSvc)
	registerSurveyAPI(api, s.opts.UserSvc, s.opts.SurveySvc)
	registerDemographicAPI(api, s.opts.UserSvc, s.opts.DemographicSvc)
	registerFeedbackAPI(api, s.opts.FeedbackSvc)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Conf.Server.Host)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.opts.Conf.AppName+" API!")
}
