package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/icba/apps/api/echo"
	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/class"
	"github.com/trezcool/icba/core/demographic"
	"github.com/trezcool/icba/core/feedback"
	"github.com/trezcool/icba/core/position"
	"github.com/trezcool/icba/core/survey"
	"github.com/trezcool/icba/core/user"
	emailsvc "github.com/trezcool/icba/services/email"
	limitsvc "github.com/trezcool/icba/services/limiter"
	logsvc "github.com/trezcool/icba/services/logger"
	"github.com/trezcool/icba/storage/database"
	"github.com/trezcool/icba/storage/database/sqlxrepos"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// ShutdownSignal receives the OS interrupts & the shutdown requests of the API server.
	ShutdownSignal chan os.Signal

	serverParams struct {
		dig.In

		Conf           *core.Config
		Logger         core.Logger
		Shutdown       ShutdownSignal
		UserSvc        *user.Service
		PositionSvc    *position.Service
		ClassSvc       *class.Service
		SurveySvc      *survey.Service
		DemographicSvc *demographic.Service
		FeedbackSvc    *feedback.Service
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DB, core.DBExecutor) {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB, conf.Database.Engine); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db, db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridAPIKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// newLimiter uses redis when an address is configured; a process local limiter otherwise.
func newLimiter(conf *core.Config, logger core.Logger) core.Limiter {
	if conf.Redis.Address == "" {
		logger.Info("no redis address configured: using the in-memory limiter")
		return limitsvc.NewMemoryLimiter()
	}
	rdb, err := limitsvc.NewRedisClient(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
	}
	return limitsvc.NewRedisLimiter(rdb)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

func newShutdownSignal() ShutdownSignal {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	return shutdown
}

func newServer(p serverParams) echoapi.Server {
	return echoapi.NewServer(&echoapi.Options{
		Conf:           p.Conf,
		Logger:         p.Logger,
		UserSvc:        p.UserSvc,
		PositionSvc:    p.PositionSvc,
		ClassSvc:       p.ClassSvc,
		SurveySvc:      p.SurveySvc,
		DemographicSvc: p.DemographicSvc,
		FeedbackSvc:    p.FeedbackSvc,
		SignalShutdown: func() {
			select {
			case p.Shutdown <- syscall.SIGTERM:
			default: // already shutting down
			}
		},
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	// config & ambient services
	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(newLimiter))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newShutdownSignal))

	// repositories
	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(sqlxrepos.NewPositionRepository, dig.As(new(position.Repository))))
	must(c.Provide(sqlxrepos.NewClassRepository, dig.As(new(class.Repository))))
	must(c.Provide(sqlxrepos.NewSurveyRepository, dig.As(new(survey.Repository))))
	must(c.Provide(sqlxrepos.NewDemographicRepository, dig.As(new(demographic.Repository))))
	must(c.Provide(sqlxrepos.NewFeedbackRepository, dig.As(new(feedback.Repository))))

	// domain services
	must(c.Provide(user.NewService))
	must(c.Provide(position.NewService))
	must(c.Provide(func(svc *user.Service) class.UserService { return svc }))
	must(c.Provide(func(svc *position.Service) (class.PositionService, survey.PositionService) { return svc, svc }))
	must(c.Provide(class.NewService))
	must(c.Provide(func(svc *class.Service) survey.ClassService { return svc }))
	must(c.Provide(survey.NewService))
	must(c.Provide(demographic.NewService))
	must(c.Provide(feedback.NewService))

	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
