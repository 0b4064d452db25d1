package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	echoapi "github.com/trezcool/alama/apps/api/echo"
	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/prediction"
	"github.com/trezcool/alama/core/student"
	"github.com/trezcool/alama/core/user"
	logsvc "github.com/trezcool/alama/services/logger"
	metricsvc "github.com/trezcool/alama/services/metrics"
	scoringsvc "github.com/trezcool/alama/services/scoring"
	sessionsvc "github.com/trezcool/alama/services/session"
	"github.com/trezcool/alama/storage/database"
	inmemdb "github.com/trezcool/alama/storage/database/inmem"
	sqlxrepos "github.com/trezcool/alama/storage/database/sqlx"
)

type repositories struct {
	tx       core.TxRunner
	users    user.Repository
	students student.Repository
	history  prediction.Repository
	close    func() error
}

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
	defer logger.Flush()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	repos, err := setUpDB(conf)
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up services
	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	usrSvc := user.NewService(repos.users, validate)
	seeded, err := usrSvc.SeedDefaults(context.Background())
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("seeding default users: %v", err), err)
	}
	if seeded {
		dbLogger.Info("Default users created")
	}

	metrics := metricsvc.New()
	predictionSvc := prediction.NewService(prediction.Deps{
		Tx:       repos.tx,
		History:  repos.history,
		Students: repos.students,
		Scorer:   loadScorer(conf, logger),
		Observer: metrics,
		Location: conf.Location(),
	})

	sessions, closeSessions, err := newSessionStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up session store: %v", err), err)
	}
	defer func() {
		if err = closeSessions(); err != nil {
			logger.Error("Failed to close session store", err)
		}
	}()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus metrics.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.Publish("modelLoaded", expvar.Func(func() interface{} { return predictionSvc.ModelLoaded() }))

	http.Handle("/metrics", metrics.Handler())

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       usrSvc,
			StudentSvc:    student.NewService(repos.students, validate),
			PredictionSvc: predictionSvc,
			Sessions:      sessions,
			Metrics:       metrics,
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

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

func setUpDB(conf *core.Config) (repositories, error) {
	switch conf.Database.Engine {
	case "memory":
		db := inmemdb.Open()
		return repositories{
			tx:       db,
			users:    inmemdb.NewUserRepository(db),
			students: inmemdb.NewStudentRepository(db),
			history:  inmemdb.NewHistoryRepository(db),
			close:    func() error { return nil },
		}, nil

	case "postgres":
		if err := database.CreateIfNotExist(conf); err != nil {
			return repositories{}, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return repositories{}, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return repositories{}, err
		}
		return repositories{
			tx:       sqlxrepos.NewTxRunner(db),
			users:    sqlxrepos.NewUserRepository(db),
			students: sqlxrepos.NewStudentRepository(db),
			history:  sqlxrepos.NewHistoryRepository(db),
			close:    db.Close,
		}, nil

	default:
		return repositories{}, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
}

// loadScorer returns nil if the model cannot be loaded: the API still serves everything but predictions.
func loadScorer(conf *core.Config, logger core.Logger) prediction.Scorer {
	path := conf.Model.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(core.Getwd(), path)
	}
	model, err := scoringsvc.Load(path)
	if err != nil {
		logger.Warn(fmt.Sprintf("ML model not loaded: %v", err), err)
		return nil
	}
	logger.Info(fmt.Sprintf("ML model loaded : %s %s", model.Name, model.Version))
	return model
}

func newSessionStore(conf *core.Config) (sessionsvc.Store, func() error, error) {
	if conf.Redis.Address == "" {
		return sessionsvc.NewMemoryStore(), func() error { return nil }, nil
	}
	store, err := sessionsvc.NewRedisStore(context.Background(), conf.Redis)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
