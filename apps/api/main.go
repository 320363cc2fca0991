package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on the default mux

	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/apps"
	echoapi "github.com/acfjba/platformdigital-sub000/apps/api/echo"
	"github.com/acfjba/platformdigital-sub000/core"
	emailsvc "github.com/acfjba/platformdigital-sub000/services/email"
	logsvc "github.com/acfjba/platformdigital-sub000/services/logger"
	"github.com/acfjba/platformdigital-sub000/services/scheduler"
	"github.com/acfjba/platformdigital-sub000/storage"
	"github.com/acfjba/platformdigital-sub000/storage/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger, err := newLogger("API", conf)
	if err != nil {
		return err
	}
	defer logger.Sync()

	dbLogger, err := newLogger("DB", conf)
	if err != nil {
		return err
	}
	defer dbLogger.Sync()

	ctx := context.Background()

	// set up DB
	repos, err := setUpStorage(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := apps.NewValidator()
	core.ParseEmailTemplates(conf, logger)
	svcs := apps.NewServices(repos, mailSvc, validate, translator, conf)

	var verifier echoapi.TokenVerifier
	if conf.Auth.Provider == core.AuthProviderFirebase {
		client, err := echoapi.NewFirebaseAuth(ctx, conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up firebase auth: %v", err), err)
		}
		verifier = echoapi.NewFirebaseVerifier(client)
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus metrics of the API.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	http.Handle("/metrics", echoapi.MetricsHandler())

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Scheduler

	var sched *scheduler.Scheduler
	if conf.Scheduler.Enabled {
		cronLogger, err := newLogger("CRON", conf)
		if err != nil {
			return err
		}
		defer cronLogger.Sync()

		if sched, err = scheduler.New(conf, svcs.Jobs(mailSvc, conf, cronLogger), cronLogger); err != nil {
			logger.Fatal(fmt.Sprintf("setting up scheduler: %v", err), err)
		}
		sched.Start()
	}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Svcs:       svcs,
		Validate:   validate,
		Translator: translator,
		Verifier:   verifier,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		return errors.Wrap(err, "server error")

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests and jobs a deadline for completion
		ctx, cancel := context.WithTimeout(ctx, conf.Server.ShutdownTimeout)
		defer cancel()

		if sched != nil {
			if err := sched.Stop(ctx); err != nil {
				logger.Error(fmt.Sprintf("could not stop scheduler gracefully: %v", err), err)
			}
		}

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				return errors.Wrap(err, "could not force stop server")
			}
		}
	}
	return nil
}

func newLogger(name string, conf *core.Config) (*logsvc.RollbarLogger, error) {
	std, err := logsvc.NewZap(name, conf)
	if err != nil {
		return nil, errors.Wrapf(err, "setting up %s logger", name)
	}
	return logsvc.NewRollbarLogger(std, conf), nil
}

// setUpStorage creates and migrates the postgres database before opening the repositories.
func setUpStorage(ctx context.Context, conf *core.Config) (*storage.Repositories, error) {
	if conf.Database.Engine == core.EnginePostgres {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		err = database.Migrate(db.DB, "up")
		_ = db.Close()
		if err != nil {
			return nil, err
		}
	}
	return storage.Open(ctx, conf)
}
