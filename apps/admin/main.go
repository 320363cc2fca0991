package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/apps"
	echoapi "github.com/acfjba/platformdigital-sub000/apps/api/echo"
	"github.com/acfjba/platformdigital-sub000/core"
	emailsvc "github.com/acfjba/platformdigital-sub000/services/email"
	logsvc "github.com/acfjba/platformdigital-sub000/services/logger"
	"github.com/acfjba/platformdigital-sub000/storage"
	"github.com/acfjba/platformdigital-sub000/storage/database"
)

func main() {
	if err := run(); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	conf := core.NewConfig()

	std, err := logsvc.NewZap("ADMIN", conf)
	if err != nil {
		return errors.Wrap(err, "setting up logger")
	}
	logger := logsvc.NewRollbarLogger(std, conf)
	defer logger.Sync()

	ctx := context.Background()

	// set up DB
	var db *sql.DB
	if conf.Database.Engine == core.EnginePostgres {
		sqlxDB, err := database.Open(conf)
		if err != nil {
			return err
		}
		defer sqlxDB.Close()
		db = sqlxDB.DB
	}
	repos, err := storage.Open(ctx, conf)
	if err != nil {
		return errors.Wrap(err, "opening storage")
	}
	defer func() {
		if err := repos.Close(); err != nil {
			logger.Error("Failed to close storage", err)
		}
	}()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	validate, translator := apps.NewValidator()
	core.ParseEmailTemplates(conf, logger)
	svcs := apps.NewServices(repos, mailSvc, validate, translator, conf)

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: repos.Users,
		jobs:    svcs.Jobs(mailSvc, conf, logger),
	}
	if conf.Auth.Provider == core.AuthProviderFirebase {
		client, err := echoapi.NewFirebaseAuth(ctx, conf)
		if err != nil {
			return err
		}
		cli.claims = client
	}
	return cli.run(os.Args)
}
