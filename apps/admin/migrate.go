package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/acfjba/platformdigital-sub000/storage/database"
)

var gooseRunFunc = database.Migrate // mockable

func (cli *commandLine) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose migration command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.migrate(args)
		},
	}
}

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errors.New("migrations only apply to the postgres engine")
	}
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}
