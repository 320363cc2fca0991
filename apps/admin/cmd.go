package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/acfjba/platformdigital-sub000/core/user"
	"github.com/acfjba/platformdigital-sub000/services/scheduler"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// claimsSetter is the part of the Firebase Auth client used to grant roles.
type claimsSetter interface {
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
}

type commandLine struct {
	db      *sql.DB // nil unless the engine is postgres
	usrRepo user.Repository
	jobs    *scheduler.Jobs
	claims  claimsSetter // nil unless the auth provider is firebase
	out     io.Writer    // defaults to stdout
}

func (cli *commandLine) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Platform administration commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.AddCommand(
		cli.migrateCommand(),
		cli.addUserCommand(),
		cli.resetPasswordCommand(),
		cli.setClaimsCommand(),
		cli.expireLicensesCommand(),
	)
	return root
}

// run executes the command line args, args[0] being the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCommand()
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	if cli.out != nil {
		root.SetOut(cli.out)
		root.SetErr(cli.out)
	}
	return root.ExecuteContext(context.Background())
}

// promptPassword reads a password from the terminal without echoing it.
func promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		_ = cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) resetPasswordCommand() *cobra.Command {
	var uname string
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if uname == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			return cli.resetPassword(cmd.Context(), uname, pwd)
		},
	}
	cmd.Flags().StringVar(&uname, "username", "", "The user's username or email. The password will be prompted next.")
	return cmd
}
