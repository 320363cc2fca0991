package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	echoapi "github.com/acfjba/platformdigital-sub000/apps/api/echo"
	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

var errNoFirebase = errors.New("the auth provider is not firebase")

func (cli *commandLine) setClaimsCommand() *cobra.Command {
	var uname, uid string
	cmd := &cobra.Command{
		Use:   "setclaims",
		Short: "Copy a user's id, school and role onto the custom claims of their Firebase account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if uname == "" || uid == "" {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.setClaims(cmd.Context(), uname, uid)
		},
	}
	cmd.Flags().StringVar(&uname, "username", "", "The user's username or email.")
	cmd.Flags().StringVar(&uid, "uid", "", "The Firebase UID of the user.")
	return cmd
}

func (cli *commandLine) setClaims(ctx context.Context, uname, uid string) error {
	if cli.claims == nil {
		return errNoFirebase
	}
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: core.CleanString(uname, true /* lower */)})
	if err != nil {
		return err
	}
	claims := map[string]interface{}{
		echoapi.FirebaseClaimUserID: usr.ID,
		echoapi.FirebaseClaimRole:   usr.Role,
	}
	if usr.SchoolID != "" {
		claims[echoapi.FirebaseClaimSchoolID] = usr.SchoolID
	}
	return errors.Wrap(cli.claims.SetCustomUserClaims(ctx, uid, claims), "setting custom claims")
}
