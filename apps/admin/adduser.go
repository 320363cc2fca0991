package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

type addUserOptions struct {
	username string
	email    string
	name     string
	role     string
	schoolID string
}

func (cli *commandLine) addUserCommand() *cobra.Command {
	opts := &addUserOptions{}
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user, or update the one holding the username or email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.username == "" && opts.email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			return cli.addUser(cmd.Context(), *opts, pwd)
		},
	}
	cmd.Flags().StringVar(&opts.username, "username", "", "The user's username.")
	cmd.Flags().StringVar(&opts.email, "email", "", "The user's email.")
	cmd.Flags().StringVar(&opts.name, "name", "", "The user's full name.")
	cmd.Flags().StringVar(&opts.role, "role", user.RoleSystemAdmin, "One of system_admin, primary_admin, head_teacher, teacher, librarian.")
	cmd.Flags().StringVar(&opts.schoolID, "school", "", "The school of the user. Required unless the role is system_admin.")
	return cmd
}

// addUser updates or creates an active user.User
func (cli *commandLine) addUser(ctx context.Context, opts addUserOptions, pwd string) error {
	uname := core.CleanString(opts.username, true /* lower */)
	email := core.CleanString(opts.email, true /* lower */)
	role := core.CleanString(opts.role, true /* lower */)
	if !user.IsValidRole(role) {
		return errors.Errorf("%q: no such role", opts.role)
	}
	schoolID := core.CleanString(opts.schoolID)
	if role == user.RoleSystemAdmin {
		schoolID = ""
	} else if schoolID == "" {
		return user.ErrSchoolRequired
	}

	var (
		usr user.User
		err error
	)
	for _, key := range []string{uname, email} {
		if key == "" {
			continue
		}
		if usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: key}); err == nil {
			break
		}
		if !core.IsNotFound(err) {
			return err
		}
	}

	now := core.NowFunc().UTC()
	if usr.ID == "" {
		usr = user.User{Username: uname, Email: email, CreatedAt: now}
	}
	if name := core.CleanString(opts.name); name != "" {
		usr.Name = name
	}
	if usr.Name == "" {
		usr.Name = usr.Username
	}
	usr.Role = role
	usr.SchoolID = schoolID
	usr.IsActive = true
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if usr.ID == "" {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	return err
}
