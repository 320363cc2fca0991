package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (cli *commandLine) expireLicensesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "expire-licenses",
		Short: "Expire the lapsed licenses and warn the schools whose license expires soon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			run, err := cli.jobs.ExpireLicenses(cmd.Context())
			if err != nil {
				return err
			}
			for _, lic := range run.Expired {
				fmt.Fprintf(cmd.OutOrStdout(), "expired: school %s (%s)\n", lic.SchoolID, lic.ExpiresAt.Format("2006-01-02"))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d license(s) expired, %d school(s) notified\n", len(run.Expired), run.Notified)
			return nil
		},
	}
}
