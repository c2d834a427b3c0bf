package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arklim/subhub-console/internal/infra/app"
)

func newLoginCmd(application *app.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "login <code>",
		Short: "Exchange a one-time login code for a bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grant, err := application.Login(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", grant.Name, grant.Type)
			fmt.Fprintf(cmd.OutOrStdout(), "export SUBHUB_TOKEN=%s\n", grant.Token)
			return nil
		},
	}
}
