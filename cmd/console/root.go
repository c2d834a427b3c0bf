package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arklim/subhub-console/internal/core/port"
	"github.com/arklim/subhub-console/internal/infra/app"
	"github.com/arklim/subhub-console/internal/infra/logger"
	"github.com/arklim/subhub-console/internal/infra/telemetry"
	"github.com/arklim/subhub-console/internal/session"
)

var (
	bearerToken string
	metricsAddr string
)

func newRootCmd(application *app.Application) *cobra.Command {
	root := &cobra.Command{
		Use:           "console",
		Short:         "Manage group subscriptions, cookies and scheduling weights",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// One id per invocation; the guard reuses it on every call the
			// command fans out into.
			ctx := context.WithValue(cmd.Context(), logger.RequestIDKey{}, uuid.NewString())
			cmd.SetContext(ctx)
			logger.WithContext(ctx).Debug("command invoked", zap.String("command", cmd.CommandPath()))

			if bearerToken == "" {
				bearerToken = os.Getenv("SUBHUB_TOKEN")
			}
			if bearerToken != "" {
				if err := application.Sessions.Activate(port.AuthGrant{Token: bearerToken}); err != nil {
					return err
				}
			}

			if metricsAddr != "" {
				go telemetry.ServeMetrics(metricsAddr, application.Logger)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&bearerToken, "token", "", "bearer token from a previous login (or SUBHUB_TOKEN)")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address for the command's lifetime")

	root.AddCommand(
		newLoginCmd(application),
		newConfCmd(application),
		newSubsCmd(application),
		newCookieCmd(application),
		newWeightCmd(application),
	)
	return root
}

// Execute runs the command tree against the wired application.
func Execute(ctx context.Context, application *app.Application) error {
	root := newRootCmd(application)
	if err := root.ExecuteContext(ctx); err != nil {
		switch {
		case errors.Is(err, session.ErrNotAuthenticated):
			fmt.Fprintln(os.Stderr, "error: not logged in; run `console login <code>` or pass --token")
		case errors.Is(err, session.ErrUnauthorized):
			fmt.Fprintln(os.Stderr, "error: session rejected by server; log in again")
		default:
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		return err
	}
	return nil
}

// bootstrap loads the capability registry before commands that need it.
func bootstrap(ctx context.Context, application *app.Application) error {
	if err := application.Bootstrap(ctx); err != nil {
		return fmt.Errorf("load capabilities: %w", err)
	}
	return nil
}
