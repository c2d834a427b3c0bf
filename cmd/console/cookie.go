package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/arklim/subhub-console/internal/core/port"
	"github.com/arklim/subhub-console/internal/infra/app"
	"github.com/arklim/subhub-console/internal/infra/logger"
)

func newCookieCmd(application *app.Application) *cobra.Command {
	cookie := &cobra.Command{
		Use:   "cookie",
		Short: "Manage stored credentials and their target bindings",
	}
	cookie.AddCommand(
		newCookieListCmd(application),
		newCookieAddCmd(application),
		newCookieDeleteCmd(application),
		newCookieCheckCmd(application),
		newCookieTargetCmd(application),
	)
	return cookie
}

func newCookieListCmd(application *app.Application) *cobra.Command {
	var filter port.CookieFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored cookies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cookies, err := application.Cookies.Cookies(cmd.Context(), filter)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSITE\tNAME\tSTATUS\tLAST USAGE\tCOOLDOWN\tCONTENT")
			for _, c := range cookies {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					c.ID, c.SiteName, c.FriendlyName, c.Status,
					c.LastUsage.Format(time.RFC3339),
					time.Duration(c.CooldownMs)*time.Millisecond,
					logger.MaskSecret(c.Content))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&filter.SiteName, "site", "", "filter by site name")
	cmd.Flags().StringVar(&filter.Target, "target", "", "filter by target")
	return cmd
}

func newCookieAddCmd(application *app.Application) *cobra.Command {
	var site, content string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a new cookie for a site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := bootstrap(ctx, application); err != nil {
				return err
			}
			if err := application.Cookies.Add(ctx, site, content); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cookie stored")
			return nil
		},
	}
	cmd.Flags().StringVar(&site, "site", "", "site name")
	cmd.Flags().StringVar(&content, "content", "", "cookie content")
	_ = cmd.MarkFlagRequired("site")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newCookieDeleteCmd(application *app.Application) *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a cookie and its target bindings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := application.Cookies.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cookie deleted")
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "cookie id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newCookieCheckCmd(application *app.Application) *cobra.Command {
	var site, content string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe whether cookie content works for a site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ok, err := application.Cookies.Validate(cmd.Context(), site, content)
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintln(cmd.OutOrStdout(), "cookie is valid")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "cookie was rejected by the site")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&site, "site", "", "site name")
	cmd.Flags().StringVar(&content, "content", "", "cookie content")
	_ = cmd.MarkFlagRequired("site")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newCookieTargetCmd(application *app.Application) *cobra.Command {
	target := &cobra.Command{
		Use:   "target",
		Short: "Manage cookie to (platform, target) bindings",
	}

	var listFilter port.CookieFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List cookie bindings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			targets, err := application.Cookies.CookieTargets(cmd.Context(), listFilter)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COOKIE\tPLATFORM\tTARGET\tTARGET NAME")
			for _, t := range targets {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.CookieID, t.PlatformName, t.Target, t.TargetName)
			}
			return w.Flush()
		},
	}
	list.Flags().Int64Var(&listFilter.CookieID, "cookie", 0, "filter by cookie id")
	list.Flags().StringVar(&listFilter.SiteName, "site", "", "filter by site name")
	list.Flags().StringVar(&listFilter.Target, "target", "", "filter by target")

	var bindCookie int64
	var bindPlatform, bindTarget string
	bind := &cobra.Command{
		Use:   "add",
		Short: "Bind a cookie to a platform target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := bootstrap(ctx, application); err != nil {
				return err
			}
			if err := application.Cookies.Associate(ctx, bindCookie, bindPlatform, bindTarget); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cookie bound")
			return nil
		},
	}
	bind.Flags().Int64Var(&bindCookie, "cookie", 0, "cookie id")
	bind.Flags().StringVar(&bindPlatform, "platform", "", "platform name")
	bind.Flags().StringVar(&bindTarget, "target", "", "platform target identifier")
	_ = bind.MarkFlagRequired("cookie")
	_ = bind.MarkFlagRequired("platform")
	_ = bind.MarkFlagRequired("target")

	var unbindCookie int64
	var unbindPlatform, unbindTarget string
	unbind := &cobra.Command{
		Use:   "delete",
		Short: "Remove a cookie binding",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := application.Cookies.Dissociate(cmd.Context(), unbindCookie, unbindPlatform, unbindTarget); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "binding removed")
			return nil
		},
	}
	unbind.Flags().Int64Var(&unbindCookie, "cookie", 0, "cookie id")
	unbind.Flags().StringVar(&unbindPlatform, "platform", "", "platform name")
	unbind.Flags().StringVar(&unbindTarget, "target", "", "platform target identifier")
	_ = unbind.MarkFlagRequired("cookie")
	_ = unbind.MarkFlagRequired("platform")
	_ = unbind.MarkFlagRequired("target")

	target.AddCommand(list, bind, unbind)
	return target
}
