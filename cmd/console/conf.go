package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arklim/subhub-console/internal/infra/app"
)

func newConfCmd(application *app.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "conf",
		Short: "Show declared platform and site capabilities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := bootstrap(ctx, application); err != nil {
				return err
			}

			platforms, err := application.Registry.Platforms()
			if err != nil {
				return err
			}
			sites, err := application.Registry.Sites()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PLATFORM\tSITE\tTARGET\tTAGS\tCATEGORIES")
			for _, p := range platforms {
				cats := make([]string, 0, len(p.Categories))
				for id, label := range p.Categories {
					cats = append(cats, fmt.Sprintf("%d:%s", id, label))
				}
				sort.Strings(cats)
				fmt.Fprintf(w, "%s\t%s\t%v\t%v\t%s\n",
					p.PlatformName, p.SiteName, p.HasTarget, p.TagsEnabled, strings.Join(cats, ","))
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "SITE\tCOOKIES")
			for _, s := range sites {
				fmt.Fprintf(w, "%s\t%v\n", s.Name, s.CookieEnabled)
			}
			return w.Flush()
		},
	}
}
