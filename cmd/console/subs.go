package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arklim/subhub-console/internal/infra/app"
	"github.com/arklim/subhub-console/internal/usecase"
)

func newSubsCmd(application *app.Application) *cobra.Command {
	subs := &cobra.Command{
		Use:   "subs",
		Short: "Manage group content subscriptions",
	}
	subs.AddCommand(
		newSubsListCmd(application),
		newSubsAddCmd(application),
		newSubsUpdateCmd(application),
		newSubsDeleteCmd(application),
	)
	return subs
}

func newSubsListCmd(application *app.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List subscriptions of all managed groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups, err := application.Subscribes.Groups(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "GROUP\tNAME\tPLATFORM\tTARGET\tTARGET NAME\tCATEGORIES\tTAGS")
			for _, g := range groups {
				for _, s := range g.Subscribes {
					cats := s.Categories.ToSlice()
					sort.Ints(cats)
					tags := s.Tags.ToSlice()
					sort.Strings(tags)
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%v\t%s\n",
						g.GroupNumber, g.DisplayName, s.PlatformName, s.Target,
						s.TargetName, cats, strings.Join(tags, ","))
				}
			}
			return w.Flush()
		},
	}
}

func subsDraftFlags(cmd *cobra.Command, draft *usecase.SubscribeDraft) {
	cmd.Flags().StringVar(&draft.PlatformName, "platform", "", "platform name")
	cmd.Flags().StringVar(&draft.Target, "target", "", "platform target identifier")
	cmd.Flags().IntSliceVar(&draft.Categories, "cats", nil, "category ids")
	cmd.Flags().StringSliceVar(&draft.Tags, "tags", nil, "tag filters")
	_ = cmd.MarkFlagRequired("platform")
}

func newSubsAddCmd(application *app.Application) *cobra.Command {
	var draft usecase.SubscribeDraft
	cmd := &cobra.Command{
		Use:   "add <group>",
		Short: "Subscribe a group to a platform target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := bootstrap(ctx, application); err != nil {
				return err
			}
			sub, err := application.Subscribes.Add(ctx, args[0], draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subscribed %s/%s (%s)\n",
				sub.PlatformName, sub.Target, sub.TargetName)
			return nil
		},
	}
	subsDraftFlags(cmd, &draft)
	return cmd
}

func newSubsUpdateCmd(application *app.Application) *cobra.Command {
	var draft usecase.SubscribeDraft
	cmd := &cobra.Command{
		Use:   "update <group>",
		Short: "Update categories and tags of an existing subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := bootstrap(ctx, application); err != nil {
				return err
			}
			sub, err := application.Subscribes.Update(ctx, args[0], draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s/%s\n", sub.PlatformName, sub.Target)
			return nil
		},
	}
	subsDraftFlags(cmd, &draft)
	return cmd
}

func newSubsDeleteCmd(application *app.Application) *cobra.Command {
	var platform, target string
	cmd := &cobra.Command{
		Use:   "delete <group>",
		Short: "Remove a subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := application.Subscribes.Delete(cmd.Context(), args[0], platform, target); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "platform name")
	cmd.Flags().StringVar(&target, "target", "", "platform target identifier")
	_ = cmd.MarkFlagRequired("platform")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
