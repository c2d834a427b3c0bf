package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arklim/subhub-console/internal/infra/app"
	"github.com/arklim/subhub-console/internal/usecase"
)

func newWeightCmd(application *app.Application) *cobra.Command {
	weight := &cobra.Command{
		Use:   "weight",
		Short: "Manage per-target scheduling weights",
	}
	weight.AddCommand(newWeightListCmd(application), newWeightApplyCmd(application))
	return weight
}

func newWeightListCmd(application *app.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List weight schedules for all targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			weights, err := application.Weights.Weights(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PLATFORM\tTARGET\tTARGET NAME\tDEFAULT\tWINDOWS")
			for _, tw := range weights {
				windows := ""
				for i, win := range tw.Weight.TimeWindows {
					if i > 0 {
						windows += " "
					}
					windows += fmt.Sprintf("%s-%s=%d", win.Start, win.End, win.Weight)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					tw.PlatformName, tw.Target, tw.TargetName, tw.Weight.Default, windows)
			}
			return w.Flush()
		},
	}
}

// weightFile is the YAML schema operators feed to `weight apply`.
type weightFile struct {
	Default     int `yaml:"default"`
	TimeWindows []struct {
		Start  string `yaml:"start"`
		End    string `yaml:"end"`
		Weight int    `yaml:"weight"`
	} `yaml:"time_windows"`
}

func newWeightApplyCmd(application *app.Application) *cobra.Command {
	var platform, target, file string
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Replace the weight schedule of one target from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read schedule: %w", err)
			}
			var wf weightFile
			if err := yaml.Unmarshal(raw, &wf); err != nil {
				return fmt.Errorf("parse schedule: %w", err)
			}

			draft := usecase.WeightDraft{Default: wf.Default}
			for _, win := range wf.TimeWindows {
				draft.TimeWindows = append(draft.TimeWindows, usecase.TimeWindowDraft{
					Start:  win.Start,
					End:    win.End,
					Weight: win.Weight,
				})
			}

			applied, err := application.Weights.Apply(cmd.Context(), platform, target, draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied default=%d with %d windows to %s/%s\n",
				applied.Default, len(applied.TimeWindows), platform, target)
			return nil
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "platform name")
	cmd.Flags().StringVar(&target, "target", "", "platform target identifier")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML schedule file")
	_ = cmd.MarkFlagRequired("platform")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
