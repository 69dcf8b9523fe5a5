// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	planFile    string
	planProfile string
	planEngine  string

	planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Show stage cache keys and which stages would rebuild",
		Long: `Show stage cache keys and which stages would rebuild.

Resolves the forgefile against the working tree, computes every stage's cache
key, and checks the engine for existing stage images. Nothing is built.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd)
		},
	}
)

func init() {
	planCmd.Flags().StringVarP(&planFile, "file", "f", "", "path to the forgefile")
	planCmd.Flags().StringVar(&planProfile, "profile", "", "built-in profile when no forgefile exists (default, fonts, railway)")
	planCmd.Flags().StringVar(&planEngine, "engine", "", "container engine (auto, docker, podman)")
}

func runPlan(cmd *cobra.Command) error {
	spec, err := loadSpec(planFile, planProfile)
	if err != nil {
		return err
	}

	engine, err := resolveEngine(planEngine)
	if err != nil {
		return err
	}

	result, err := newProvisioner(engine, false).Plan(cmd.Context(), spec)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render("Pipeline plan"))
	for _, stage := range result.Stages {
		action := WarningStyle.Render("build ")
		if stage.Cached {
			action = SuccessStyle.Render("cached")
		}
		fmt.Fprintf(out, "  %s  %-16s %s  %s\n",
			action, stage.Stage, StageStyle.Render(stage.Tag), MutedStyle.Render(stage.Key[:12]))
	}
	return nil
}
