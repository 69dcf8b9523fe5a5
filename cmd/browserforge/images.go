// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"browserforge/internal/pipeline"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "List recorded builds",
	Long: `List recorded builds.

Each successful build is recorded with its final tag, the engine that
built it, and the per-stage cache keys.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runImages(cmd)
	},
}

func runImages(cmd *cobra.Command) error {
	store := pipeline.NewRecordStore(cfg.ResolveRecordsFile())
	records, err := store.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, MutedStyle.Render("No recorded builds."))
		return nil
	}

	// Newest first.
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		fmt.Fprintf(out, "%s  %s  %s\n",
			StageStyle.Render(rec.Tag),
			rec.Engine,
			MutedStyle.Render(rec.CreatedAt.Local().Format("2006-01-02 15:04:05")))
		if verbose {
			for _, stage := range rec.Stages {
				state := "built"
				if stage.Cached {
					state = "cached"
				}
				fmt.Fprintf(out, "  %-16s %-7s %s\n", stage.Name, state, MutedStyle.Render(stage.Tag))
			}
		}
	}
	return nil
}
