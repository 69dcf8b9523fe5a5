// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"browserforge/internal/pipeline"
)

var (
	renderFile    string
	renderProfile string

	renderCmd = &cobra.Command{
		Use:   "render",
		Short: "Print the forgefile as a single self-contained Dockerfile",
		Long: `Print the forgefile as a single self-contained Dockerfile.

The output is the monolithic equivalent of the staged pipeline, suitable
for CI systems that build from a checked-in Dockerfile. It trades the
per-stage cache boundaries for portability.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd)
		},
	}
)

func init() {
	renderCmd.Flags().StringVarP(&renderFile, "file", "f", "", "path to the forgefile")
	renderCmd.Flags().StringVar(&renderProfile, "profile", "", "built-in profile when no forgefile exists (default, fonts, railway)")
}

func runRender(cmd *cobra.Command) error {
	spec, err := loadSpec(renderFile, renderProfile)
	if err != nil {
		return err
	}

	in, err := pipeline.Resolve(spec)
	if err != nil {
		return err
	}

	dockerfile, err := pipeline.RenderFull(in.Order, in.StageInputs)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), dockerfile)
	return nil
}
