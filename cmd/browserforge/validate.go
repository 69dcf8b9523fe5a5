// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"browserforge/pkg/forgefile"
)

var (
	validateFile string

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validate a forgefile without building anything",
		Long: `Validate a forgefile without building anything.

All problems are reported at once: schema violations, invalid field
values, and cross-field conflicts such as selecting both the library and
the OS browser install path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd)
		},
	}
)

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "path to the forgefile")
}

func runValidate(cmd *cobra.Command) error {
	path := validateFile
	if path == "" {
		path = DefaultSpecFile
	}

	spec, err := forgefile.Parse(path)
	if err != nil {
		printValidationFailure(cmd, path, err)
		return &ExitError{Code: 1, Err: err}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, SuccessStyle.Render("Valid: ")+path)
	fmt.Fprintf(out, "  runtime:  %s\n", StageStyle.Render(spec.Runtime.BaseImage()))
	fmt.Fprintf(out, "  packages: %s\n", spec.Packages.Variant)
	fmt.Fprintf(out, "  browser:  %s (%s)\n", spec.Browser.Engine, spec.Browser.Strategy)
	return nil
}

func printValidationFailure(cmd *cobra.Command, path string, err error) {
	out := cmd.ErrOrStderr()
	fmt.Fprintln(out, ErrorStyle.Render("Invalid: ")+path)

	var verrs forgefile.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			fmt.Fprintf(out, "  - %s\n", verr)
		}
		return
	}
	fmt.Fprintf(out, "  %s\n", formatErrorForDisplay(err, verbose))
}
