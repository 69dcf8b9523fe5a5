// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"browserforge/pkg/forgefile"
)

var (
	initProfile string
	initForce   bool

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a starter Forgefile.cue in the current directory",
		Long: `Create a starter Forgefile.cue in the current directory.

The forgefile is seeded from a built-in profile:

  default   full desktop-library set, library-managed browser install
  fonts     font/locale-hardened set, library install resolving its own deps
  railway   browser from the OS package manager, library pointed at it`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd)
		},
	}
)

func init() {
	initCmd.Flags().StringVar(&initProfile, "profile", "", "profile preset to seed from (default, fonts, railway)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing Forgefile.cue")
}

func runInit(cmd *cobra.Command) error {
	if !initForce {
		if _, err := os.Stat(DefaultSpecFile); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", DefaultSpecFile)
		}
	}

	name := forgefile.Profile(initProfile)
	if initProfile == "" {
		name = forgefile.Profile(cfg.DefaultProfile)
	}
	spec, err := name.Forgefile()
	if err != nil {
		return err
	}

	if err := os.WriteFile(DefaultSpecFile, []byte(forgefile.GenerateCUE(spec)), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", DefaultSpecFile, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, SuccessStyle.Render("Created ")+DefaultSpecFile+MutedStyle.Render(" (profile: "+name.String()+")"))
	fmt.Fprintln(out, MutedStyle.Render("Adjust the entrypoint and dependency manifest, then run 'browserforge build -t <tag>'."))
	return nil
}
