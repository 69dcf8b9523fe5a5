// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"browserforge/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage browserforge configuration",
	Long: `Manage browserforge configuration.

Configuration is stored in:
  - Linux: ~/.config/browserforge/config.cue
  - macOS: ~/Library/Application Support/browserforge/config.cue
  - Windows: %APPDATA%\browserforge\config.cue

Every setting can be overridden with a BROWSERFORGE_* environment
variable, e.g. BROWSERFORGE_CONTAINER_ENGINE=podman.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, TitleStyle.Render("Configuration"))
			fmt.Fprintf(out, "  container_engine: %s\n", cfg.ContainerEngine)
			fmt.Fprintf(out, "  cache_dir:        %s\n", cfg.ResolveCacheDir())
			fmt.Fprintf(out, "  tag_prefix:       %s\n", cfg.TagPrefix)
			fmt.Fprintf(out, "  default_profile:  %s\n", cfg.DefaultProfile)
			fmt.Fprintf(out, "  records_file:     %s\n", cfg.ResolveRecordsFile())
			fmt.Fprintf(out, "  ui.verbose:       %v\n", cfg.UI.Verbose)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Config file: ")+path)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
			return nil
		},
	})
}
