// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for browserforge.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"browserforge/internal/config"
	"browserforge/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// cfg is the loaded tool configuration, available to all subcommands.
	cfg = config.DefaultConfig()

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "browserforge",
		Short: "Staged container image builds for headless browser runtimes",
		Long: TitleStyle.Render("browserforge") + SubtitleStyle.Render(" - staged container image builds for headless browser runtimes") + `

browserforge builds container images for Python automation workloads that
drive a headless browser. The build runs as an ordered pipeline of cached
stages: base runtime, system packages, language dependencies, browser
runtime, source copy, and entrypoint bind. Each stage is content-addressed,
so editing application source never re-installs dependencies, and a failure
is attributed to the exact stage that caused it.

Image inputs are declared in a 'Forgefile.cue' forgefile. Built-in profiles
cover common deployment targets when you don't have one yet.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'browserforge init' to create a Forgefile.cue
  2. Adjust the entrypoint and dependency manifest
  3. Build with: browserforge build -t myapp:latest

` + SubtitleStyle.Render("Examples:") + `
  browserforge init --profile railway   Create a forgefile for OS-managed Chromium
  browserforge validate                 Check the forgefile without building
  browserforge plan                     Show stage keys and cache state
  browserforge render                   Print the equivalent Dockerfile
  browserforge build -t myapp:latest    Run the pipeline
  browserforge images                   List recorded builds`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/browserforge/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig loads the tool configuration and wires the global logger.
func initRootConfig() {
	loaded, _, err := config.Load(config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		// Surface config loading errors but continue with defaults.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	} else {
		cfg = loaded
	}

	// Apply verbose from config if not set via flag
	if !verbose {
		verbose = cfg.UI.Verbose
	}

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: false,
	})
	if verbose {
		logger.SetLevel(charmlog.DebugLevel)
	} else {
		logger.SetLevel(charmlog.WarnLevel)
	}
	slog.SetDefault(slog.New(logger))
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
