// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"browserforge/internal/pipeline"
)

var (
	buildFile    string
	buildProfile string
	buildEngine  string
	buildTag     string
	buildForce   bool
	buildEnv     []string

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Run the provisioning pipeline and tag the finished image",
		Long: `Run the provisioning pipeline and tag the finished image.

Each stage builds on the previous stage's cached image. Stages whose inputs
have not changed are skipped; --force-rebuild builds every stage from
scratch. When a stage fails, the build stops there and the process exits
with the failing tool's exit code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd)
		},
	}
)

func init() {
	buildCmd.Flags().StringVarP(&buildFile, "file", "f", "", "path to the forgefile")
	buildCmd.Flags().StringVar(&buildProfile, "profile", "", "built-in profile when no forgefile exists (default, fonts, railway)")
	buildCmd.Flags().StringVar(&buildEngine, "engine", "", "container engine (auto, docker, podman)")
	buildCmd.Flags().StringVarP(&buildTag, "tag", "t", "", "tag for the finished image (required)")
	buildCmd.Flags().BoolVar(&buildForce, "force-rebuild", false, "rebuild every stage, ignoring cached stage images")
	buildCmd.Flags().StringArrayVar(&buildEnv, "env", nil, "extra KEY=VALUE environment baked into the image (repeatable)")
	_ = buildCmd.MarkFlagRequired("tag")
}

// parseEnvPairs parses repeated KEY=VALUE flag values into a map.
func parseEnvPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env value %q (expected KEY=VALUE)", pair)
		}
		env[key] = value
	}
	return env, nil
}

func runBuild(cmd *cobra.Command) error {
	spec, err := loadSpec(buildFile, buildProfile)
	if err != nil {
		return err
	}

	extraEnv, err := parseEnvPairs(buildEnv)
	if err != nil {
		return err
	}
	if len(extraEnv) > 0 {
		if spec.Env == nil {
			spec.Env = make(map[string]string, len(extraEnv))
		}
		// Flag values win over forgefile entries with the same key.
		for k, v := range extraEnv {
			spec.Env[k] = v
		}
	}

	engine, err := resolveEngine(buildEngine)
	if err != nil {
		return err
	}
	slog.Debug("container engine selected", "engine", engine.Name())

	provisioner := newProvisioner(engine, buildForce)
	result, err := provisioner.Provision(cmd.Context(), spec, buildTag)
	if err != nil {
		printStageSummary(result)

		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Build failed: ")+formatErrorForDisplay(err, verbose))
			code := stageErr.ExitCode
			if code <= 0 {
				code = 1
			}
			return &ExitError{Code: code, Err: err}
		}
		return err
	}

	printStageSummary(result)
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Built ")+StageStyle.Render(result.ImageTag))

	store := pipeline.NewRecordStore(cfg.ResolveRecordsFile())
	if err := store.Append(pipeline.NewBuildRecord(result, engine.Name())); err != nil {
		// The image is built; a record write failure is not fatal.
		slog.Warn("failed to record build", "error", err)
	}
	return nil
}

func printStageSummary(result *pipeline.Result) {
	if result == nil {
		return
	}
	for _, stage := range result.Stages {
		status := SuccessStyle.Render("built ")
		if stage.Cached {
			status = MutedStyle.Render("cached")
		}
		fmt.Fprintf(os.Stderr, "  %s  %-16s %s\n", status, stage.Stage, MutedStyle.Render(stage.Tag))
	}
}
