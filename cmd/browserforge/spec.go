// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"browserforge/internal/config"
	"browserforge/internal/container"
	"browserforge/internal/issue"
	"browserforge/internal/pipeline"
	"browserforge/pkg/forgefile"
)

// DefaultSpecFile is the forgefile name looked up in the working directory.
const DefaultSpecFile = "Forgefile.cue"

// loadSpec resolves the build forgefile for a command invocation. An explicit
// --file wins; otherwise the working directory's Forgefile.cue is used; when
// neither exists, the selected profile preset applies so a bare project still
// builds.
func loadSpec(file string, profile string) (*forgefile.Forgefile, error) {
	if file != "" {
		return parseSpecFile(file)
	}

	if _, err := os.Stat(DefaultSpecFile); err == nil {
		return parseSpecFile(DefaultSpecFile)
	}

	name := forgefile.Profile(profile)
	if profile == "" {
		name = forgefile.Profile(cfg.DefaultProfile)
	}
	spec, err := name.Forgefile()
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	spec.FilePath = filepath.Join(cwd, DefaultSpecFile)
	return spec, nil
}

func parseSpecFile(path string) (*forgefile.Forgefile, error) {
	spec, err := forgefile.Parse(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load forgefile").
			WithResource(path).
			WithSuggestion("Check that the file contains valid CUE syntax").
			WithSuggestion("Run 'browserforge validate' for the full list of problems").
			Wrap(err).
			BuildError()
	}
	return spec, nil
}

// resolveEngine picks the container engine from the --engine flag, falling
// back to the configured engine, falling back to auto-detection.
func resolveEngine(flagValue string) (container.Engine, error) {
	selected := flagValue
	if selected == "" {
		selected = cfg.ContainerEngine
	}
	if selected == "" || selected == config.EngineAuto {
		return container.AutoDetectEngine()
	}
	return container.NewEngine(container.EngineType(selected))
}

// newProvisioner builds a stage provisioner wired to the tool configuration.
func newProvisioner(engine container.Engine, force bool) *pipeline.StageProvisioner {
	return pipeline.NewStageProvisioner(engine,
		pipeline.WithWorkDir(filepath.Join(cfg.ResolveCacheDir(), "build")),
		pipeline.WithTagPrefix(cfg.TagPrefix),
		pipeline.WithForceRebuild(force),
	)
}
