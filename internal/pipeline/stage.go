// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"errors"
	"fmt"

	"browserforge/internal/dag"
)

const (
	// StageBaseRuntime pins the interpreter runtime and disables output buffering.
	StageBaseRuntime Stage = "base-runtime"
	// StageSystemDeps installs the OS-level shared libraries for the browser engine.
	StageSystemDeps Stage = "system-deps"
	// StageLanguageDeps installs the dependency manifest's declared packages.
	StageLanguageDeps Stage = "language-deps"
	// StageBrowserRuntime installs the headless browser binary per the selected strategy.
	StageBrowserRuntime Stage = "browser-runtime"
	// StageCopySource materializes the application source tree into the image.
	StageCopySource Stage = "copy-source"
	// StageEntrypoint binds the fixed startup command. Always last.
	StageEntrypoint Stage = "entrypoint"
)

var (
	// ErrUnknownStage is the sentinel error wrapped by UnknownStageError.
	ErrUnknownStage = errors.New("unknown pipeline stage")
	// ErrInvalidStageOrder is returned when a declared stage order violates
	// the pipeline's dependency graph.
	ErrInvalidStageOrder = errors.New("invalid stage order")

	// canonicalOrder is the default stage sequence.
	canonicalOrder = []Stage{
		StageBaseRuntime,
		StageSystemDeps,
		StageLanguageDeps,
		StageBrowserRuntime,
		StageCopySource,
		StageEntrypoint,
	}
)

type (
	// Stage is one ordered, cache-boundary unit of the provisioning pipeline.
	// Each stage's cached result is keyed on the cumulative state of all prior
	// stages plus its own declared inputs.
	Stage string

	// UnknownStageError is returned when a declared stage name is not one of
	// the defined stages.
	UnknownStageError struct {
		Value Stage
	}
)

// Error implements the error interface.
func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown pipeline stage %q", e.Value)
}

// Unwrap returns ErrUnknownStage so callers can use errors.Is for programmatic detection.
func (e *UnknownStageError) Unwrap() error { return ErrUnknownStage }

// String returns the string representation of the Stage.
func (s Stage) String() string { return string(s) }

// Validate returns an error if the Stage is not one of the defined stages.
func (s Stage) Validate() error {
	switch s {
	case StageBaseRuntime, StageSystemDeps, StageLanguageDeps,
		StageBrowserRuntime, StageCopySource, StageEntrypoint:
		return nil
	default:
		return &UnknownStageError{Value: s}
	}
}

// CanonicalOrder returns the default stage sequence.
func CanonicalOrder() []Stage {
	order := make([]Stage, len(canonicalOrder))
	copy(order, canonicalOrder)
	return order
}

// stageGraph declares the "must run before" edges of the pipeline. The edges
// encode the real invariants, not mere convention: source must never be
// copied before the language-deps install (it would tie the install cache key
// to unrelated source edits), and nothing may follow the entrypoint bind.
func stageGraph() *dag.Graph {
	g := dag.New()
	g.AddEdge(StageBaseRuntime.String(), StageSystemDeps.String())
	g.AddEdge(StageSystemDeps.String(), StageLanguageDeps.String())
	g.AddEdge(StageLanguageDeps.String(), StageBrowserRuntime.String())
	g.AddEdge(StageLanguageDeps.String(), StageCopySource.String())
	g.AddEdge(StageBrowserRuntime.String(), StageCopySource.String())
	g.AddEdge(StageCopySource.String(), StageEntrypoint.String())
	return g
}

// ResolveOrder validates a declared stage order and returns it as stages.
// An empty declaration yields the canonical order. A declared order must name
// every stage exactly once and respect the stage dependency graph.
func ResolveOrder(declared []string) ([]Stage, error) {
	if len(declared) == 0 {
		return CanonicalOrder(), nil
	}

	seen := make(map[Stage]bool, len(declared))
	order := make([]Stage, 0, len(declared))
	for _, name := range declared {
		stage := Stage(name)
		if err := stage.Validate(); err != nil {
			return nil, err
		}
		if seen[stage] {
			return nil, fmt.Errorf("%w: stage %q declared twice", ErrInvalidStageOrder, stage)
		}
		seen[stage] = true
		order = append(order, stage)
	}

	if len(order) != len(canonicalOrder) {
		for _, stage := range canonicalOrder {
			if !seen[stage] {
				return nil, fmt.Errorf("%w: stage %q is missing", ErrInvalidStageOrder, stage)
			}
		}
	}

	names := make([]string, len(order))
	for i, stage := range order {
		names[i] = stage.String()
	}
	if err := stageGraph().ValidateOrder(names); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStageOrder, err)
	}

	return order, nil
}
