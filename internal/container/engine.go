// SPDX-License-Identifier: MPL-2.0

// Package container provides an abstraction layer for container runtimes (Docker/Podman).
package container

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const (
	// EngineTypeDocker selects the Docker CLI engine.
	EngineTypeDocker EngineType = "docker"
	// EngineTypePodman selects the Podman CLI engine.
	EngineTypePodman EngineType = "podman"
)

// ErrBuildFailed is the sentinel error wrapped by BuildError.
var ErrBuildFailed = errors.New("image build failed")

type (
	// EngineType identifies the container engine type.
	EngineType string

	// Engine defines the interface for container operations. The pipeline
	// drives image builds through it; implementations shell out to the
	// engine's CLI so the engine's own layer cache and download retry policy
	// apply unchanged.
	Engine interface {
		// Name returns the engine name (docker or podman).
		Name() string
		// Available checks if the engine is available on the system.
		Available() bool
		// Version returns the engine version.
		Version(ctx context.Context) (string, error)

		// Build builds an image from a Dockerfile. Failures are reported as
		// BuildError carrying the engine's exit status unchanged.
		Build(ctx context.Context, opts BuildOptions) error
		// Run runs the image's entrypoint in a disposable container.
		Run(ctx context.Context, opts RunOptions) (*RunResult, error)
		// ImageExists checks if an image exists locally.
		ImageExists(ctx context.Context, image string) (bool, error)
		// TagImage applies an additional tag to an existing image.
		TagImage(ctx context.Context, src, dst string) error
		// RemoveImage removes an image.
		RemoveImage(ctx context.Context, image string, force bool) error
	}

	// BuildOptions contains options for building an image.
	BuildOptions struct {
		// ContextDir is the build context directory.
		ContextDir string
		// Dockerfile is the path to the Dockerfile. Relative paths are
		// resolved against ContextDir; absolute paths are used as-is.
		Dockerfile string
		// Tag is the image tag.
		Tag string
		// BuildArgs are build-time variables.
		BuildArgs map[string]string
		// NoCache disables the engine's layer cache.
		NoCache bool
		// Stdout is where to write build output.
		Stdout io.Writer
		// Stderr is where to write build errors.
		Stderr io.Writer
	}

	// RunOptions contains options for running a container.
	RunOptions struct {
		// Image is the image to run.
		Image string
		// Env contains extra environment variables.
		Env map[string]string
		// Remove automatically removes the container after exit.
		Remove bool
		// Stdout is where to write standard output.
		Stdout io.Writer
		// Stderr is where to write standard error.
		Stderr io.Writer
	}

	// RunResult contains the result of running a container.
	RunResult struct {
		// ExitCode is the container process exit code.
		ExitCode int
		// Error contains any error that prevented the run itself.
		Error error
	}

	// BuildError is returned when an image build fails. ExitCode preserves the
	// engine's exit status so callers can propagate it unchanged.
	BuildError struct {
		Engine   string
		Tag      string
		ExitCode int
		Cause    error
	}

	// ErrEngineNotAvailable is returned when a container engine is not available.
	ErrEngineNotAvailable struct {
		Engine string
		Reason string
	}
)

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("%s build of %q failed with exit code %d: %v", e.Engine, e.Tag, e.ExitCode, e.Cause)
}

// Unwrap returns ErrBuildFailed so callers can use errors.Is for programmatic detection.
func (e *BuildError) Unwrap() error { return ErrBuildFailed }

func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// NewEngine creates a container engine based on preference, falling back to
// the other engine when the preferred one is not available.
func NewEngine(preferredType EngineType) (Engine, error) {
	switch preferredType {
	case EngineTypePodman:
		engine := NewPodmanEngine()
		if engine.Available() {
			return engine, nil
		}
		dockerEngine := NewDockerEngine()
		if dockerEngine.Available() {
			return dockerEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "podman",
			Reason: "podman is not installed or not accessible, and docker fallback is also not available",
		}

	case EngineTypeDocker:
		engine := NewDockerEngine()
		if engine.Available() {
			return engine, nil
		}
		podmanEngine := NewPodmanEngine()
		if podmanEngine.Available() {
			return podmanEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "docker",
			Reason: "docker is not installed or not accessible, and podman fallback is also not available",
		}

	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferredType)
	}
}

// AutoDetectEngine tries to find an available container engine.
// Docker is tried first since it is the common case on CI hosts.
func AutoDetectEngine() (Engine, error) {
	docker := NewDockerEngine()
	if docker.Available() {
		return docker, nil
	}

	podman := NewPodmanEngine()
	if podman.Available() {
		return podman, nil
	}

	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "no container engine (docker or podman) is available on this system",
	}
}
