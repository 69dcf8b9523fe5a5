// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrSystemPackage indicates a failure while installing OS-level packages.
	ErrSystemPackage = errors.New("system package installation failed")
	// ErrDependencyResolution indicates a failure while resolving or installing
	// the dependency manifest.
	ErrDependencyResolution = errors.New("dependency resolution failed")
	// ErrBrowserInstall indicates a failure while installing the browser runtime.
	ErrBrowserInstall = errors.New("browser installation failed")
	// ErrEntrypointBind indicates a failure while binding the startup command.
	ErrEntrypointBind = errors.New("entrypoint bind failed")
	// ErrStageFailed is the generic sentinel for any stage failure.
	ErrStageFailed = errors.New("pipeline stage failed")
)

type (
	// StageError attributes a build failure to the pipeline stage that produced
	// it, preserving the underlying tool's exit code. Matching with errors.Is
	// against one of the category sentinels (ErrSystemPackage,
	// ErrDependencyResolution, ErrBrowserInstall, ErrEntrypointBind) identifies
	// the failure class without string inspection.
	StageError struct {
		// Stage is the pipeline stage that failed.
		Stage Stage
		// ExitCode is the exit code of the underlying tool invocation, or -1
		// when no process-level code is available.
		ExitCode int
		// Cause is the underlying error.
		Cause error
	}
)

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("stage %q failed (exit code %d): %v", e.Stage, e.ExitCode, e.Cause)
	}
	return fmt.Sprintf("stage %q failed: %v", e.Stage, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error { return e.Cause }

// Is maps the failing stage onto its error category sentinel, and always
// matches ErrStageFailed.
func (e *StageError) Is(target error) bool {
	if target == ErrStageFailed {
		return true
	}
	switch e.Stage {
	case StageSystemDeps:
		return target == ErrSystemPackage
	case StageLanguageDeps:
		return target == ErrDependencyResolution
	case StageBrowserRuntime:
		return target == ErrBrowserInstall
	case StageEntrypoint:
		return target == ErrEntrypointBind
	case StageBaseRuntime, StageCopySource:
		return false
	default:
		return false
	}
}

// newStageError wraps cause in a StageError for the given stage, carrying over
// the process exit code when the cause exposes one.
func newStageError(stage Stage, exitCode int, cause error) *StageError {
	return &StageError{Stage: stage, ExitCode: exitCode, Cause: cause}
}
