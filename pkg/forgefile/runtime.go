// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidRuntimeVersion is the sentinel error wrapped by InvalidRuntimeVersionError.
	ErrInvalidRuntimeVersion = errors.New("invalid runtime version")

	// runtimeVersionPattern matches pinned interpreter versions like "3.11",
	// "3.11.9", or "3.12-slim". A bare major version is rejected: an unpinned
	// minor drifts under the image publisher's control and breaks cache-key
	// reproducibility.
	runtimeVersionPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+(\.[0-9]+)?(-[a-z]+)?$`)
)

type (
	// RuntimeVersion is a pinned interpreter version tag (e.g., "3.11").
	RuntimeVersion string

	// InvalidRuntimeVersionError is returned when a RuntimeVersion is not a
	// pinned major.minor[.patch][-suffix] tag.
	InvalidRuntimeVersionError struct {
		Value RuntimeVersion
	}

	// Runtime declares the base interpreter runtime for stage 1 of the pipeline.
	Runtime struct {
		// Version is the pinned interpreter version (required).
		Version RuntimeVersion `json:"version"`
		// Unbuffered disables interpreter output buffering so a surrounding
		// log collector can stream output in real time. Default: true.
		Unbuffered bool `json:"unbuffered"`
	}
)

// Error implements the error interface.
func (e *InvalidRuntimeVersionError) Error() string {
	return fmt.Sprintf("invalid runtime version %q: must be a pinned major.minor[.patch][-suffix] tag", e.Value)
}

// Unwrap returns ErrInvalidRuntimeVersion so callers can use errors.Is for programmatic detection.
func (e *InvalidRuntimeVersionError) Unwrap() error { return ErrInvalidRuntimeVersion }

// String returns the string representation of the RuntimeVersion.
func (v RuntimeVersion) String() string { return string(v) }

// Validate returns an error if the RuntimeVersion is not a pinned version tag.
func (v RuntimeVersion) Validate() error {
	if !runtimeVersionPattern.MatchString(string(v)) {
		return &InvalidRuntimeVersionError{Value: v}
	}
	return nil
}

// BaseImage returns the container base image reference for this runtime
// (e.g., "python:3.11-slim"). Slim variants keep the system package stage in
// control of which desktop libraries are present.
func (r Runtime) BaseImage() string {
	return fmt.Sprintf("python:%s-slim", r.Version)
}

// Validate returns an error if any field of the Runtime is invalid.
func (r Runtime) Validate() error {
	return r.Version.Validate()
}
