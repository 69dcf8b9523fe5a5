// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// Dependencies declares the language-dependency inputs for stage 3 of the
	// pipeline. The manifest is a read-only input owned by the repository.
	Dependencies struct {
		// Manifest is the path to the pip requirements file, relative to the
		// forgefile. Default: requirements.txt.
		Manifest string `json:"manifest"`
	}

	// Forgefile is a parsed and validated pipeline definition. It is the single
	// input to the provisioning pipeline: every stage receives only the parts
	// of the Forgefile it declares, never ambient state.
	Forgefile struct {
		// Runtime pins the base interpreter runtime (stage 1).
		Runtime Runtime `json:"runtime"`
		// Packages selects the system package set (stage 2).
		Packages SystemPackages `json:"packages"`
		// Dependencies names the language dependency manifest (stage 3).
		Dependencies Dependencies `json:"dependencies"`
		// Browser selects the browser install strategy (stage 4).
		Browser Browser `json:"browser"`
		// Entrypoint is the fixed startup command (stage 5).
		Entrypoint Entrypoint `json:"entrypoint"`
		// Env is extra environment baked into the image before the entrypoint
		// stage (e.g., CONFIG_PATH for the driving process).
		Env map[string]string `json:"env,omitempty"`
		// Source is the application source directory, copied last. Default: ".".
		Source string `json:"source"`
		// Stages optionally overrides the stage order. The pipeline validates
		// it against the stage dependency graph and rejects invalid orders.
		Stages []string `json:"stages,omitempty"`

		// FilePath is where this forgefile was loaded from. Set by Parse.
		FilePath string `json:"-"`
	}

	// ValidationErrors aggregates all validation failures of a single forgefile
	// so users see every problem at once instead of fixing them one by one.
	ValidationErrors []error
)

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	if len(v) == 1 {
		return v[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:", len(v))
	for _, err := range v {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap exposes the aggregated errors to errors.Is/As.
func (v ValidationErrors) Unwrap() []error { return v }

// Validate checks every field and the cross-field invariants. All failures
// are collected into ValidationErrors.
func (f *Forgefile) Validate() error {
	var errs ValidationErrors

	if err := f.Runtime.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := f.Packages.Validate(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(f.Dependencies.Manifest) == "" {
		errs = append(errs, errors.New("dependencies.manifest must not be empty"))
	}
	if err := f.Browser.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := f.Entrypoint.Validate(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(f.Source) == "" {
		errs = append(errs, errors.New("source must not be empty"))
	}

	// Strategy conflicts are only meaningful once both sides parsed cleanly.
	if f.Packages.Variant.Validate() == nil && f.Browser.Strategy.Validate() == nil {
		if err := f.Browser.CheckConflict(f.Packages.Variant); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
