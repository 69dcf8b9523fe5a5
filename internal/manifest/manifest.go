// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrInvalidRequirement is the sentinel error wrapped by InvalidRequirementError.
	ErrInvalidRequirement = errors.New("invalid requirement")
	// ErrDuplicateRequirement is the sentinel error wrapped by DuplicateRequirementError.
	ErrDuplicateRequirement = errors.New("duplicate requirement")

	// constraintOperators in match order: longer operators first so "==" is
	// not split as "=" + "=".
	constraintOperators = []string{"===", "==", ">=", "<=", "~=", "!=", ">", "<"}
)

type (
	// Requirement is one (name, version-constraint) pair from the manifest.
	Requirement struct {
		// Name is the package name as declared.
		Name string
		// Constraint is the raw version constraint including the operator
		// (e.g., "==1.40.0"). Empty means unconstrained.
		Constraint string
	}

	// DependencyManifest is the ordered, versioned list of language-level
	// dependencies. It is a read-only input to the language-deps stage; the
	// install cache key derives solely from ContentHash.
	DependencyManifest struct {
		// Path is where the manifest was loaded from.
		Path string
		// Requirements preserves the declaration order of the file.
		Requirements []Requirement

		raw []byte
	}

	// InvalidRequirementError is returned for a manifest line that cannot be
	// parsed as a requirement.
	InvalidRequirementError struct {
		Line    string
		LineNum int
		Reason  string
	}

	// DuplicateRequirementError is returned when a package is declared twice.
	DuplicateRequirementError struct {
		Name string
	}
)

// Error implements the error interface.
func (e *InvalidRequirementError) Error() string {
	return fmt.Sprintf("invalid requirement on line %d: %q: %s", e.LineNum, e.Line, e.Reason)
}

// Unwrap returns ErrInvalidRequirement so callers can use errors.Is for programmatic detection.
func (e *InvalidRequirementError) Unwrap() error { return ErrInvalidRequirement }

// Error implements the error interface.
func (e *DuplicateRequirementError) Error() string {
	return fmt.Sprintf("duplicate requirement %q: each dependency must be declared once", e.Name)
}

// Unwrap returns ErrDuplicateRequirement so callers can use errors.Is for programmatic detection.
func (e *DuplicateRequirementError) Unwrap() error { return ErrDuplicateRequirement }

// String returns the requirement in its declared "name<constraint>" form.
func (r Requirement) String() string {
	return r.Name + r.Constraint
}

// LoadManifest reads and parses a dependency manifest from the given path.
func LoadManifest(path string) (*DependencyManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dependency manifest at %s: %w", path, err)
	}
	return ParseManifestBytes(data, path)
}

// ParseManifestBytes parses manifest content in pip requirements format:
// one requirement per line, '#' comments, blank lines ignored.
func ParseManifestBytes(data []byte, path string) (*DependencyManifest, error) {
	m := &DependencyManifest{
		Path: path,
		raw:  data,
	}

	seen := make(map[string]bool)
	for i, rawLine := range strings.Split(string(data), "\n") {
		line := rawLine
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "-") {
			// Option lines (-r, -e, --index-url) pull in state outside the
			// manifest, which breaks the content-hash cache-key contract.
			return nil, &InvalidRequirementError{
				Line:    line,
				LineNum: i + 1,
				Reason:  "option lines are not supported; declare dependencies directly",
			}
		}

		req, err := parseRequirement(line, i+1)
		if err != nil {
			return nil, err
		}

		key := strings.ToLower(req.Name)
		if seen[key] {
			return nil, &DuplicateRequirementError{Name: req.Name}
		}
		seen[key] = true

		m.Requirements = append(m.Requirements, req)
	}

	return m, nil
}

// ContentHash returns the sha256 hex digest of the manifest's raw content.
// This is the cache key input for the language-deps stage: it changes exactly
// when the manifest changes, never when unrelated source does.
func (m *DependencyManifest) ContentHash() string {
	sum := sha256.Sum256(m.raw)
	return hex.EncodeToString(sum[:])
}

// Names returns the declared package names in order.
func (m *DependencyManifest) Names() []string {
	names := make([]string, len(m.Requirements))
	for i, r := range m.Requirements {
		names[i] = r.Name
	}
	return names
}

// parseRequirement splits a requirement line into name and constraint.
func parseRequirement(line string, lineNum int) (Requirement, error) {
	for _, op := range constraintOperators {
		if idx := strings.Index(line, op); idx >= 0 {
			name := strings.TrimSpace(line[:idx])
			constraint := strings.TrimSpace(line[idx:])
			if name == "" {
				return Requirement{}, &InvalidRequirementError{
					Line: line, LineNum: lineNum, Reason: "missing package name",
				}
			}
			return Requirement{Name: name, Constraint: constraint}, nil
		}
	}

	if strings.ContainsAny(line, " \t") {
		return Requirement{}, &InvalidRequirementError{
			Line: line, LineNum: lineNum, Reason: "unexpected whitespace in requirement",
		}
	}

	return Requirement{Name: line}, nil
}
