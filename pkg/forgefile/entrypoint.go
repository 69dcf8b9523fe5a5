// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// ErrInvalidEntrypoint is the sentinel error wrapped by InvalidEntrypointError.
var ErrInvalidEntrypoint = errors.New("invalid entrypoint command")

type (
	// Entrypoint is the fixed startup command baked into the image. Exactly one
	// entrypoint exists per image; it takes no arguments beyond what is baked
	// in, so changing it requires rebuilding.
	Entrypoint struct {
		// Command is the launch command (e.g., "python app.py").
		Command string `json:"command"`
	}

	// InvalidEntrypointError is returned when an entrypoint command is empty,
	// fails to parse as shell syntax, or is not a single plain command.
	InvalidEntrypointError struct {
		Command string
		Reason  string
	}
)

// Error implements the error interface.
func (e *InvalidEntrypointError) Error() string {
	return fmt.Sprintf("invalid entrypoint command %q: %s", e.Command, e.Reason)
}

// Unwrap returns ErrInvalidEntrypoint so callers can use errors.Is for programmatic detection.
func (e *InvalidEntrypointError) Unwrap() error { return ErrInvalidEntrypoint }

// Argv parses the entrypoint command into exec-form argv. The command must be
// a single plain invocation: pipelines, redirections, expansions, and control
// flow are rejected, since the image contract is one no-argument launch
// command with no shell in between.
func (e Entrypoint) Argv() ([]string, error) {
	trimmed := strings.TrimSpace(e.Command)
	if trimmed == "" {
		return nil, &InvalidEntrypointError{Command: e.Command, Reason: "command is empty"}
	}

	parser := syntax.NewParser()
	file, err := parser.Parse(strings.NewReader(trimmed), "entrypoint")
	if err != nil {
		return nil, &InvalidEntrypointError{Command: e.Command, Reason: err.Error()}
	}

	if len(file.Stmts) != 1 {
		return nil, &InvalidEntrypointError{Command: e.Command, Reason: "must be exactly one command"}
	}

	stmt := file.Stmts[0]
	if len(stmt.Redirs) > 0 || stmt.Background || stmt.Negated {
		return nil, &InvalidEntrypointError{Command: e.Command, Reason: "redirections and job control are not supported"}
	}

	call, ok := stmt.Cmd.(*syntax.CallExpr)
	if !ok {
		return nil, &InvalidEntrypointError{Command: e.Command, Reason: "must be a plain command, not shell control flow"}
	}
	if len(call.Assigns) > 0 {
		return nil, &InvalidEntrypointError{Command: e.Command, Reason: "inline assignments are not supported; use env instead"}
	}
	if len(call.Args) == 0 {
		return nil, &InvalidEntrypointError{Command: e.Command, Reason: "command is empty"}
	}

	argv := make([]string, 0, len(call.Args))
	for _, word := range call.Args {
		lit, ok := literalWord(word)
		if !ok {
			return nil, &InvalidEntrypointError{Command: e.Command, Reason: "expansions and substitutions are not supported"}
		}
		argv = append(argv, lit)
	}

	return argv, nil
}

// Validate returns an error if the entrypoint command cannot be bound.
func (e Entrypoint) Validate() error {
	_, err := e.Argv()
	return err
}

// literalWord flattens a shell word into its literal string value. Returns
// false for any word containing expansions, substitutions, or globs.
func literalWord(word *syntax.Word) (string, bool) {
	var sb strings.Builder
	for _, part := range word.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(p.Value)
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, inner := range p.Parts {
				lit, ok := inner.(*syntax.Lit)
				if !ok {
					return "", false
				}
				sb.WriteString(lit.Value)
			}
		default:
			return "", false
		}
	}
	return sb.String(), true
}
