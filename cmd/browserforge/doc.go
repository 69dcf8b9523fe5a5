// SPDX-License-Identifier: MPL-2.0

// Package cmd wires the browserforge CLI: forgefile management (init, validate,
// render), pipeline execution (plan, build), and bookkeeping (images,
// config). Commands return errors instead of exiting; a failing build stage
// surfaces as an ExitError carrying the underlying tool's exit code.
package cmd
