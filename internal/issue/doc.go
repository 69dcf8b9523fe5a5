// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error types for the CLI layer.
//
// ActionableError carries the failed operation, the resource involved, and
// concrete suggestions for fixing the problem. The CLI renders the suggestions
// under the error message; verbose mode adds the full cause chain.
package issue
