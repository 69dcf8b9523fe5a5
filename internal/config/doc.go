// SPDX-License-Identifier: MPL-2.0

// Package config loads the browserforge tool configuration. Settings come
// from built-in defaults, an optional CUE config file validated against an
// embedded schema, and BROWSERFORGE_* environment variables, in increasing
// precedence. Tool configuration only affects how builds run; image inputs
// belong to the forgefile so cache keys never depend on local settings.
package config
