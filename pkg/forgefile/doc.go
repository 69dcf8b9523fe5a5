// SPDX-License-Identifier: MPL-2.0

// Package forgefile defines the schema and parsing for forgefile CUE files.
//
// A forgefile declares everything the provisioning pipeline needs to produce a
// runnable headless-browser image: the pinned interpreter runtime, the system
// package set, the language dependency manifest, the browser install strategy,
// and the entrypoint command. Parsing unifies the user file with an embedded
// CUE schema and then applies the cross-field validation the schema cannot
// express (strategy conflicts, entrypoint shape, stage ordering inputs).
package forgefile
