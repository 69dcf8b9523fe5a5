// SPDX-License-Identifier: MPL-2.0

// Package pipeline implements the staged image provisioning pipeline: base
// runtime, system packages, language dependencies, browser runtime, source
// copy, and entrypoint bind. Each stage is an ordered, content-addressed
// cache boundary; a stage's key derives from the previous stage's key plus
// the stage's own inputs, so changing an input rebuilds that stage and
// everything after it, and nothing before it.
//
// The provisioner drives one container engine build per stage, each FROM the
// previous stage's keyed image. That makes cache hits, failure attribution,
// and exit-code preservation per-stage properties rather than best-effort
// parsing of a monolithic build log.
package pipeline
