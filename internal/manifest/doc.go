// SPDX-License-Identifier: MPL-2.0

// Package manifest loads the declarative inputs of the provisioning pipeline:
// the language dependency manifest (pip requirements format) and the system
// package set. Both are plain text owned by the repository and consumed
// verbatim; their content hashes are the sole cache-key inputs for their
// stages, so unrelated source edits never invalidate an install layer.
package manifest
