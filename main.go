// SPDX-License-Identifier: MPL-2.0

// browserforge builds container images for headless-browser Python
// workloads through a staged, content-addressed provisioning pipeline.
package main

import (
	cmd "browserforge/cmd/browserforge"
)

func main() {
	cmd.Execute()
}
