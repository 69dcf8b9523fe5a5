// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	"fmt"
	"sort"
	"strings"
)

// GenerateCUE renders a Forgefile as a CUE document. Fields matching schema
// defaults are still written so a generated file reads as a complete record
// of what will be built.
func GenerateCUE(f *Forgefile) string {
	var sb strings.Builder

	sb.WriteString("// browserforge pipeline definition\n\n")

	sb.WriteString("runtime: {\n")
	fmt.Fprintf(&sb, "\tversion:    %q\n", f.Runtime.Version)
	fmt.Fprintf(&sb, "\tunbuffered: %v\n", f.Runtime.Unbuffered)
	sb.WriteString("}\n\n")

	sb.WriteString("packages: {\n")
	fmt.Fprintf(&sb, "\tvariant: %q\n", f.Packages.Variant)
	if f.Packages.File != "" {
		fmt.Fprintf(&sb, "\tfile: %q\n", f.Packages.File)
	}
	sb.WriteString("}\n\n")

	sb.WriteString("dependencies: {\n")
	fmt.Fprintf(&sb, "\tmanifest: %q\n", f.Dependencies.Manifest)
	sb.WriteString("}\n\n")

	sb.WriteString("browser: {\n")
	fmt.Fprintf(&sb, "\tstrategy: %q\n", f.Browser.Strategy)
	fmt.Fprintf(&sb, "\tengine:   %q\n", f.Browser.Engine)
	if f.Browser.WithDeps {
		sb.WriteString("\twithDeps: true\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("entrypoint: {\n")
	fmt.Fprintf(&sb, "\tcommand: %q\n", f.Entrypoint.Command)
	sb.WriteString("}\n")

	if len(f.Env) > 0 {
		keys := make([]string, 0, len(f.Env))
		for k := range f.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("\nenv: {\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "\t%q: %q\n", k, f.Env[k])
		}
		sb.WriteString("}\n")
	}

	if f.Source != "" && f.Source != "." {
		fmt.Fprintf(&sb, "\nsource: %q\n", f.Source)
	}

	return sb.String()
}
