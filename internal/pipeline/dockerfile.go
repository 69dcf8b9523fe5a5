// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"browserforge/pkg/forgefile"
)

// workdir is the application directory inside the image.
const workdir = "/app"

// browsersPath is where the library-managed install places browser binaries.
// Pinning it makes the install location independent of the user the container
// runs as.
const browsersPath = "/ms-playwright"

// StageDockerfile renders the Dockerfile for one stage's build. The first
// stage starts FROM the runtime base image; every later stage starts FROM the
// previous stage's cached image, which is what gives each stage its own cache
// and failure boundary.
func StageDockerfile(stage Stage, prevImage string, in StageInputs) (string, error) {
	var sb strings.Builder

	if stage == StageBaseRuntime {
		fmt.Fprintf(&sb, "FROM %s\n", in.Spec.Runtime.BaseImage())
	} else {
		fmt.Fprintf(&sb, "FROM %s\n", prevImage)
	}

	body, err := stageBody(stage, in)
	if err != nil {
		return "", err
	}
	sb.WriteString(body)
	return sb.String(), nil
}

// RenderFull renders all stages as a single self-contained Dockerfile, for
// inspection and for use outside the staged cache (e.g., CI systems that
// build from a checked-in Dockerfile).
func RenderFull(order []Stage, in StageInputs) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "FROM %s\n", in.Spec.Runtime.BaseImage())
	for _, stage := range order {
		body, err := stageBody(stage, in)
		if err != nil {
			return "", err
		}
		if body == "" {
			continue
		}
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "# stage: %s\n", stage)
		sb.WriteString(body)
	}
	return sb.String(), nil
}

func stageBody(stage Stage, in StageInputs) (string, error) {
	switch stage {
	case StageBaseRuntime:
		return baseRuntimeBody(in), nil
	case StageSystemDeps:
		return systemDepsBody(in), nil
	case StageLanguageDeps:
		return languageDepsBody(in), nil
	case StageBrowserRuntime:
		return browserRuntimeBody(in)
	case StageCopySource:
		return copySourceBody(), nil
	case StageEntrypoint:
		return entrypointBody(in)
	default:
		return "", &UnknownStageError{Value: stage}
	}
}

func baseRuntimeBody(in StageInputs) string {
	var sb strings.Builder
	if in.Spec.Runtime.Unbuffered {
		sb.WriteString("ENV PYTHONUNBUFFERED=1\n")
	}
	fmt.Fprintf(&sb, "WORKDIR %s\n", workdir)
	return sb.String()
}

// systemDepsBody installs the package set and removes the package index in
// the same RUN instruction. Splitting them would leave the index bytes in the
// install layer where a later removal cannot reclaim them.
func systemDepsBody(in StageInputs) string {
	if len(in.Packages.Packages) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("RUN apt-get update \\\n")
	sb.WriteString("    && apt-get install -y --no-install-recommends \\\n")
	for _, pkg := range in.Packages.Packages {
		fmt.Fprintf(&sb, "        %s \\\n", pkg)
	}
	sb.WriteString("    && rm -rf /var/lib/apt/lists/*\n")
	return sb.String()
}

// languageDepsBody copies only the manifest into the layer before installing.
// The source tree arrives in a later stage, so editing source never touches
// this layer's inputs.
func languageDepsBody(in StageInputs) string {
	name := filepath.Base(in.Manifest.Path)
	if name == "." || name == "/" {
		name = "requirements.txt"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "COPY %s %s/%s\n", name, workdir, name)
	fmt.Fprintf(&sb, "RUN pip install --no-cache-dir -r %s\n", name)
	return sb.String()
}

func browserRuntimeBody(in StageInputs) (string, error) {
	b := in.Spec.Browser
	var sb strings.Builder
	switch b.Strategy {
	case forgefile.StrategyLibrary:
		fmt.Fprintf(&sb, "ENV PLAYWRIGHT_BROWSERS_PATH=%s\n", browsersPath)
		if b.WithDeps {
			fmt.Fprintf(&sb, "RUN playwright install --with-deps %s\n", b.Engine)
		} else {
			fmt.Fprintf(&sb, "RUN playwright install %s\n", b.Engine)
		}
	case forgefile.StrategyOS:
		// The binary itself arrived with the system package stage; this stage
		// only points the library at it.
		path, ok := b.Engine.OSBinaryPath()
		if !ok {
			return "", &forgefile.InvalidBrowserEngineError{Value: b.Engine, Strategy: b.Strategy}
		}
		fmt.Fprintf(&sb, "ENV %s=%s\n", osExecutableEnvVar(b.Engine), path)
	default:
		return "", &forgefile.InvalidBrowserStrategyError{Value: b.Strategy}
	}
	return sb.String(), nil
}

// osExecutableEnvVar names the environment variable the automation library
// reads to locate an externally managed browser binary.
func osExecutableEnvVar(engine forgefile.BrowserEngine) string {
	return fmt.Sprintf("PLAYWRIGHT_%s_EXECUTABLE_PATH", strings.ToUpper(engine.String()))
}

func copySourceBody() string {
	return fmt.Sprintf("COPY . %s\n", workdir)
}

func entrypointBody(in StageInputs) (string, error) {
	argv, err := in.Spec.Entrypoint.Argv()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if len(in.Spec.Env) > 0 {
		keys := make([]string, 0, len(in.Spec.Env))
		for k := range in.Spec.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "ENV %s=%q\n", k, in.Spec.Env[k])
		}
	}

	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = fmt.Sprintf("%q", arg)
	}
	fmt.Fprintf(&sb, "CMD [%s]\n", strings.Join(quoted, ", "))
	return sb.String(), nil
}
