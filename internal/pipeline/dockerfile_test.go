// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"strings"
	"testing"

	"browserforge/pkg/forgefile"
)

func TestBaseRuntimeDockerfile(t *testing.T) {
	in := testInputs(t, testSpec())

	out, err := StageDockerfile(StageBaseRuntime, "", in)
	if err != nil {
		t.Fatalf("StageDockerfile returned error: %v", err)
	}
	if !strings.HasPrefix(out, "FROM python:3.11-slim\n") {
		t.Errorf("base stage does not start from the pinned runtime image:\n%s", out)
	}
	if !strings.Contains(out, "ENV PYTHONUNBUFFERED=1") {
		t.Errorf("unbuffered runtime missing PYTHONUNBUFFERED:\n%s", out)
	}
}

func TestBaseRuntimeDockerfileBufferedOmitsEnv(t *testing.T) {
	spec := testSpec()
	spec.Runtime.Unbuffered = false
	in := testInputs(t, spec)

	out, err := StageDockerfile(StageBaseRuntime, "", in)
	if err != nil {
		t.Fatalf("StageDockerfile returned error: %v", err)
	}
	if strings.Contains(out, "PYTHONUNBUFFERED") {
		t.Errorf("buffered runtime still sets PYTHONUNBUFFERED:\n%s", out)
	}
}

func TestSystemDepsDockerfileCleansIndexInSameLayer(t *testing.T) {
	in := testInputs(t, testSpec())

	out, err := StageDockerfile(StageSystemDeps, "browserforge-stage:base-runtime-abc", in)
	if err != nil {
		t.Fatalf("StageDockerfile returned error: %v", err)
	}
	if got := strings.Count(out, "RUN "); got != 1 {
		t.Fatalf("system-deps stage has %d RUN instructions, want 1:\n%s", got, out)
	}
	if !strings.Contains(out, "apt-get install -y --no-install-recommends") {
		t.Errorf("install command missing:\n%s", out)
	}
	if !strings.Contains(out, "rm -rf /var/lib/apt/lists/*") {
		t.Errorf("package index cleanup missing from install layer:\n%s", out)
	}
	if !strings.Contains(out, "libnss3") {
		t.Errorf("full variant package libnss3 missing:\n%s", out)
	}
}

func TestLanguageDepsDockerfileCopiesManifestOnly(t *testing.T) {
	in := testInputs(t, testSpec())

	out, err := StageDockerfile(StageLanguageDeps, "browserforge-stage:system-deps-abc", in)
	if err != nil {
		t.Fatalf("StageDockerfile returned error: %v", err)
	}
	if !strings.Contains(out, "COPY requirements.txt /app/requirements.txt") {
		t.Errorf("manifest copy missing:\n%s", out)
	}
	if !strings.Contains(out, "pip install --no-cache-dir -r requirements.txt") {
		t.Errorf("cache-less pip install missing:\n%s", out)
	}
	if strings.Contains(out, "COPY . ") {
		t.Errorf("language-deps stage must not copy the source tree:\n%s", out)
	}
}

func TestBrowserRuntimeDockerfileLibraryStrategy(t *testing.T) {
	tests := []struct {
		name     string
		withDeps bool
		wantRun  string
	}{
		{"plain install", false, "RUN playwright install chromium"},
		{"with deps", true, "RUN playwright install --with-deps chromium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testSpec()
			spec.Browser.WithDeps = tt.withDeps
			in := testInputs(t, spec)

			out, err := StageDockerfile(StageBrowserRuntime, "browserforge-stage:language-deps-abc", in)
			if err != nil {
				t.Fatalf("StageDockerfile returned error: %v", err)
			}
			if !strings.Contains(out, "ENV PLAYWRIGHT_BROWSERS_PATH=/ms-playwright") {
				t.Errorf("browsers path pin missing:\n%s", out)
			}
			if !strings.Contains(out, tt.wantRun+"\n") {
				t.Errorf("install command missing %q:\n%s", tt.wantRun, out)
			}
		})
	}
}

func TestBrowserRuntimeDockerfileOSStrategy(t *testing.T) {
	spec := testSpec()
	spec.Packages.Variant = forgefile.VariantOSBrowser
	spec.Browser = forgefile.Browser{
		Strategy: forgefile.StrategyOS,
		Engine:   forgefile.EngineChromium,
	}
	in := testInputs(t, spec)

	out, err := StageDockerfile(StageBrowserRuntime, "browserforge-stage:language-deps-abc", in)
	if err != nil {
		t.Fatalf("StageDockerfile returned error: %v", err)
	}
	if !strings.Contains(out, "ENV PLAYWRIGHT_CHROMIUM_EXECUTABLE_PATH=/usr/bin/chromium") {
		t.Errorf("executable path redirect missing:\n%s", out)
	}
	if strings.Contains(out, "RUN ") {
		t.Errorf("os strategy stage must not run an installer, the binary came with system-deps:\n%s", out)
	}
}

func TestOSBrowserVariantInstallsBrowserPackage(t *testing.T) {
	spec := testSpec()
	spec.Packages.Variant = forgefile.VariantOSBrowser
	spec.Browser = forgefile.Browser{
		Strategy: forgefile.StrategyOS,
		Engine:   forgefile.EngineChromium,
	}
	in := testInputs(t, spec)

	out, err := StageDockerfile(StageSystemDeps, "browserforge-stage:base-runtime-abc", in)
	if err != nil {
		t.Fatalf("StageDockerfile returned error: %v", err)
	}
	if !strings.Contains(out, "chromium") {
		t.Errorf("os-browser variant does not install the browser package:\n%s", out)
	}
}

func TestEntrypointDockerfileExecForm(t *testing.T) {
	spec := testSpec()
	spec.Env = map[string]string{"CONFIG_PATH": "/etc/app.json"}
	in := testInputs(t, spec)

	out, err := StageDockerfile(StageEntrypoint, "browserforge-stage:copy-source-abc", in)
	if err != nil {
		t.Fatalf("StageDockerfile returned error: %v", err)
	}
	if !strings.Contains(out, `CMD ["python", "app.py"]`) {
		t.Errorf("exec-form CMD missing:\n%s", out)
	}
	if !strings.Contains(out, `ENV CONFIG_PATH="/etc/app.json"`) {
		t.Errorf("baked env missing:\n%s", out)
	}
}

func TestCopySourceDockerfile(t *testing.T) {
	in := testInputs(t, testSpec())

	out, err := StageDockerfile(StageCopySource, "browserforge-stage:browser-runtime-abc", in)
	if err != nil {
		t.Fatalf("StageDockerfile returned error: %v", err)
	}
	if !strings.Contains(out, "FROM browserforge-stage:browser-runtime-abc") {
		t.Errorf("stage does not chain from the previous image:\n%s", out)
	}
	if !strings.Contains(out, "COPY . /app") {
		t.Errorf("source copy missing:\n%s", out)
	}
}

func TestRenderFullContainsAllStages(t *testing.T) {
	in := testInputs(t, testSpec())

	out, err := RenderFull(CanonicalOrder(), in)
	if err != nil {
		t.Fatalf("RenderFull returned error: %v", err)
	}
	if got := strings.Count(out, "FROM "); got != 1 {
		t.Errorf("full render has %d FROM instructions, want 1:\n%s", got, out)
	}
	for _, marker := range []string{
		"FROM python:3.11-slim",
		"apt-get install",
		"pip install --no-cache-dir",
		"playwright install chromium",
		"COPY . /app",
		`CMD ["python", "app.py"]`,
	} {
		if !strings.Contains(out, marker) {
			t.Errorf("full render missing %q:\n%s", marker, out)
		}
	}

	// Ordering: dependency install must precede the source copy.
	if strings.Index(out, "pip install") > strings.Index(out, "COPY . /app") {
		t.Error("source copy renders before the dependency install")
	}
}
