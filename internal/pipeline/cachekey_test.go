// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"testing"

	"browserforge/internal/manifest"
	"browserforge/pkg/forgefile"
)

func testSpec() *forgefile.Forgefile {
	return &forgefile.Forgefile{
		Runtime:      forgefile.Runtime{Version: "3.11", Unbuffered: true},
		Packages:     forgefile.SystemPackages{Variant: forgefile.VariantFull},
		Dependencies: forgefile.Dependencies{Manifest: "requirements.txt"},
		Browser: forgefile.Browser{
			Strategy: forgefile.StrategyLibrary,
			Engine:   forgefile.EngineChromium,
		},
		Entrypoint: forgefile.Entrypoint{Command: "python app.py"},
		Source:     ".",
	}
}

func testInputs(t *testing.T, spec *forgefile.Forgefile) StageInputs {
	t.Helper()

	packages, err := manifest.LoadPackageSet(spec.Packages, spec.Browser, "")
	if err != nil {
		t.Fatalf("LoadPackageSet returned error: %v", err)
	}
	deps, err := manifest.ParseManifestBytes([]byte("playwright==1.40.0\nrequests>=2.31\n"), "requirements.txt")
	if err != nil {
		t.Fatalf("ParseManifestBytes returned error: %v", err)
	}
	return StageInputs{
		Spec:       spec,
		Packages:   packages,
		Manifest:   deps,
		SourceHash: "aaaa1111",
	}
}

func computeTestKeys(t *testing.T, in StageInputs) *KeyChain {
	t.Helper()
	chain, err := ComputeKeys(CanonicalOrder(), in)
	if err != nil {
		t.Fatalf("ComputeKeys returned error: %v", err)
	}
	return chain
}

func TestComputeKeysDeterministic(t *testing.T) {
	in := testInputs(t, testSpec())
	a := computeTestKeys(t, in)
	b := computeTestKeys(t, in)

	for _, stage := range CanonicalOrder() {
		if a.Key(stage) == "" {
			t.Fatalf("no key for stage %q", stage)
		}
		if a.Key(stage) != b.Key(stage) {
			t.Errorf("stage %q key differs across identical inputs", stage)
		}
	}
}

func TestSourceEditDoesNotInvalidateDependencyInstall(t *testing.T) {
	in := testInputs(t, testSpec())
	before := computeTestKeys(t, in)

	in.SourceHash = "bbbb2222"
	after := computeTestKeys(t, in)

	for _, stage := range []Stage{StageBaseRuntime, StageSystemDeps, StageLanguageDeps, StageBrowserRuntime} {
		if before.Key(stage) != after.Key(stage) {
			t.Errorf("stage %q key changed on a source-only edit", stage)
		}
	}
	if before.Key(StageCopySource) == after.Key(StageCopySource) {
		t.Error("copy-source key did not change on a source edit")
	}
	if before.Key(StageEntrypoint) == after.Key(StageEntrypoint) {
		t.Error("entrypoint key did not change downstream of a source edit")
	}
}

func TestManifestEditInvalidatesFromDependencyStage(t *testing.T) {
	in := testInputs(t, testSpec())
	before := computeTestKeys(t, in)

	edited, err := manifest.ParseManifestBytes([]byte("playwright==1.41.0\n"), "requirements.txt")
	if err != nil {
		t.Fatalf("ParseManifestBytes returned error: %v", err)
	}
	in.Manifest = edited
	after := computeTestKeys(t, in)

	for _, stage := range []Stage{StageBaseRuntime, StageSystemDeps} {
		if before.Key(stage) != after.Key(stage) {
			t.Errorf("stage %q key changed upstream of a manifest edit", stage)
		}
	}
	for _, stage := range []Stage{StageLanguageDeps, StageBrowserRuntime, StageCopySource, StageEntrypoint} {
		if before.Key(stage) == after.Key(stage) {
			t.Errorf("stage %q key did not change downstream of a manifest edit", stage)
		}
	}
}

func TestRuntimeVersionChangeInvalidatesEverything(t *testing.T) {
	in := testInputs(t, testSpec())
	before := computeTestKeys(t, in)

	spec := testSpec()
	spec.Runtime.Version = "3.12"
	in.Spec = spec
	after := computeTestKeys(t, in)

	for _, stage := range CanonicalOrder() {
		if before.Key(stage) == after.Key(stage) {
			t.Errorf("stage %q key survived a base runtime change", stage)
		}
	}
}

func TestBrowserStrategyChangeLeavesDependencyInstallAlone(t *testing.T) {
	in := testInputs(t, testSpec())
	before := computeTestKeys(t, in)

	spec := testSpec()
	spec.Browser.WithDeps = true
	in.Spec = spec
	after := computeTestKeys(t, in)

	if before.Key(StageLanguageDeps) != after.Key(StageLanguageDeps) {
		t.Error("language-deps key changed on a browser strategy edit")
	}
	if before.Key(StageBrowserRuntime) == after.Key(StageBrowserRuntime) {
		t.Error("browser-runtime key did not change on a browser strategy edit")
	}
}

func TestEntrypointEnvIsOrderIndependent(t *testing.T) {
	specA := testSpec()
	specA.Env = map[string]string{"CONFIG_PATH": "/etc/app.json", "LOG_LEVEL": "info"}
	specB := testSpec()
	specB.Env = map[string]string{"LOG_LEVEL": "info", "CONFIG_PATH": "/etc/app.json"}

	inA := testInputs(t, specA)
	inB := testInputs(t, specB)

	keyA := computeTestKeys(t, inA).Key(StageEntrypoint)
	keyB := computeTestKeys(t, inB).Key(StageEntrypoint)
	if keyA != keyB {
		t.Error("entrypoint key depends on env map declaration order")
	}
}

func TestKeyChainFinal(t *testing.T) {
	in := testInputs(t, testSpec())
	chain := computeTestKeys(t, in)

	if chain.Final() != chain.Key(StageEntrypoint) {
		t.Error("Final() is not the last stage's key")
	}
}
