// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"browserforge/internal/container"
	"browserforge/pkg/forgefile"
)

// MockEngine is a container.Engine test double recording build and tag calls.
type MockEngine struct {
	builds    []container.BuildOptions
	tagged    [][2]string
	existing  map[string]bool
	failStage string
	failCode  int
}

func NewMockEngine() *MockEngine {
	return &MockEngine{existing: make(map[string]bool)}
}

// WithBuildFailure makes builds of tags containing the given stage name fail
// with the given exit code.
func (m *MockEngine) WithBuildFailure(stage string, exitCode int) *MockEngine {
	m.failStage = stage
	m.failCode = exitCode
	return m
}

func (m *MockEngine) Name() string                              { return "mock" }
func (m *MockEngine) Available() bool                           { return true }
func (m *MockEngine) Version(_ context.Context) (string, error) { return "0.0.0-test", nil }

func (m *MockEngine) RemoveImage(_ context.Context, _ string, _ bool) error { return nil }

func (m *MockEngine) Build(_ context.Context, opts container.BuildOptions) error {
	m.builds = append(m.builds, opts)
	if m.failStage != "" && strings.Contains(opts.Tag, m.failStage) {
		return &container.BuildError{
			Engine:   "mock",
			Tag:      opts.Tag,
			ExitCode: m.failCode,
			Cause:    errors.New("simulated build failure"),
		}
	}
	m.existing[opts.Tag] = true
	return nil
}

func (m *MockEngine) Run(_ context.Context, _ container.RunOptions) (*container.RunResult, error) {
	return &container.RunResult{}, nil
}

func (m *MockEngine) ImageExists(_ context.Context, image string) (bool, error) {
	return m.existing[image], nil
}

func (m *MockEngine) TagImage(_ context.Context, src, dst string) error {
	m.tagged = append(m.tagged, [2]string{src, dst})
	m.existing[dst] = true
	return nil
}

// writeProjectFixture lays out a minimal project tree and returns a forgefile
// pointing at it.
func writeProjectFixture(t *testing.T) *forgefile.Forgefile {
	t.Helper()

	dir := t.TempDir()
	writeFixtureFile(t, filepath.Join(dir, "requirements.txt"), "playwright==1.40.0\nrequests>=2.31\n")
	writeFixtureFile(t, filepath.Join(dir, "app.py"), "print('hello')\n")

	spec := testSpec()
	spec.FilePath = filepath.Join(dir, "Forgefile.cue")
	return spec
}

func writeFixtureFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
}

func newTestProvisioner(t *testing.T, engine container.Engine) *StageProvisioner {
	t.Helper()
	return NewStageProvisioner(engine, WithWorkDir(t.TempDir()))
}

func TestProvisionBuildsEveryStageInOrder(t *testing.T) {
	engine := NewMockEngine()
	p := newTestProvisioner(t, engine)
	spec := writeProjectFixture(t)

	result, err := p.Provision(context.Background(), spec, "myapp:latest")
	if err != nil {
		t.Fatalf("Provision returned error: %v", err)
	}

	if len(engine.builds) != 6 {
		t.Fatalf("engine saw %d builds, want 6", len(engine.builds))
	}
	order := CanonicalOrder()
	for i, build := range engine.builds {
		prefix := DefaultTagPrefix + ":" + order[i].String() + "-"
		if !strings.HasPrefix(build.Tag, prefix) {
			t.Errorf("build %d tag %q does not match stage %q", i, build.Tag, order[i])
		}
	}

	if result.ImageTag != "myapp:latest" {
		t.Errorf("ImageTag = %q, want myapp:latest", result.ImageTag)
	}
	if len(engine.tagged) != 1 {
		t.Fatalf("engine saw %d tag calls, want 1", len(engine.tagged))
	}
	if engine.tagged[0][0] != engine.builds[5].Tag || engine.tagged[0][1] != "myapp:latest" {
		t.Errorf("final tag call %v does not retag the last stage image", engine.tagged[0])
	}
}

func TestProvisionSkipsCachedStages(t *testing.T) {
	engine := NewMockEngine()
	p := newTestProvisioner(t, engine)
	spec := writeProjectFixture(t)

	if _, err := p.Provision(context.Background(), spec, "myapp:latest"); err != nil {
		t.Fatalf("first Provision returned error: %v", err)
	}
	firstBuilds := len(engine.builds)

	result, err := p.Provision(context.Background(), spec, "myapp:latest")
	if err != nil {
		t.Fatalf("second Provision returned error: %v", err)
	}
	if len(engine.builds) != firstBuilds {
		t.Errorf("second run issued %d extra builds, want 0", len(engine.builds)-firstBuilds)
	}
	for _, stage := range result.Stages {
		if !stage.Cached {
			t.Errorf("stage %q not reported as cached on identical rerun", stage.Stage)
		}
	}
}

func TestProvisionForceRebuildIgnoresCache(t *testing.T) {
	engine := NewMockEngine()
	spec := writeProjectFixture(t)

	p := newTestProvisioner(t, engine)
	if _, err := p.Provision(context.Background(), spec, ""); err != nil {
		t.Fatalf("first Provision returned error: %v", err)
	}
	firstBuilds := len(engine.builds)

	forced := NewStageProvisioner(engine, WithWorkDir(t.TempDir()), WithForceRebuild(true))
	if _, err := forced.Provision(context.Background(), spec, ""); err != nil {
		t.Fatalf("forced Provision returned error: %v", err)
	}
	if len(engine.builds) != firstBuilds*2 {
		t.Errorf("forced run issued %d builds, want %d", len(engine.builds)-firstBuilds, firstBuilds)
	}
	if !engine.builds[len(engine.builds)-1].NoCache {
		t.Error("forced rebuild did not disable the engine layer cache")
	}
}

func TestProvisionHaltsAtFailingStage(t *testing.T) {
	engine := NewMockEngine().WithBuildFailure(StageSystemDeps.String(), 100)
	p := newTestProvisioner(t, engine)
	spec := writeProjectFixture(t)

	result, err := p.Provision(context.Background(), spec, "myapp:latest")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if !errors.Is(err, ErrSystemPackage) {
		t.Errorf("error %v does not match ErrSystemPackage", err)
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatal("errors.As failed to extract StageError")
	}
	if stageErr.ExitCode != 100 {
		t.Errorf("ExitCode = %d, want 100", stageErr.ExitCode)
	}

	// Base runtime succeeded, system-deps failed, nothing after was attempted.
	if len(engine.builds) != 2 {
		t.Errorf("engine saw %d builds, want 2 (halt at the failing stage)", len(engine.builds))
	}
	if len(result.Stages) != 1 {
		t.Errorf("result records %d completed stages, want 1", len(result.Stages))
	}
	if len(engine.tagged) != 0 {
		t.Error("final tag applied despite a failed pipeline")
	}
}

func TestProvisionLanguageDepsContextHoldsManifestOnly(t *testing.T) {
	engine := NewMockEngine()
	p := newTestProvisioner(t, engine)
	spec := writeProjectFixture(t)

	if _, err := p.Provision(context.Background(), spec, ""); err != nil {
		t.Fatalf("Provision returned error: %v", err)
	}

	sourceDir := filepath.Dir(spec.FilePath)
	for _, build := range engine.builds {
		switch {
		case strings.Contains(build.Tag, StageLanguageDeps.String()):
			if build.ContextDir == sourceDir {
				t.Error("language-deps build uses the source tree as context")
			}
			entries, err := os.ReadDir(build.ContextDir)
			if err != nil {
				t.Fatalf("failed to read language-deps context: %v", err)
			}
			for _, e := range entries {
				if e.Name() != "Dockerfile" && e.Name() != "requirements.txt" {
					t.Errorf("unexpected file %q in language-deps context", e.Name())
				}
			}
		case strings.Contains(build.Tag, StageCopySource.String()):
			if build.ContextDir != sourceDir {
				t.Errorf("copy-source context = %q, want the source tree %q", build.ContextDir, sourceDir)
			}
			if !filepath.IsAbs(build.Dockerfile) {
				t.Errorf("copy-source Dockerfile %q should live outside the source tree", build.Dockerfile)
			}
		}
	}
}

func TestPlanDoesNotBuild(t *testing.T) {
	engine := NewMockEngine()
	p := newTestProvisioner(t, engine)
	spec := writeProjectFixture(t)

	result, err := p.Plan(context.Background(), spec)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(engine.builds) != 0 {
		t.Errorf("Plan issued %d builds, want 0", len(engine.builds))
	}
	if len(result.Stages) != 6 {
		t.Errorf("Plan reports %d stages, want 6", len(result.Stages))
	}
	for _, stage := range result.Stages {
		if stage.Cached {
			t.Errorf("stage %q reported cached on a cold engine", stage.Stage)
		}
	}
}

func TestResolveAttributesMissingManifest(t *testing.T) {
	spec := writeProjectFixture(t)
	spec.Dependencies.Manifest = "nonexistent.txt"

	_, err := Resolve(spec)
	if !errors.Is(err, ErrDependencyResolution) {
		t.Errorf("missing manifest error %v does not match ErrDependencyResolution", err)
	}
}

func TestResolveRejectsDualInstall(t *testing.T) {
	spec := writeProjectFixture(t)
	spec.Packages.Variant = forgefile.VariantOSBrowser
	spec.Browser.Strategy = forgefile.StrategyLibrary

	_, err := Resolve(spec)
	if !errors.Is(err, forgefile.ErrDualBrowserInstall) {
		t.Errorf("dual install error %v does not match ErrDualBrowserInstall", err)
	}
}

func TestResolveRejectsInvalidStageOrder(t *testing.T) {
	spec := writeProjectFixture(t)
	spec.Stages = []string{
		"base-runtime", "system-deps", "copy-source",
		"language-deps", "browser-runtime", "entrypoint",
	}

	_, err := Resolve(spec)
	if !errors.Is(err, ErrInvalidStageOrder) {
		t.Errorf("misordered stages error %v does not match ErrInvalidStageOrder", err)
	}
}
