// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"browserforge/internal/container"
	"browserforge/internal/manifest"
	"browserforge/pkg/forgefile"
)

// DefaultTagPrefix is the repository prefix for intermediate stage images.
const DefaultTagPrefix = "browserforge-stage"

type (
	// Option configures a StageProvisioner.
	Option func(*StageProvisioner)

	// StageProvisioner builds an image by running the pipeline one stage at a
	// time. Each stage is built as its own image FROM the previous stage's
	// image, tagged with the stage's chained cache key; a tag that already
	// exists is a cache hit and the build is skipped. Failures stop the
	// pipeline at the failing stage, so downstream stages are never attempted
	// against a broken base.
	StageProvisioner struct {
		engine       container.Engine
		workDir      string
		tagPrefix    string
		forceRebuild bool
		output       io.Writer
		logger       *slog.Logger
	}

	// StageResult records the outcome of one stage.
	StageResult struct {
		// Stage is the pipeline stage.
		Stage Stage
		// Key is the stage's full cache key.
		Key string
		// Tag is the intermediate image tag for the stage.
		Tag string
		// Cached is true when the stage's image already existed.
		Cached bool
	}

	// Result is the outcome of a full pipeline run.
	Result struct {
		// ImageTag is the final tag applied to the finished image.
		ImageTag string
		// Stages lists per-stage outcomes in execution order.
		Stages []StageResult
	}

	// ResolvedInputs is a forgefile resolved against the working tree: package set
	// loaded, manifest parsed, source hashed, and stage order validated.
	ResolvedInputs struct {
		StageInputs
		// Order is the validated stage order.
		Order []Stage
		// SourceDir is the resolved application source directory.
		SourceDir string
	}
)

// WithWorkDir sets the scratch directory for stage build contexts.
func WithWorkDir(dir string) Option {
	return func(p *StageProvisioner) { p.workDir = dir }
}

// WithTagPrefix sets the repository prefix for intermediate stage images.
func WithTagPrefix(prefix string) Option {
	return func(p *StageProvisioner) { p.tagPrefix = prefix }
}

// WithForceRebuild disables cache hits so every stage rebuilds.
func WithForceRebuild(force bool) Option {
	return func(p *StageProvisioner) { p.forceRebuild = force }
}

// WithOutput sets where engine build progress is written.
func WithOutput(w io.Writer) Option {
	return func(p *StageProvisioner) { p.output = w }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *StageProvisioner) { p.logger = logger }
}

// NewStageProvisioner creates a provisioner that drives builds through the
// given container engine.
func NewStageProvisioner(engine container.Engine, opts ...Option) *StageProvisioner {
	p := &StageProvisioner{
		engine:    engine,
		tagPrefix: DefaultTagPrefix,
		output:    os.Stderr,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.workDir == "" {
		p.workDir = defaultWorkDir()
	}
	return p
}

func defaultWorkDir() string {
	if cache, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cache, "browserforge", "build")
	}
	return filepath.Join(os.TempDir(), "browserforge-build")
}

// Resolve validates a forgefile and resolves its inputs against the working tree.
// Load failures are attributed to the stage that owns the input, so a missing
// manifest surfaces as a dependency-resolution failure before any image is
// built.
func Resolve(spec *forgefile.Forgefile) (*ResolvedInputs, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	order, err := ResolveOrder(spec.Stages)
	if err != nil {
		return nil, err
	}

	baseDir := "."
	if spec.FilePath != "" {
		baseDir = filepath.Dir(spec.FilePath)
	}

	packages, err := manifest.LoadPackageSet(spec.Packages, spec.Browser, baseDir)
	if err != nil {
		return nil, newStageError(StageSystemDeps, -1, err)
	}

	manifestPath := spec.Dependencies.Manifest
	if !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(baseDir, manifestPath)
	}
	deps, err := manifest.LoadManifest(manifestPath)
	if err != nil {
		return nil, newStageError(StageLanguageDeps, -1, err)
	}

	sourceDir := spec.Source
	if !filepath.IsAbs(sourceDir) {
		sourceDir = filepath.Join(baseDir, sourceDir)
	}
	sourceHash, err := SourceDirHash(sourceDir)
	if err != nil {
		return nil, newStageError(StageCopySource, -1, err)
	}

	return &ResolvedInputs{
		StageInputs: StageInputs{
			Spec:       spec,
			Packages:   packages,
			Manifest:   deps,
			SourceHash: sourceHash,
		},
		Order:     order,
		SourceDir: sourceDir,
	}, nil
}

// StageTag returns the intermediate image tag for a stage key.
func (p *StageProvisioner) StageTag(stage Stage, key string) string {
	return fmt.Sprintf("%s:%s-%s", p.tagPrefix, stage, key[:12])
}

// Plan resolves a forgefile and reports, per stage, the cache key, the image tag,
// and whether the stage's image already exists. It never builds anything.
func (p *StageProvisioner) Plan(ctx context.Context, spec *forgefile.Forgefile) (*Result, error) {
	in, err := Resolve(spec)
	if err != nil {
		return nil, err
	}
	chain, err := ComputeKeys(in.Order, in.StageInputs)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, stage := range in.Order {
		key := chain.Key(stage)
		tag := p.StageTag(stage, key)
		exists, _ := p.engine.ImageExists(ctx, tag) //nolint:errcheck // Error treated as "not found"
		result.Stages = append(result.Stages, StageResult{
			Stage:  stage,
			Key:    key,
			Tag:    tag,
			Cached: exists,
		})
	}
	return result, nil
}

// Provision runs the full pipeline for a forgefile and applies finalTag to the
// finished image. Stages whose keyed image already exists are skipped unless
// force-rebuild is set.
func (p *StageProvisioner) Provision(ctx context.Context, spec *forgefile.Forgefile, finalTag string) (*Result, error) {
	in, err := Resolve(spec)
	if err != nil {
		return nil, err
	}
	chain, err := ComputeKeys(in.Order, in.StageInputs)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	prevTag := ""
	for _, stage := range in.Order {
		key := chain.Key(stage)
		tag := p.StageTag(stage, key)

		if !p.forceRebuild {
			exists, _ := p.engine.ImageExists(ctx, tag) //nolint:errcheck // Error treated as "not found"
			if exists {
				p.logger.Debug("stage cached", "stage", stage, "tag", tag)
				result.Stages = append(result.Stages, StageResult{Stage: stage, Key: key, Tag: tag, Cached: true})
				prevTag = tag
				continue
			}
		}

		p.logger.Info("building stage", "stage", stage, "tag", tag)
		if err := p.buildStage(ctx, stage, prevTag, tag, in); err != nil {
			return result, err
		}
		result.Stages = append(result.Stages, StageResult{Stage: stage, Key: key, Tag: tag})
		prevTag = tag
	}

	if finalTag != "" && prevTag != "" {
		if err := p.engine.TagImage(ctx, prevTag, finalTag); err != nil {
			return result, fmt.Errorf("failed to apply final tag %s: %w", finalTag, err)
		}
		result.ImageTag = finalTag
	} else {
		result.ImageTag = prevTag
	}
	return result, nil
}

// buildStage prepares the stage's build context and runs one engine build.
// Build failures carry the engine's exit code into the stage error so exit
// status survives all the way to the process boundary.
func (p *StageProvisioner) buildStage(ctx context.Context, stage Stage, prevTag, tag string, in *ResolvedInputs) error {
	contextDir, dockerfile, err := p.prepareStageContext(stage, tag, prevTag, in)
	if err != nil {
		return newStageError(stage, -1, err)
	}

	buildOpts := container.BuildOptions{
		ContextDir: contextDir,
		Dockerfile: dockerfile,
		Tag:        tag,
		NoCache:    p.forceRebuild,
		Stdout:     p.output,
		Stderr:     p.output,
	}
	if err := p.engine.Build(ctx, buildOpts); err != nil {
		exitCode := -1
		var buildErr *container.BuildError
		if errors.As(err, &buildErr) {
			exitCode = buildErr.ExitCode
		}
		return newStageError(stage, exitCode, err)
	}
	return nil
}

// prepareStageContext materializes the stage's Dockerfile and build context
// under the work directory. Only the copy-source stage sees the application
// tree; the language-deps context holds the manifest alone, so its cache key
// and build inputs stay independent of source edits.
func (p *StageProvisioner) prepareStageContext(stage Stage, tag, prevTag string, in *ResolvedInputs) (contextDir, dockerfile string, err error) {
	stageDir := filepath.Join(p.workDir, fmt.Sprintf("%s-%s", stage, tagSuffix(tag)))
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create stage build directory: %w", err)
	}

	content, err := StageDockerfile(stage, prevTag, in.StageInputs)
	if err != nil {
		return "", "", err
	}
	dockerfilePath := filepath.Join(stageDir, "Dockerfile")
	if err := os.WriteFile(dockerfilePath, []byte(content), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write Dockerfile: %w", err)
	}

	switch stage {
	case StageLanguageDeps:
		name := filepath.Base(in.Manifest.Path)
		if err := copyFile(in.Manifest.Path, filepath.Join(stageDir, name)); err != nil {
			return "", "", fmt.Errorf("failed to copy dependency manifest: %w", err)
		}
		return stageDir, "Dockerfile", nil
	case StageCopySource:
		// The source directory itself is the context; the Dockerfile stays in
		// the work directory so nothing is written into the user's tree.
		return in.SourceDir, dockerfilePath, nil
	default:
		return stageDir, "Dockerfile", nil
	}
}

// tagSuffix extracts the key fragment after the last '-' of a stage tag.
func tagSuffix(tag string) string {
	for i := len(tag) - 1; i >= 0; i-- {
		if tag[i] == '-' {
			return tag[i+1:]
		}
	}
	return tag
}
