// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"browserforge/internal/manifest"
	"browserforge/pkg/forgefile"
)

type (
	// StageInputs gathers the resolved inputs each stage's cache key derives
	// from. Every field is content, not a path: two working trees with the
	// same content produce the same keys regardless of where they live.
	StageInputs struct {
		// Spec is the validated forgefile.
		Spec *forgefile.Forgefile
		// Packages is the resolved system package set.
		Packages *manifest.PackageSet
		// Manifest is the parsed dependency manifest. The language-deps key
		// derives solely from its content hash, so source edits never
		// invalidate the dependency install.
		Manifest *manifest.DependencyManifest
		// SourceHash is the content hash of the application source tree.
		SourceHash string
	}

	// KeyChain maps each stage to its chained cache key. A stage's key is the
	// hash of the previous stage's key concatenated with the stage's own
	// inputs, so invalidating any stage invalidates everything downstream and
	// nothing upstream.
	KeyChain struct {
		keys  map[Stage]string
		order []Stage
	}
)

// ComputeKeys derives the chained cache keys for the given stage order.
func ComputeKeys(order []Stage, in StageInputs) (*KeyChain, error) {
	chain := &KeyChain{
		keys:  make(map[Stage]string, len(order)),
		order: make([]Stage, len(order)),
	}
	copy(chain.order, order)

	prev := ""
	for _, stage := range order {
		input, err := stageInput(stage, in)
		if err != nil {
			return nil, err
		}
		key := hashKey(prev, string(stage), input)
		chain.keys[stage] = key
		prev = key
	}
	return chain, nil
}

// Key returns the cache key for a stage, or "" if the stage is not in the chain.
func (c *KeyChain) Key(stage Stage) string { return c.keys[stage] }

// Final returns the key of the last stage, which identifies the finished image.
func (c *KeyChain) Final() string {
	if len(c.order) == 0 {
		return ""
	}
	return c.keys[c.order[len(c.order)-1]]
}

// Stages returns the stage order the chain was computed for.
func (c *KeyChain) Stages() []Stage {
	order := make([]Stage, len(c.order))
	copy(order, c.order)
	return order
}

func hashKey(prev, stage, input string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n%s\n%s", prev, stage, input)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// stageInput returns the canonical input string for one stage's cache key.
// Only inputs the stage actually consumes appear here; anything else would
// cause spurious rebuilds.
func stageInput(stage Stage, in StageInputs) (string, error) {
	switch stage {
	case StageBaseRuntime:
		return fmt.Sprintf("image=%s\nunbuffered=%t",
			in.Spec.Runtime.BaseImage(), in.Spec.Runtime.Unbuffered), nil

	case StageSystemDeps:
		return fmt.Sprintf("packages=%s", in.Packages.ContentHash()), nil

	case StageLanguageDeps:
		// Manifest content only. The source tree is deliberately excluded.
		return fmt.Sprintf("manifest=%s", in.Manifest.ContentHash()), nil

	case StageBrowserRuntime:
		b := in.Spec.Browser
		return fmt.Sprintf("strategy=%s\nengine=%s\nwithDeps=%t",
			b.Strategy, b.Engine, b.WithDeps), nil

	case StageCopySource:
		return fmt.Sprintf("source=%s", in.SourceHash), nil

	case StageEntrypoint:
		argv, err := in.Spec.Entrypoint.Argv()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("argv=%s\nenv=%s",
			strings.Join(argv, "\x00"), canonicalEnv(in.Spec.Env)), nil

	default:
		return "", &UnknownStageError{Value: stage}
	}
}

// canonicalEnv renders an env map in sorted key order so the key is stable
// across map iteration orders.
func canonicalEnv(env map[string]string) string {
	if len(env) == 0 {
		return ""
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + env[k]
	}
	return strings.Join(pairs, "\x00")
}
