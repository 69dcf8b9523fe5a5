// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"
)

func TestBuildArgs(t *testing.T) {
	e := NewBaseCLIEngine("/usr/bin/docker")

	tests := []struct {
		name string
		opts BuildOptions
		want []string
	}{
		{
			name: "context only",
			opts: BuildOptions{ContextDir: "/tmp/ctx"},
			want: []string{"build", "/tmp/ctx"},
		},
		{
			name: "dockerfile resolved relative to context",
			opts: BuildOptions{ContextDir: "/tmp/ctx", Dockerfile: "Dockerfile", Tag: "forge:abc"},
			want: []string{"build", "-f", "/tmp/ctx/Dockerfile", "-t", "forge:abc", "/tmp/ctx"},
		},
		{
			name: "no cache",
			opts: BuildOptions{ContextDir: "/tmp/ctx", NoCache: true},
			want: []string{"build", "--no-cache", "/tmp/ctx"},
		},
		{
			name: "build args sorted",
			opts: BuildOptions{
				ContextDir: "/tmp/ctx",
				BuildArgs:  map[string]string{"ZED": "1", "ALPHA": "2"},
			},
			want: []string{"build", "--build-arg", "ALPHA=2", "--build-arg", "ZED=1", "/tmp/ctx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.BuildArgs(tt.opts)
			if !slices.Equal(got, tt.want) {
				t.Errorf("BuildArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunArgs(t *testing.T) {
	e := NewBaseCLIEngine("/usr/bin/docker")

	opts := RunOptions{
		Image:  "forge:abc",
		Remove: true,
		Env:    map[string]string{"CONFIG_JSON": "{}", "A": "1"},
	}

	want := []string{"run", "--rm", "-e", "A=1", "-e", "CONFIG_JSON={}", "forge:abc"}
	if got := e.RunArgs(opts); !slices.Equal(got, want) {
		t.Errorf("RunArgs() = %v, want %v", got, want)
	}
}

func TestDockerBuildInvokesEngine(t *testing.T) {
	rec := NewMockCommandRecorder()
	engine := NewDockerEngine(WithExecCommand(rec.CommandFunc(t)))

	var out bytes.Buffer
	err := engine.Build(context.Background(), BuildOptions{
		ContextDir: "/tmp/ctx",
		Dockerfile: "Dockerfile",
		Tag:        "forge:deadbeef",
		Stdout:     &out,
		Stderr:     &out,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	inv := rec.LastInvocation()
	if inv == nil {
		t.Fatal("engine binary was never invoked")
	}
	if inv.Args[0] != "build" {
		t.Errorf("first arg = %q, want build", inv.Args[0])
	}
	if !slices.Contains(inv.Args, "forge:deadbeef") {
		t.Errorf("args missing tag: %v", inv.Args)
	}
}

func TestDockerBuildPreservesExitCode(t *testing.T) {
	rec := NewMockCommandRecorder()
	rec.ExitCode = 100 // apt-get's exit code for a broken package install
	engine := NewDockerEngine(WithExecCommand(rec.CommandFunc(t)))

	err := engine.Build(context.Background(), BuildOptions{ContextDir: "/tmp/ctx", Tag: "forge:x"})
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("expected ErrBuildFailed, got %v", err)
	}

	var buildErr *BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected BuildError, got %T", err)
	}
	if buildErr.ExitCode != 100 {
		t.Errorf("ExitCode = %d, want 100", buildErr.ExitCode)
	}
	if buildErr.Engine != "docker" {
		t.Errorf("Engine = %q, want docker", buildErr.Engine)
	}
}

func TestPodmanRunReportsExitCode(t *testing.T) {
	rec := NewMockCommandRecorder()
	rec.ExitCode = 3
	engine := NewPodmanEngine(WithExecCommand(rec.CommandFunc(t)))

	result, err := engine.Run(context.Background(), RunOptions{Image: "forge:x", Remove: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
}

func TestImageExists(t *testing.T) {
	rec := NewMockCommandRecorder()
	engine := NewDockerEngine(WithExecCommand(rec.CommandFunc(t)))

	exists, err := engine.ImageExists(context.Background(), "forge:abc")
	if err != nil {
		t.Fatalf("ImageExists() error = %v", err)
	}
	if !exists {
		t.Error("expected image to exist when inspect succeeds")
	}

	inv := rec.LastInvocation()
	want := []string{"image", "inspect", "forge:abc"}
	if !slices.Equal(inv.Args, want) {
		t.Errorf("args = %v, want %v", inv.Args, want)
	}
}
