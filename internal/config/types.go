// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"browserforge/internal/pipeline"
)

const (
	// EngineAuto lets the tool pick whichever engine is available.
	EngineAuto = "auto"
	// EngineDocker forces the Docker engine.
	EngineDocker = "docker"
	// EnginePodman forces the Podman engine.
	EnginePodman = "podman"
)

type (
	// Config is the browserforge tool configuration. It governs how the tool
	// runs, never what gets built; image inputs live in the forgefile.
	Config struct {
		// ContainerEngine selects which engine drives builds: auto, docker, podman.
		ContainerEngine string `mapstructure:"container_engine"`
		// CacheDir is the scratch directory for stage build contexts.
		CacheDir string `mapstructure:"cache_dir"`
		// TagPrefix is the repository prefix for intermediate stage images.
		TagPrefix string `mapstructure:"tag_prefix"`
		// DefaultProfile is the forgefile profile used when none exists.
		DefaultProfile string `mapstructure:"default_profile"`
		// RecordsFile is where build records are persisted.
		RecordsFile string `mapstructure:"records_file"`
		// UI holds presentation settings.
		UI UIConfig `mapstructure:"ui"`
	}

	// UIConfig holds presentation settings.
	UIConfig struct {
		// Verbose enables debug-level logging.
		Verbose bool `mapstructure:"verbose"`
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		ContainerEngine: EngineAuto,
		TagPrefix:       pipeline.DefaultTagPrefix,
		DefaultProfile:  "default",
	}
}

// Validate checks cross-field constraints the schema cannot express.
func (c *Config) Validate() error {
	switch c.ContainerEngine {
	case EngineAuto, EngineDocker, EnginePodman:
	default:
		return fmt.Errorf("invalid container_engine %q (valid: auto, docker, podman)", c.ContainerEngine)
	}
	return nil
}

// ResolveCacheDir returns the effective cache directory, falling back to the
// platform user cache location.
func (c *Config) ResolveCacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	if cache, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cache, AppName)
	}
	return filepath.Join(os.TempDir(), AppName)
}

// ResolveRecordsFile returns the effective build records path.
func (c *Config) ResolveRecordsFile() string {
	if c.RecordsFile != "" {
		return c.RecordsFile
	}
	return filepath.Join(c.ResolveCacheDir(), "builds.toml")
}
