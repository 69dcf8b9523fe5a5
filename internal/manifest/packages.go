// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"browserforge/pkg/forgefile"
)

// Built-in system package sets. The full set covers the browser engine's
// dynamic-library requirements (rendering, font, audio, GTK, NSS, and
// font-rasterization stacks) plus certificate roots; the fonts set is the
// font/locale-hardened minimum for engines that bring their own libraries.
var (
	fullPackages = []string{
		"ca-certificates",
		"fonts-liberation",
		"fonts-noto-color-emoji",
		"libasound2",
		"libatk-bridge2.0-0",
		"libatk1.0-0",
		"libcairo2",
		"libcups2",
		"libdbus-1-3",
		"libdrm2",
		"libgbm1",
		"libglib2.0-0",
		"libgtk-3-0",
		"libnspr4",
		"libnss3",
		"libpango-1.0-0",
		"libpangocairo-1.0-0",
		"libx11-6",
		"libx11-xcb1",
		"libxcb1",
		"libxcomposite1",
		"libxdamage1",
		"libxext6",
		"libxfixes3",
		"libxkbcommon0",
		"libxrandr2",
	}

	fontsPackages = []string{
		"ca-certificates",
		"fontconfig",
		"fonts-liberation",
		"fonts-noto",
		"fonts-noto-cjk",
		"fonts-noto-color-emoji",
		"locales",
	}
)

// PackageSet is the resolved OS package list for the system-deps stage.
// Exactly one variant is active per image.
type PackageSet struct {
	// Variant is the selected built-in variant.
	Variant forgefile.PackageVariant
	// Packages is the final ordered package list, including the browser
	// package for the os-browser variant.
	Packages []string
	// FromFile is set when the list came from a file override.
	FromFile string
}

// LoadPackageSet resolves the system package set for a forgefile. File overrides
// are resolved relative to baseDir. For the os-browser variant the browser
// engine's OS package is appended, so the browser binary arrives in the same
// install transaction as its libraries.
func LoadPackageSet(spec forgefile.SystemPackages, browser forgefile.Browser, baseDir string) (*PackageSet, error) {
	set := &PackageSet{Variant: spec.Variant}

	switch {
	case spec.File != "":
		path := spec.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read package list at %s: %w", path, err)
		}
		set.Packages = parsePackageList(data)
		set.FromFile = path
	case spec.Variant == forgefile.VariantFonts:
		set.Packages = append(set.Packages, fontsPackages...)
	default:
		set.Packages = append(set.Packages, fullPackages...)
	}

	if spec.Variant.IncludesBrowser() {
		pkg, ok := browser.Engine.OSPackage()
		if !ok {
			return nil, &forgefile.InvalidBrowserEngineError{
				Value:    browser.Engine,
				Strategy: forgefile.StrategyOS,
			}
		}
		set.Packages = append(set.Packages, pkg)
	}

	return set, nil
}

// ContentHash returns the sha256 hex digest of the resolved package list.
// The hash covers the final list, so a file override with identical content
// produces the same key as the built-in set it mirrors.
func (s *PackageSet) ContentHash() string {
	sum := sha256.Sum256([]byte(strings.Join(s.Packages, "\n")))
	return hex.EncodeToString(sum[:])
}

// parsePackageList parses a plain-text package list: one package per line,
// '#' comments, blank lines ignored.
func parsePackageList(data []byte) []string {
	var packages []string
	for _, rawLine := range strings.Split(string(data), "\n") {
		line := rawLine
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		packages = append(packages, line)
	}
	return packages
}
