// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"browserforge/pkg/forgefile"
)

func TestLoadPackageSetVariants(t *testing.T) {
	tests := []struct {
		name        string
		spec        forgefile.SystemPackages
		browser     forgefile.Browser
		wantInclude []string
		wantExclude []string
	}{
		{
			name:        "full includes NSS and GTK stacks",
			spec:        forgefile.SystemPackages{Variant: forgefile.VariantFull},
			browser:     forgefile.Browser{Strategy: forgefile.StrategyLibrary, Engine: forgefile.EngineChromium},
			wantInclude: []string{"libnss3", "libgtk-3-0", "ca-certificates"},
			wantExclude: []string{"chromium"},
		},
		{
			name:        "fonts is the hardened minimum",
			spec:        forgefile.SystemPackages{Variant: forgefile.VariantFonts},
			browser:     forgefile.Browser{Strategy: forgefile.StrategyLibrary, Engine: forgefile.EngineChromium},
			wantInclude: []string{"fontconfig", "fonts-noto-cjk", "locales"},
			wantExclude: []string{"libnss3", "libgtk-3-0", "chromium"},
		},
		{
			name:        "os-browser appends the engine package",
			spec:        forgefile.SystemPackages{Variant: forgefile.VariantOSBrowser},
			browser:     forgefile.Browser{Strategy: forgefile.StrategyOS, Engine: forgefile.EngineChromium},
			wantInclude: []string{"libnss3", "chromium"},
		},
		{
			name:        "os-browser firefox",
			spec:        forgefile.SystemPackages{Variant: forgefile.VariantOSBrowser},
			browser:     forgefile.Browser{Strategy: forgefile.StrategyOS, Engine: forgefile.EngineFirefox},
			wantInclude: []string{"firefox-esr"},
			wantExclude: []string{"chromium"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := LoadPackageSet(tt.spec, tt.browser, t.TempDir())
			if err != nil {
				t.Fatalf("LoadPackageSet() error = %v", err)
			}
			for _, pkg := range tt.wantInclude {
				if !slices.Contains(set.Packages, pkg) {
					t.Errorf("package set missing %q: %v", pkg, set.Packages)
				}
			}
			for _, pkg := range tt.wantExclude {
				if slices.Contains(set.Packages, pkg) {
					t.Errorf("package set should not contain %q", pkg)
				}
			}
		})
	}
}

func TestLoadPackageSetFileOverride(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "packages.txt")
	content := "# custom set\nlibfoo1\nlibbar2  # trailing comment\n\n"
	if err := os.WriteFile(listPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	spec := forgefile.SystemPackages{Variant: forgefile.VariantFull, File: "packages.txt"}
	browser := forgefile.Browser{Strategy: forgefile.StrategyLibrary, Engine: forgefile.EngineChromium}

	set, err := LoadPackageSet(spec, browser, dir)
	if err != nil {
		t.Fatalf("LoadPackageSet() error = %v", err)
	}

	want := []string{"libfoo1", "libbar2"}
	if !slices.Equal(set.Packages, want) {
		t.Errorf("Packages = %v, want %v", set.Packages, want)
	}
	if set.FromFile != listPath {
		t.Errorf("FromFile = %q, want %q", set.FromFile, listPath)
	}
}

func TestLoadPackageSetMissingFile(t *testing.T) {
	spec := forgefile.SystemPackages{Variant: forgefile.VariantFull, File: "nope.txt"}
	browser := forgefile.Browser{Strategy: forgefile.StrategyLibrary, Engine: forgefile.EngineChromium}

	if _, err := LoadPackageSet(spec, browser, t.TempDir()); err == nil {
		t.Fatal("expected error for missing package list file")
	}
}

func TestPackageSetContentHashDeterministic(t *testing.T) {
	spec := forgefile.SystemPackages{Variant: forgefile.VariantFull}
	browser := forgefile.Browser{Strategy: forgefile.StrategyLibrary, Engine: forgefile.EngineChromium}

	a, err := LoadPackageSet(spec, browser, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	b, err := LoadPackageSet(spec, browser, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if a.ContentHash() != b.ContentHash() {
		t.Error("identical package sets must produce identical hashes")
	}

	fonts, err := LoadPackageSet(forgefile.SystemPackages{Variant: forgefile.VariantFonts}, browser, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if a.ContentHash() == fonts.ContentHash() {
		t.Error("different package sets must produce different hashes")
	}
}
