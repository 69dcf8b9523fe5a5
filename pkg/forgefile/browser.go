// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	"errors"
	"fmt"
)

const (
	// StrategyLibrary lets the automation library download and manage its own
	// browser binary, optionally also resolving its transitive OS dependencies.
	StrategyLibrary BrowserStrategy = "library"
	// StrategyOS installs the browser binary through the OS package manager
	// and points the automation library at the existing binary.
	StrategyOS BrowserStrategy = "os"

	// EngineChromium is the Chromium browser engine.
	EngineChromium BrowserEngine = "chromium"
	// EngineFirefox is the Firefox browser engine.
	EngineFirefox BrowserEngine = "firefox"
	// EngineWebKit is the WebKit browser engine.
	EngineWebKit BrowserEngine = "webkit"
)

var (
	// ErrInvalidBrowserStrategy is the sentinel error wrapped by InvalidBrowserStrategyError.
	ErrInvalidBrowserStrategy = errors.New("invalid browser strategy")
	// ErrInvalidBrowserEngine is the sentinel error wrapped by InvalidBrowserEngineError.
	ErrInvalidBrowserEngine = errors.New("invalid browser engine")
	// ErrDualBrowserInstall is the sentinel error wrapped by DualInstallError.
	ErrDualBrowserInstall = errors.New("conflicting browser install strategies")

	// osBrowserPackages maps engines to the Debian package providing the
	// browser binary, and osBrowserPaths to the installed binary path. Only
	// engines with an entry support the OS-managed strategy.
	osBrowserPackages = map[BrowserEngine]string{
		EngineChromium: "chromium",
		EngineFirefox:  "firefox-esr",
	}
	osBrowserPaths = map[BrowserEngine]string{
		EngineChromium: "/usr/bin/chromium",
		EngineFirefox:  "/usr/bin/firefox-esr",
	}
)

type (
	// BrowserStrategy is the tagged variant selecting how the browser binary is
	// sourced. It is chosen once, when the forgefile is written, and never switched
	// at runtime. Consumers must handle both variants exhaustively.
	BrowserStrategy string

	// BrowserEngine names the headless browser engine to install.
	BrowserEngine string

	// InvalidBrowserStrategyError is returned when a BrowserStrategy is not one
	// of the defined strategies.
	InvalidBrowserStrategyError struct {
		Value BrowserStrategy
	}

	// InvalidBrowserEngineError is returned when a BrowserEngine is not one of
	// the defined engines, or the engine does not support the chosen strategy.
	InvalidBrowserEngineError struct {
		Value    BrowserEngine
		Strategy BrowserStrategy
	}

	// DualInstallError is returned when a forgefile selects both the library-managed
	// and the OS-managed install path, which would leave two divergent browser
	// binaries in the image and make runtime browser selection nondeterministic.
	DualInstallError struct {
		Strategy BrowserStrategy
		Variant  PackageVariant
		WithDeps bool
	}

	// Browser declares the install strategy inputs for stage 4 of the pipeline.
	Browser struct {
		// Strategy selects library-managed or OS-managed install.
		Strategy BrowserStrategy `json:"strategy"`
		// Engine is the browser engine to install. Default: chromium.
		Engine BrowserEngine `json:"engine"`
		// WithDeps asks the library installer to also resolve transitive OS
		// dependencies. This duplicates the system package stage's work and can
		// install a second, divergent library set; it is an explicit opt-in.
		// Only meaningful with StrategyLibrary.
		WithDeps bool `json:"withDeps"`
	}
)

// Error implements the error interface.
func (e *InvalidBrowserStrategyError) Error() string {
	return fmt.Sprintf("invalid browser strategy %q (valid: library, os)", e.Value)
}

// Unwrap returns ErrInvalidBrowserStrategy so callers can use errors.Is for programmatic detection.
func (e *InvalidBrowserStrategyError) Unwrap() error { return ErrInvalidBrowserStrategy }

// Error implements the error interface.
func (e *InvalidBrowserEngineError) Error() string {
	if e.Strategy != "" {
		return fmt.Sprintf("browser engine %q does not support the %s strategy", e.Value, e.Strategy)
	}
	return fmt.Sprintf("invalid browser engine %q (valid: chromium, firefox, webkit)", e.Value)
}

// Unwrap returns ErrInvalidBrowserEngine so callers can use errors.Is for programmatic detection.
func (e *InvalidBrowserEngineError) Unwrap() error { return ErrInvalidBrowserEngine }

// Error implements the error interface.
func (e *DualInstallError) Error() string {
	if e.WithDeps {
		return fmt.Sprintf(
			"conflicting browser install: strategy %q with withDeps cannot be combined with package variant %q",
			e.Strategy, e.Variant)
	}
	return fmt.Sprintf(
		"conflicting browser install: strategy %q would install a second browser next to the one provided by package variant %q",
		e.Strategy, e.Variant)
}

// Unwrap returns ErrDualBrowserInstall so callers can use errors.Is for programmatic detection.
func (e *DualInstallError) Unwrap() error { return ErrDualBrowserInstall }

// String returns the string representation of the BrowserStrategy.
func (s BrowserStrategy) String() string { return string(s) }

// Validate returns an error if the BrowserStrategy is not one of the defined strategies.
func (s BrowserStrategy) Validate() error {
	switch s {
	case StrategyLibrary, StrategyOS:
		return nil
	default:
		return &InvalidBrowserStrategyError{Value: s}
	}
}

// String returns the string representation of the BrowserEngine.
func (e BrowserEngine) String() string { return string(e) }

// Validate returns an error if the BrowserEngine is not one of the defined engines.
func (e BrowserEngine) Validate() error {
	switch e {
	case EngineChromium, EngineFirefox, EngineWebKit:
		return nil
	default:
		return &InvalidBrowserEngineError{Value: e}
	}
}

// OSPackage returns the OS package providing this engine's browser binary.
// The second return is false when the engine has no OS-managed package.
func (e BrowserEngine) OSPackage() (string, bool) {
	pkg, ok := osBrowserPackages[e]
	return pkg, ok
}

// OSBinaryPath returns the path of the OS-installed browser binary.
// The second return is false when the engine has no OS-managed package.
func (e BrowserEngine) OSBinaryPath() (string, bool) {
	path, ok := osBrowserPaths[e]
	return path, ok
}

// Validate returns an error if any field of the Browser is invalid or the
// combination of strategy and engine is unsupported.
func (b Browser) Validate() error {
	var errs []error
	if err := b.Strategy.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := b.Engine.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if b.Strategy == StrategyOS {
		if _, ok := b.Engine.OSPackage(); !ok {
			return &InvalidBrowserEngineError{Value: b.Engine, Strategy: b.Strategy}
		}
	}
	return nil
}

// CheckConflict enforces the single-binary invariant against the system
// package variant: mixing the library-managed install with an OS-installed
// browser package (or vice versa) is a configuration conflict, flagged here
// rather than silently tolerated.
func (b Browser) CheckConflict(variant PackageVariant) error {
	switch b.Strategy {
	case StrategyLibrary:
		if variant.IncludesBrowser() {
			return &DualInstallError{Strategy: b.Strategy, Variant: variant, WithDeps: b.WithDeps}
		}
	case StrategyOS:
		if !variant.IncludesBrowser() {
			return fmt.Errorf("browser strategy %q requires package variant %q to provide the browser binary",
				b.Strategy, VariantOSBrowser)
		}
		if b.WithDeps {
			// withDeps would pull the library's own dependency set on top of
			// the OS-managed one.
			return &DualInstallError{Strategy: b.Strategy, Variant: variant, WithDeps: true}
		}
	default:
		return &InvalidBrowserStrategyError{Value: b.Strategy}
	}
	return nil
}
