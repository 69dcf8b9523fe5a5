// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	"errors"
	"fmt"
)

const (
	// ProfileDefault is the generic Docker deployment: full desktop-library
	// set, library-managed browser install.
	ProfileDefault Profile = "default"
	// ProfileFonts is the font/locale-hardened variant: minimal font package
	// set, library-managed install resolving its own OS dependencies.
	ProfileFonts Profile = "fonts"
	// ProfileRailway is the PaaS variant: browser installed via the OS package
	// manager, automation library pointed at the existing binary.
	ProfileRailway Profile = "railway"
)

// ErrUnknownProfile is the sentinel error wrapped by UnknownProfileError.
var ErrUnknownProfile = errors.New("unknown profile")

type (
	// Profile names a built-in deployment preset. Each preset corresponds to
	// one observed deployment target and fixes the package variant and browser
	// strategy combination known to work there.
	Profile string

	// UnknownProfileError is returned when a Profile is not one of the defined presets.
	UnknownProfileError struct {
		Value Profile
	}
)

// Error implements the error interface.
func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("unknown profile %q (valid: default, fonts, railway)", e.Value)
}

// Unwrap returns ErrUnknownProfile so callers can use errors.Is for programmatic detection.
func (e *UnknownProfileError) Unwrap() error { return ErrUnknownProfile }

// String returns the string representation of the Profile.
func (p Profile) String() string { return string(p) }

// Validate returns an error if the Profile is not one of the defined presets.
func (p Profile) Validate() error {
	switch p {
	case ProfileDefault, ProfileFonts, ProfileRailway:
		return nil
	default:
		return &UnknownProfileError{Value: p}
	}
}

// Forgefile returns the preset forgefile for this profile. The caller owns the
// result and typically adjusts Entrypoint and Dependencies before use.
func (p Profile) Forgefile() (*Forgefile, error) {
	base := &Forgefile{
		Runtime:      Runtime{Version: "3.11", Unbuffered: true},
		Dependencies: Dependencies{Manifest: "requirements.txt"},
		Entrypoint:   Entrypoint{Command: "python app.py"},
		Source:       ".",
	}

	switch p {
	case ProfileDefault:
		base.Packages = SystemPackages{Variant: VariantFull}
		base.Browser = Browser{Strategy: StrategyLibrary, Engine: EngineChromium}
	case ProfileFonts:
		base.Packages = SystemPackages{Variant: VariantFonts}
		base.Browser = Browser{Strategy: StrategyLibrary, Engine: EngineChromium, WithDeps: true}
	case ProfileRailway:
		base.Packages = SystemPackages{Variant: VariantOSBrowser}
		base.Browser = Browser{Strategy: StrategyOS, Engine: EngineChromium}
	default:
		return nil, &UnknownProfileError{Value: p}
	}

	return base, nil
}
