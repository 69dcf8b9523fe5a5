// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	"errors"
	"fmt"
)

const (
	// VariantFull is the complete desktop-library set: rendering, font, audio,
	// GTK, NSS, and font-rasterization stacks plus certificate roots.
	VariantFull PackageVariant = "full"
	// VariantFonts is the font/locale-hardened minimal set.
	VariantFonts PackageVariant = "fonts"
	// VariantOSBrowser is the full set plus the browser package itself,
	// pre-installed via the OS package manager.
	VariantOSBrowser PackageVariant = "os-browser"
)

// ErrInvalidPackageVariant is the sentinel error wrapped by InvalidPackageVariantError.
var ErrInvalidPackageVariant = errors.New("invalid package variant")

type (
	// PackageVariant selects which built-in system package set satisfies the
	// browser engine's dynamic-library requirements. Exactly one variant is
	// active per image.
	PackageVariant string

	// InvalidPackageVariantError is returned when a PackageVariant is not one
	// of the defined variants.
	InvalidPackageVariantError struct {
		Value PackageVariant
	}

	// SystemPackages declares the OS package inputs for stage 2 of the pipeline.
	SystemPackages struct {
		// Variant selects a built-in package set.
		Variant PackageVariant `json:"variant"`
		// File optionally overrides the built-in set with a plain-text package
		// list (one package per line, '#' comments).
		File string `json:"file,omitempty"`
	}
)

// Error implements the error interface.
func (e *InvalidPackageVariantError) Error() string {
	return fmt.Sprintf("invalid package variant %q (valid: full, fonts, os-browser)", e.Value)
}

// Unwrap returns ErrInvalidPackageVariant so callers can use errors.Is for programmatic detection.
func (e *InvalidPackageVariantError) Unwrap() error { return ErrInvalidPackageVariant }

// String returns the string representation of the PackageVariant.
func (v PackageVariant) String() string { return string(v) }

// Validate returns an error if the PackageVariant is not one of the defined variants.
func (v PackageVariant) Validate() error {
	switch v {
	case VariantFull, VariantFonts, VariantOSBrowser:
		return nil
	default:
		return &InvalidPackageVariantError{Value: v}
	}
}

// IncludesBrowser reports whether this variant installs the browser binary
// itself through the OS package manager.
func (v PackageVariant) IncludesBrowser() bool {
	return v == VariantOSBrowser
}

// Validate returns an error if any field of the SystemPackages is invalid.
func (p SystemPackages) Validate() error {
	return p.Variant.Validate()
}
