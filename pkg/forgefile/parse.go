// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	_ "embed"
	"fmt"
	"os"

	"browserforge/pkg/cueutil"
)

//go:embed forgefile_schema.cue
var forgefileSchema string

// Parse reads and parses a forgefile from the given path.
func Parse(path string) (*Forgefile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read forgefile at %s: %w", path, err)
	}
	return ParseBytes(data, path)
}

// ParseBytes parses forgefile content from bytes.
// Uses cueutil.ParseAndDecodeString for the 3-step CUE parsing flow:
// compile schema → compile user data → validate and decode.
func ParseBytes(data []byte, path string) (*Forgefile, error) {
	result, err := cueutil.ParseAndDecodeString[Forgefile](
		forgefileSchema,
		data,
		"#Forgefile",
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, err
	}

	ff := result.Value
	ff.FilePath = path

	if err := ff.Validate(); err != nil {
		return nil, err
	}

	return ff, nil
}
