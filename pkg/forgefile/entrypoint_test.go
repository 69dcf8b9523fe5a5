// SPDX-License-Identifier: MPL-2.0

package forgefile

import (
	"errors"
	"testing"
)

func TestEntrypointArgv(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    []string
		wantErr bool
	}{
		{
			name:    "plain command",
			command: "python app.py",
			want:    []string{"python", "app.py"},
		},
		{
			name:    "quoted argument",
			command: `python app.py --config "my config.json"`,
			want:    []string{"python", "app.py", "--config", "my config.json"},
		},
		{
			name:    "single quotes",
			command: "python -m 'my.module'",
			want:    []string{"python", "-m", "my.module"},
		},
		{
			name:    "empty",
			command: "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			command: "   ",
			wantErr: true,
		},
		{
			name:    "pipeline rejected",
			command: "python app.py | tee log.txt",
			wantErr: true,
		},
		{
			name:    "redirect rejected",
			command: "python app.py > out.log",
			wantErr: true,
		},
		{
			name:    "two statements rejected",
			command: "cd /app; python app.py",
			wantErr: true,
		},
		{
			name:    "variable expansion rejected",
			command: "python $SCRIPT",
			wantErr: true,
		},
		{
			name:    "inline assignment rejected",
			command: "DEBUG=1 python app.py",
			wantErr: true,
		},
		{
			name:    "command substitution rejected",
			command: "python $(find_script)",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Entrypoint{Command: tt.command}.Argv()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEntrypoint) {
					t.Fatalf("Argv(%q) expected ErrInvalidEntrypoint, got %v", tt.command, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Argv(%q) error = %v", tt.command, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Argv(%q) = %v, want %v", tt.command, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Argv(%q)[%d] = %q, want %q", tt.command, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestProfileForgefile(t *testing.T) {
	tests := []struct {
		profile  Profile
		variant  PackageVariant
		strategy BrowserStrategy
		withDeps bool
	}{
		{ProfileDefault, VariantFull, StrategyLibrary, false},
		{ProfileFonts, VariantFonts, StrategyLibrary, true},
		{ProfileRailway, VariantOSBrowser, StrategyOS, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.profile), func(t *testing.T) {
			ff, err := tt.profile.Forgefile()
			if err != nil {
				t.Fatalf("Forgefile() error = %v", err)
			}
			if ff.Packages.Variant != tt.variant {
				t.Errorf("Variant = %q, want %q", ff.Packages.Variant, tt.variant)
			}
			if ff.Browser.Strategy != tt.strategy {
				t.Errorf("Strategy = %q, want %q", ff.Browser.Strategy, tt.strategy)
			}
			if ff.Browser.WithDeps != tt.withDeps {
				t.Errorf("WithDeps = %v, want %v", ff.Browser.WithDeps, tt.withDeps)
			}

			// Every preset must itself pass validation.
			if err := ff.Validate(); err != nil {
				t.Errorf("preset %q fails validation: %v", tt.profile, err)
			}
		})
	}
}

func TestProfileUnknown(t *testing.T) {
	_, err := Profile("staging").Forgefile()
	if !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
}
