package theme

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	tint "github.com/lrstanley/bubbletint/v2"
)

// ThemesDir returns the path to the custom themes directory, creating
// its parent if it doesn't exist yet.
func ThemesDir() (string, error) {
	keepFile, err := xdg.ConfigFile("frankentui/themes/.keep")
	if err != nil {
		return "", fmt.Errorf("theme: resolve themes directory: %w", err)
	}
	return filepath.Dir(keepFile), nil
}

// LoadCustomThemes registers every *.json file in dir as a bubbletint
// theme, returning the IDs that loaded successfully. A malformed file is
// skipped rather than failing the whole load.
func LoadCustomThemes(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("theme: read %s: %w", dir, err)
	}

	if tint.DefaultRegistry == nil {
		tint.NewDefaultRegistry()
	}

	var loaded []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		t, err := loadCustomThemeFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		tint.Register(t)
		loaded = append(loaded, t.ID)
	}
	return loaded, nil
}

func loadCustomThemeFile(path string) (*tint.Tint, error) {
	// #nosec G304 - path is enumerated from the themes directory, not user input directly.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("theme: read %s: %w", path, err)
	}

	var t tint.Tint
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("theme: parse %s: %w", path, err)
	}

	if t.ID == "" {
		base := filepath.Base(path)
		t.ID = strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	}
	if t.ID == "" {
		return nil, fmt.Errorf("theme: %s has no id", path)
	}
	if t.DisplayName == "" {
		t.DisplayName = t.ID
	}
	fillDefaults(&t)
	return &t, nil
}

func fillDefaults(t *tint.Tint) {
	if t.Fg == nil {
		t.Fg = tint.FromHex("#e5e5e5")
	}
	if t.Bg == nil {
		t.Bg = tint.FromHex("#000000")
	}
	if t.Cursor == nil {
		t.Cursor = copyColor(t.Fg)
	}
	if t.Black == nil {
		t.Black = tint.FromHex("#000000")
	}
	if t.Red == nil {
		t.Red = tint.FromHex("#cd0000")
	}
	if t.Green == nil {
		t.Green = tint.FromHex("#00cd00")
	}
	if t.Yellow == nil {
		t.Yellow = tint.FromHex("#cdcd00")
	}
	if t.Blue == nil {
		t.Blue = tint.FromHex("#0000ee")
	}
	if t.Purple == nil {
		t.Purple = tint.FromHex("#cd00cd")
	}
	if t.Cyan == nil {
		t.Cyan = tint.FromHex("#00cdcd")
	}
	if t.White == nil {
		t.White = tint.FromHex("#e5e5e5")
	}
	if t.BrightBlack == nil {
		t.BrightBlack = copyColor(t.Black)
	}
	if t.BrightRed == nil {
		t.BrightRed = copyColor(t.Red)
	}
	if t.BrightGreen == nil {
		t.BrightGreen = copyColor(t.Green)
	}
	if t.BrightYellow == nil {
		t.BrightYellow = copyColor(t.Yellow)
	}
	if t.BrightBlue == nil {
		t.BrightBlue = copyColor(t.Blue)
	}
	if t.BrightPurple == nil {
		t.BrightPurple = copyColor(t.Purple)
	}
	if t.BrightCyan == nil {
		t.BrightCyan = copyColor(t.Cyan)
	}
	if t.BrightWhite == nil {
		t.BrightWhite = copyColor(t.White)
	}
}

func copyColor(c *tint.Color) *tint.Color {
	if c == nil {
		return nil
	}
	dup := *c
	return &dup
}
