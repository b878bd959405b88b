// Package config loads and saves the kernel's on-disk settings from the
// XDG config directory, following the same load/validate/fill-defaults
// shape as larger terminal-app configs in the ecosystem.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

const configRelPath = "frankentui/config.toml"

// ScreenMode selects whether Start renders inline (sharing scrollback
// with the surrounding shell) or takes over the alternate screen.
type ScreenMode string

const (
	ScreenInline ScreenMode = "inline"
	ScreenAlt    ScreenMode = "alt"
)

// MousePolicy controls whether the session requests mouse tracking from
// the terminal on startup.
type MousePolicy string

const (
	// MouseAuto tracks the mouse only in alt-screen mode, since inline
	// mode shares the terminal with the surrounding shell and mouse
	// reporting there would break the shell's own selection/scroll.
	MouseAuto MousePolicy = "auto"
	MouseOn   MousePolicy = "always-on"
	MouseOff  MousePolicy = "always-off"
)

// SanitizationMode controls how much of what widgets log through the
// session's sanitized sink survives.
type SanitizationMode string

const (
	SanitizeStrict SanitizationMode = "strict"
	SanitizeRaw    SanitizationMode = "raw"
)

// KernelConfig is the on-disk settings surface: everything a demo binary
// needs to start a session without hardcoding choices the user might
// want to override.
type KernelConfig struct {
	Screen ScreenSettings `toml:"screen"`
	Theme  ThemeSettings  `toml:"theme"`
	Degrade DegradeSettings `toml:"degradation"`
}

// ScreenSettings governs Start's screen mode, mouse policy, and log
// sanitization.
type ScreenSettings struct {
	Mode         ScreenMode       `toml:"mode"`
	Mouse        MousePolicy      `toml:"mouse"`
	Sanitization SanitizationMode `toml:"sanitization"`
	// AnchorRow pins the top of the inline UI region to a fixed 1-indexed
	// terminal row. 0 selects the default: anchored to the bottom of the
	// terminal, recomputed from the session's current height on every
	// present.
	AnchorRow int `toml:"anchor_row"`
}

// ThemeSettings names the bubbletint palette to load, if any.
type ThemeSettings struct {
	Name string `toml:"name"`
}

// DegradeSettings sets the thresholds the demo harness uses to step down
// rendering fidelity under load.
type DegradeSettings struct {
	// FrameBudgetMillis is the wall-clock budget for one render+present
	// cycle before the harness starts shedding fidelity.
	FrameBudgetMillis int `toml:"frame_budget_millis"`
}

// Default returns the built-in configuration used when no config file
// exists yet.
func Default() *KernelConfig {
	return &KernelConfig{
		Screen: ScreenSettings{
			Mode:         ScreenInline,
			Mouse:        MouseAuto,
			Sanitization: SanitizeStrict,
			AnchorRow:    0,
		},
		Theme: ThemeSettings{Name: ""},
		Degrade: DegradeSettings{
			FrameBudgetMillis: 16,
		},
	}
}

// Path returns the config file's location without requiring that it
// exist yet.
func Path() (string, error) {
	if p, err := xdg.SearchConfigFile(configRelPath); err == nil {
		return p, nil
	}
	return xdg.ConfigFile(configRelPath)
}

// Load reads the config file from the XDG config directory, creating it
// with default settings on first run.
func Load() (*KernelConfig, error) {
	path, err := xdg.SearchConfigFile(configRelPath)
	if err != nil {
		return createDefault()
	}

	// #nosec G304 - path comes from XDG search over a fixed relative name.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	fillDefaults(cfg)
	return cfg, nil
}

// Save writes cfg to the XDG config directory, creating the parent
// directory if needed.
func Save(cfg *KernelConfig) error {
	path, err := xdg.ConfigFile(configRelPath)
	if err != nil {
		return fmt.Errorf("config: resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# frankentui kernel configuration\n")
	sb.WriteString("# location: " + path + "\n\n")
	sb.Write(data)

	if err := os.WriteFile(path, []byte(sb.String()), 0o640); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Reset overwrites the on-disk config with default settings.
func Reset() error {
	return Save(Default())
}

func createDefault() (*KernelConfig, error) {
	cfg := Default()
	if err := Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fillDefaults(cfg *KernelConfig) {
	def := Default()
	if cfg.Screen.Mode == "" {
		cfg.Screen.Mode = def.Screen.Mode
	}
	if cfg.Screen.Mouse == "" {
		cfg.Screen.Mouse = def.Screen.Mouse
	}
	if cfg.Screen.Sanitization == "" {
		cfg.Screen.Sanitization = def.Screen.Sanitization
	}
	if cfg.Degrade.FrameBudgetMillis <= 0 {
		cfg.Degrade.FrameBudgetMillis = def.Degrade.FrameBudgetMillis
	}
}
