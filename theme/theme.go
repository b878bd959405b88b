// Package theme loads a bubbletint palette and projects it into the
// kernel's packed color format, so the presenter's 16-color downgrade
// path can target a themed palette instead of the standard xterm one.
package theme

import (
	"log"

	tint "github.com/lrstanley/bubbletint/v2"

	"github.com/frankentui/frankentui/cell"
)

var enabled bool

// Initialize registers the built-in bubbletint palette set plus any
// custom themes found in the XDG themes directory, and activates name.
// An empty name disables theming: Palette and the Fg/Bg/Cursor accessors
// fall back to the standard xterm defaults.
func Initialize(name string) error {
	if name == "" {
		enabled = false
		return nil
	}

	enabled = true
	tint.NewDefaultRegistry()

	if dir, err := ThemesDir(); err == nil {
		if _, err := LoadCustomThemes(dir); err != nil {
			log.Printf("theme: error loading custom themes: %v", err)
		}
	}

	if !tint.SetTintID(name) {
		tint.SetTintID("default")
	}
	return nil
}

// IsEnabled reports whether a theme is currently active.
func IsEnabled() bool { return enabled }

// current returns the active tint, or nil when theming is disabled.
func current() *tint.Tint {
	if !enabled {
		return nil
	}
	return tint.Current()
}

var defaultPalette = [16]cell.PackedColor{
	cell.RGB(0x00, 0x00, 0x00), cell.RGB(0xcd, 0x00, 0x00),
	cell.RGB(0x00, 0xcd, 0x00), cell.RGB(0xcd, 0xcd, 0x00),
	cell.RGB(0x00, 0x00, 0xee), cell.RGB(0xcd, 0x00, 0xcd),
	cell.RGB(0x00, 0xcd, 0xcd), cell.RGB(0xe5, 0xe5, 0xe5),
	cell.RGB(0x7f, 0x7f, 0x7f), cell.RGB(0xff, 0x00, 0x00),
	cell.RGB(0x00, 0xff, 0x00), cell.RGB(0xff, 0xff, 0x00),
	cell.RGB(0x5c, 0x5c, 0xff), cell.RGB(0xff, 0x00, 0xff),
	cell.RGB(0x00, 0xff, 0xff), cell.RGB(0xff, 0xff, 0xff),
}

// Palette returns the 16 ANSI colors of the active theme, or the
// standard xterm palette when no theme is active.
func Palette() [16]cell.PackedColor {
	t := current()
	if t == nil {
		return defaultPalette
	}
	colors := [16]*tint.Color{
		t.Black, t.Red, t.Green, t.Yellow,
		t.Blue, t.Purple, t.Cyan, t.White,
		t.BrightBlack, t.BrightRed, t.BrightGreen, t.BrightYellow,
		t.BrightBlue, t.BrightPurple, t.BrightCyan, t.BrightWhite,
	}
	var out [16]cell.PackedColor
	for i, c := range colors {
		out[i] = fromTintColor(c, defaultPalette[i])
	}
	return out
}

// Fg, Bg, and Cursor return the active theme's terminal foreground,
// background, and cursor colors, falling back to xterm defaults.
func Fg() cell.PackedColor {
	if t := current(); t != nil {
		return fromTintColor(t.Fg, cell.RGB(0xe5, 0xe5, 0xe5))
	}
	return cell.RGB(0xe5, 0xe5, 0xe5)
}

func Bg() cell.PackedColor {
	if t := current(); t != nil {
		return fromTintColor(t.Bg, cell.RGB(0x00, 0x00, 0x00))
	}
	return cell.RGB(0x00, 0x00, 0x00)
}

func Cursor() cell.PackedColor {
	if t := current(); t != nil {
		return fromTintColor(t.Cursor, cell.RGB(0x00, 0xff, 0x00))
	}
	return cell.RGB(0x00, 0xff, 0x00)
}

func fromTintColor(c *tint.Color, fallback cell.PackedColor) cell.PackedColor {
	if c == nil {
		return fallback
	}
	r, g, b, _ := c.RGBA()
	return cell.RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
