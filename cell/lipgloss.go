package cell

import "image/color"

// FromLipgloss converts any image/color.Color (including charm.land's
// lipgloss.Color and lipgloss.TerminalColor implementations, which satisfy
// color.Color) into a PackedColor, so callers can keep writing
// lipgloss.Color("#ff00ff") literals without this package depending on
// lipgloss's styling engine.
func FromLipgloss(c color.Color) PackedColor {
	if c == nil {
		return Default
	}
	r, g, b, a := c.RGBA()
	// color.Color returns 16-bit premultiplied-alpha components; downshift
	// to 8-bit and undo premultiplication before packing as straight alpha.
	if a == 0 {
		return Default
	}
	r8 := uint8(unpremultiply(r, a))
	g8 := uint8(unpremultiply(g, a))
	b8 := uint8(unpremultiply(b, a))
	a8 := uint8(a >> 8)
	return RGBA(r8, g8, b8, a8)
}

func unpremultiply(c, a uint32) uint32 {
	v := (c * 0xff) / a
	if v > 0xff {
		v = 0xff
	}
	return v
}
