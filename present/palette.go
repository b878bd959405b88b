package present

import "github.com/frankentui/frankentui/cell"

// ansi16Palette holds the standard 16-color xterm palette in slot order
// (0-7 normal, 8-15 bright), used as the nearest-neighbor search space
// when a terminal only advertises basic ANSI color support.
var ansi16Palette = [16]cell.PackedColor{
	cell.RGB(0x00, 0x00, 0x00), cell.RGB(0x80, 0x00, 0x00),
	cell.RGB(0x00, 0x80, 0x00), cell.RGB(0x80, 0x80, 0x00),
	cell.RGB(0x00, 0x00, 0x80), cell.RGB(0x80, 0x00, 0x80),
	cell.RGB(0x00, 0x80, 0x80), cell.RGB(0xc0, 0xc0, 0xc0),
	cell.RGB(0x80, 0x80, 0x80), cell.RGB(0xff, 0x00, 0x00),
	cell.RGB(0x00, 0xff, 0x00), cell.RGB(0xff, 0xff, 0x00),
	cell.RGB(0x00, 0x00, 0xff), cell.RGB(0xff, 0x00, 0xff),
	cell.RGB(0x00, 0xff, 0xff), cell.RGB(0xff, 0xff, 0xff),
}

// ansi256Palette holds xterm's 256-color cube: the 16 standard colors,
// the 6x6x6 color cube, and the 24-step grayscale ramp, generated the
// same way xterm itself derives it.
var ansi256Palette = func() [256]cell.PackedColor {
	var p [256]cell.PackedColor
	copy(p[:16], ansi16Palette[:])

	steps := [6]uint8{0, 95, 135, 175, 215, 255}
	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p[i] = cell.RGB(steps[r], steps[g], steps[b])
				i++
			}
		}
	}
	for gray := 0; gray < 24; gray++ {
		v := uint8(8 + gray*10)
		p[i] = cell.RGB(v, v, v)
		i++
	}
	return p
}()
