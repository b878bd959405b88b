package buffer

import (
	"github.com/frankentui/frankentui/cell"
	"github.com/frankentui/frankentui/grapheme"
)

// Buffer is a row-major width x height grid of cells with immutable
// dimensions after construction. All writes go through PutCell or the
// Frame helpers built on top of it; out-of-range writes are silently
// clipped rather than panicking, matching spec.md's boundary rules.
type Buffer struct {
	width, height int
	cells         []cell.Cell
	fill          cell.Cell

	scissor []Rect
	opacity []float64
}

// New allocates a width x height buffer, every cell initialized to fill.
func New(width, height int, fill cell.Cell) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	b := &Buffer{
		width:  width,
		height: height,
		cells:  make([]cell.Cell, width*height),
		fill:   fill,
	}
	for i := range b.cells {
		b.cells[i] = fill
	}
	b.scissor = []Rect{{X: 0, Y: 0, W: width, H: height}}
	b.opacity = []float64{1.0}
	return b
}

func (b *Buffer) Width() int  { return b.width }
func (b *Buffer) Height() int { return b.height }

func (b *Buffer) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return 0, false
	}
	return y*b.width + x, true
}

// clip returns the current effective scissor rectangle (top of stack).
func (b *Buffer) clip() Rect {
	return b.scissor[len(b.scissor)-1]
}

// Opacity returns the current effective opacity (top of stack).
func (b *Buffer) Opacity() float64 {
	return b.opacity[len(b.opacity)-1]
}

// GetCell returns a copy of the cell at (x,y), or the fill cell if
// out-of-range.
func (b *Buffer) GetCell(x, y int) cell.Cell {
	idx, ok := b.index(x, y)
	if !ok {
		return b.fill
	}
	return b.cells[idx]
}

// PutCell writes c at (x,y), subject to the current scissor and opacity.
// Outside the clip, or at opacity 0, this is a no-op. At opacity < 1, the
// background is blended via Porter-Duff Over against the existing
// background; foreground and attributes always replace outright — a
// deliberate policy that partial opacity darkens backgrounds, not text.
func (b *Buffer) PutCell(x, y int, c cell.Cell) {
	if !b.clip().Contains(x, y) {
		return
	}
	idx, ok := b.index(x, y)
	if !ok {
		return
	}
	alpha := b.Opacity()
	if alpha <= 0 {
		return
	}
	if alpha >= 1 {
		b.cells[idx] = c
		return
	}
	old := b.cells[idx]
	blended := c
	blended.Bg = c.Bg.WithOpacity(alpha).Over(old.Bg)
	b.cells[idx] = blended
}

// PutGrapheme interns cluster into pool (if needed) and writes it at
// (x,y). A display-width-2 cluster also writes the continuation marker at
// (x+1,y). If that column is out of the buffer or outside the current
// clip, the whole write degrades to a width-1 replacement character
// rather than a wide glyph.
func (b *Buffer) PutGrapheme(pool *grapheme.Pool, x, y int, cluster []byte, fg, bg cell.PackedColor, attrs cell.CellAttrs) error {
	id, err := pool.Intern(cluster)
	if err != nil {
		return err
	}

	var lead cell.Cell
	if id.IsScalar() {
		lead = cell.NewScalar(rune(id.Index()), fg, bg, attrs)
	} else {
		lead = cell.NewPooled(id, fg, bg, attrs)
	}

	if id.Width() >= 2 {
		if !b.clip().Contains(x+1, y) {
			b.PutCell(x, y, cell.NewScalar('�', fg, bg, attrs))
			return nil
		}
		b.PutCell(x, y, lead)
		b.putContinuationRaw(x+1, y, fg, bg, attrs)
		return nil
	}

	b.PutCell(x, y, lead)
	return nil
}

// putContinuationRaw writes the continuation marker directly, bypassing
// PutGrapheme's interning (the marker isn't interned content).
func (b *Buffer) putContinuationRaw(x, y int, fg, bg cell.PackedColor, attrs cell.CellAttrs) {
	b.PutCell(x, y, cell.NewContinuation(fg, bg, attrs))
}

// FillRect fills rect (intersected with the current clip) with c,
// iterating row-wise.
func (b *Buffer) FillRect(rect Rect, c cell.Cell) {
	r := rect.Intersect(b.clip())
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			b.PutCell(x, y, c)
		}
	}
}

// PushScissor intersects the pushed rectangle with the current clip and
// pushes the result. Monotone: area never grows on push.
func (b *Buffer) PushScissor(r Rect) {
	b.scissor = append(b.scissor, b.clip().Intersect(r))
}

// PopScissor restores the previous clip rectangle. Panics if the base
// (construction-time) scissor would be popped, since that indicates a
// mismatched push/pop pair.
func (b *Buffer) PopScissor() {
	if len(b.scissor) <= 1 {
		panic("buffer: PopScissor called without a matching PushScissor")
	}
	b.scissor = b.scissor[:len(b.scissor)-1]
}

// PushOpacity multiplies the current opacity by a (clamped to [0,1]) and
// pushes the result.
func (b *Buffer) PushOpacity(a float64) {
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	b.opacity = append(b.opacity, b.Opacity()*a)
}

// PopOpacity restores the previous opacity. Panics on an unmatched pop.
func (b *Buffer) PopOpacity() {
	if len(b.opacity) <= 1 {
		panic("buffer: PopOpacity called without a matching PushOpacity")
	}
	b.opacity = b.opacity[:len(b.opacity)-1]
}

// Row returns a read-only slice of row y's cells, for fast row-equality
// checks in the diff engine. Returns nil for an out-of-range row.
func (b *Buffer) Row(y int) []cell.Cell {
	if y < 0 || y >= b.height {
		return nil
	}
	return b.cells[y*b.width : (y+1)*b.width]
}
