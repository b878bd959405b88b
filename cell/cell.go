package cell

import "github.com/frankentui/frankentui/grapheme"

// content bit layout:
//   bit31       tag: 0 = raw Unicode scalar in bits 20..0, 1 = grapheme-pool reference
//   bits30..24  (tag=1 only) display width, 1 or 2
//   bits23..0   (tag=1 only) pool slot index
const (
	contentTagBit    = 1 << 31
	poolIndexMask    = 0x00FF_FFFF
	poolWidthShift   = 24
	poolWidthMask    = 0x7F
	continuationTail = poolIndexMask // reserved index: this is a wide-glyph continuation cell
)

// Continuation is the content value written into the second column of a
// wide (display-width-2) glyph. It carries no glyph of its own; the
// presenter emits nothing for it and advances the cursor implicitly.
const Continuation uint32 = contentTagBit | continuationTail

// Cell is the fixed-size grid unit: one glyph slot plus its foreground,
// background, and packed attributes/link id.
//
// Two cells are bit-equal exactly when all four words match; this must
// stay a plain field-wise comparison (the compiler emits a branchless AND
// of four equality tests for a struct compare), since it is the dominant
// operation on the diff hot path.
type Cell struct {
	content uint32
	Fg      PackedColor
	Bg      PackedColor
	Attrs   CellAttrs
}

// Blank is the default fill cell: a space, default colors, no attributes.
var Blank = Cell{content: uint32(' ')}

// NewScalar builds a cell holding a single Unicode scalar value.
func NewScalar(r rune, fg, bg PackedColor, attrs CellAttrs) Cell {
	return Cell{content: uint32(r) &^ contentTagBit, Fg: fg, Bg: bg, Attrs: attrs}
}

// NewPooled builds a cell referencing a grapheme-pool slot.
func NewPooled(id grapheme.ID, fg, bg PackedColor, attrs CellAttrs) Cell {
	idx := uint32(id.Index()) & poolIndexMask
	width := uint32(id.Width()) & poolWidthMask
	return Cell{content: contentTagBit | (width << poolWidthShift) | idx, Fg: fg, Bg: bg, Attrs: attrs}
}

// NewContinuation builds the distinguished continuation marker cell that
// occupies the second column of a wide glyph, carrying the same style so a
// later single-column overwrite of just the lead column still renders
// sanely if the continuation is read directly.
func NewContinuation(fg, bg PackedColor, attrs CellAttrs) Cell {
	return Cell{content: Continuation, Fg: fg, Bg: bg, Attrs: attrs}
}

// IsContinuation reports whether this cell is a wide-glyph continuation
// marker.
func (c Cell) IsContinuation() bool { return c.content == Continuation }

// IsPooled reports whether the content is a grapheme-pool reference.
func (c Cell) IsPooled() bool { return c.content&contentTagBit != 0 && !c.IsContinuation() }

// Rune returns the scalar value for a non-pooled, non-continuation cell.
// Callers must check IsPooled/IsContinuation first.
func (c Cell) Rune() rune { return rune(c.content &^ contentTagBit) }

// PoolID returns the grapheme-pool id for a pooled cell. Callers must
// check IsPooled first.
func (c Cell) PoolID() grapheme.ID {
	idx := c.content & poolIndexMask
	width := (c.content >> poolWidthShift) & poolWidthMask
	return grapheme.NewID(idx, uint8(width))
}

// BitEqual reports whether two cells are bit-equal: all four 32-bit words
// match. This is the branchless equality used by the diff engine; it is
// exactly what Go's == does for this struct, spelled out for clarity at
// the call sites that care about the invariant.
func BitEqual(a, b Cell) bool {
	return a.content == b.content && a.Fg == b.Fg && a.Bg == b.Bg && a.Attrs == b.Attrs
}
