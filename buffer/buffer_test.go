package buffer

import (
	"testing"

	"github.com/frankentui/frankentui/cell"
	"github.com/frankentui/frankentui/grapheme"
)

func TestNewFillsEveryCell(t *testing.T) {
	b := New(3, 2, cell.Blank)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if got := b.GetCell(x, y); !cell.BitEqual(got, cell.Blank) {
				t.Fatalf("GetCell(%d,%d) = %+v, want the fill cell", x, y, got)
			}
		}
	}
}

func TestGetCellOutOfRangeReturnsFill(t *testing.T) {
	b := New(2, 2, cell.Blank)
	if got := b.GetCell(-1, 0); !cell.BitEqual(got, cell.Blank) {
		t.Fatalf("out-of-range GetCell must return the fill cell")
	}
	if got := b.GetCell(5, 5); !cell.BitEqual(got, cell.Blank) {
		t.Fatalf("out-of-range GetCell must return the fill cell")
	}
}

func TestPutCellOutOfRangeIsClippedNotPanicking(t *testing.T) {
	b := New(2, 2, cell.Blank)
	b.PutCell(-1, 0, cell.NewScalar('x', cell.Default, cell.Default, cell.NoAttrs))
	b.PutCell(100, 100, cell.NewScalar('x', cell.Default, cell.Default, cell.NoAttrs))
	// No panic means the boundary rule held; also confirm nothing leaked in.
	if got := b.GetCell(0, 0); !cell.BitEqual(got, cell.Blank) {
		t.Fatalf("an out-of-range write must not affect any in-range cell")
	}
}

func TestPutCellRoundTrip(t *testing.T) {
	b := New(4, 4, cell.Blank)
	c := cell.NewScalar('Z', cell.RGB(1, 2, 3), cell.RGB(4, 5, 6), cell.NoAttrs)
	b.PutCell(1, 1, c)
	if got := b.GetCell(1, 1); !cell.BitEqual(got, c) {
		t.Fatalf("GetCell after PutCell = %+v, want %+v", got, c)
	}
}

func TestPutCellAtZeroOpacityIsNoop(t *testing.T) {
	b := New(2, 2, cell.Blank)
	b.PushOpacity(0)
	b.PutCell(0, 0, cell.NewScalar('x', cell.Default, cell.Default, cell.NoAttrs))
	b.PopOpacity()
	if got := b.GetCell(0, 0); !cell.BitEqual(got, cell.Blank) {
		t.Fatalf("a write at opacity 0 must be a no-op")
	}
}

func TestPutCellPartialOpacityBlendsBackgroundOnly(t *testing.T) {
	b := New(2, 2, cell.NewScalar(' ', cell.Default, cell.RGB(0, 0, 0), cell.NoAttrs))
	b.PushOpacity(0.5)
	b.PutCell(0, 0, cell.NewScalar('x', cell.RGB(9, 9, 9), cell.RGB(255, 255, 255), cell.NoAttrs))
	b.PopOpacity()

	got := b.GetCell(0, 0)
	if got.Rune() != 'x' {
		t.Fatalf("foreground glyph must replace outright even under partial opacity")
	}
	if got.Bg == cell.RGB(255, 255, 255) || got.Bg == cell.RGB(0, 0, 0) {
		t.Fatalf("background must blend toward the old value under partial opacity, got %#08x", uint32(got.Bg))
	}
}

func TestPushPopScissorClipsWrites(t *testing.T) {
	b := New(4, 4, cell.Blank)
	b.PushScissor(Rect{X: 0, Y: 0, W: 2, H: 2})
	b.PutCell(3, 3, cell.NewScalar('x', cell.Default, cell.Default, cell.NoAttrs))
	if got := b.GetCell(3, 3); !cell.BitEqual(got, cell.Blank) {
		t.Fatalf("a write outside the pushed scissor must be dropped")
	}
	b.PutCell(0, 0, cell.NewScalar('x', cell.Default, cell.Default, cell.NoAttrs))
	if got := b.GetCell(0, 0); got.Rune() != 'x' {
		t.Fatalf("a write inside the pushed scissor must succeed")
	}
	b.PopScissor()
	b.PutCell(3, 3, cell.NewScalar('y', cell.Default, cell.Default, cell.NoAttrs))
	if got := b.GetCell(3, 3); got.Rune() != 'y' {
		t.Fatalf("after PopScissor, the original clip must be restored")
	}
}

func TestPopScissorWithoutPushPanics(t *testing.T) {
	b := New(2, 2, cell.Blank)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected PopScissor to panic when the base scissor would be popped")
		}
	}()
	b.PopScissor()
}

func TestPopOpacityWithoutPushPanics(t *testing.T) {
	b := New(2, 2, cell.Blank)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected PopOpacity to panic when the base opacity would be popped")
		}
	}()
	b.PopOpacity()
}

func TestFillRectFillsWholeRect(t *testing.T) {
	b := New(4, 4, cell.Blank)
	fill := cell.NewScalar('#', cell.Default, cell.Default, cell.NoAttrs)
	b.FillRect(Rect{X: 0, Y: 0, W: 4, H: 4}, fill)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got := b.GetCell(x, y); got.Rune() != '#' {
				t.Fatalf("FillRect(%d,%d) left an unfilled cell", x, y)
			}
		}
	}
}

func TestPutGraphemeWideGlyphWritesContinuation(t *testing.T) {
	pool := grapheme.New()
	b := New(4, 1, cell.Blank)
	if err := b.PutGrapheme(pool, 0, 0, []byte("中"), cell.Default, cell.Default, cell.NoAttrs); err != nil {
		t.Fatalf("PutGrapheme: %v", err)
	}
	lead := b.GetCell(0, 0)
	if lead.IsContinuation() {
		t.Fatalf("the lead column of a wide glyph must not itself be a continuation cell")
	}
	cont := b.GetCell(1, 0)
	if !cont.IsContinuation() {
		t.Fatalf("expected the second column of a wide glyph to be a continuation cell")
	}
}

func TestPutGraphemeWideGlyphAtRightEdgeDegradesToReplacementChar(t *testing.T) {
	pool := grapheme.New()
	b := New(1, 1, cell.Blank)
	if err := b.PutGrapheme(pool, 0, 0, []byte("中"), cell.Default, cell.Default, cell.NoAttrs); err != nil {
		t.Fatalf("PutGrapheme: %v", err)
	}
	got := b.GetCell(0, 0)
	if got.Rune() != '�' {
		t.Fatalf("expected a wide glyph with no room for its continuation to degrade to U+FFFD, got %q", got.Rune())
	}
}

func TestRowReturnsUnderlyingSlice(t *testing.T) {
	b := New(3, 2, cell.Blank)
	b.PutCell(1, 1, cell.NewScalar('x', cell.Default, cell.Default, cell.NoAttrs))
	row := b.Row(1)
	if len(row) != 3 {
		t.Fatalf("Row(1) length = %d, want 3", len(row))
	}
	if row[1].Rune() != 'x' {
		t.Fatalf("Row(1)[1] = %q, want 'x'", row[1].Rune())
	}
}

func TestRowOutOfRangeReturnsNil(t *testing.T) {
	b := New(3, 2, cell.Blank)
	if row := b.Row(5); row != nil {
		t.Fatalf("expected Row on an out-of-range index to return nil")
	}
}
