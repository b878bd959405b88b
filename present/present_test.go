package present

import (
	"strings"
	"testing"

	"github.com/frankentui/frankentui/buffer"
	"github.com/frankentui/frankentui/cell"
	"github.com/frankentui/frankentui/diff"
	"github.com/frankentui/frankentui/grapheme"
	"github.com/frankentui/frankentui/termcap"
)

func trueColorCaps() termcap.Capabilities {
	return termcap.Capabilities{ColorDepth: termcap.ColorTrueColor, SyncOutput: true, OSC8: true}
}

func TestPresentEmptyRunsWritesNothing(t *testing.T) {
	p := New()
	buf := buffer.New(4, 1, cell.Blank)
	pool := grapheme.New()
	frame := buffer.NewFrame(buf, pool)

	var out strings.Builder
	if err := p.Present(&out, buf, pool, nil, frame.Links, trueColorCaps()); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output for zero runs, got %q", out.String())
	}
}

func TestPresentWritesGlyphAndMovesCursor(t *testing.T) {
	p := New()
	buf := buffer.New(4, 1, cell.Blank)
	buf.PutCell(1, 0, cell.NewScalar('Z', cell.RGB(255, 0, 0), 0, 0))
	pool := grapheme.New()
	frame := buffer.NewFrame(buf, pool)

	var out strings.Builder
	err := p.Present(&out, buf, pool, []diff.Run{{Y: 0, X0: 1, X1: 2}}, frame.Links, trueColorCaps())
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "\x1b[1;2H") {
		t.Fatalf("expected cursor move to row 1 col 2, got %q", got)
	}
	if !strings.Contains(got, "Z") {
		t.Fatalf("expected glyph Z in output, got %q", got)
	}
}

func TestPresentSkipsRedundantCursorMove(t *testing.T) {
	p := New()
	buf := buffer.New(4, 1, cell.Blank)
	buf.PutCell(0, 0, cell.NewScalar('A', 0, 0, 0))
	buf.PutCell(1, 0, cell.NewScalar('B', 0, 0, 0))
	pool := grapheme.New()
	frame := buffer.NewFrame(buf, pool)

	var out strings.Builder
	err := p.Present(&out, buf, pool, []diff.Run{{Y: 0, X0: 0, X1: 2}}, frame.Links, trueColorCaps())
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	if strings.Count(out.String(), "\x1b[1;1H") != 1 {
		t.Fatalf("expected exactly one cursor move for a contiguous run, got %q", out.String())
	}
}

func TestPresentSkipsRedundantStyle(t *testing.T) {
	p := New()
	buf := buffer.New(4, 1, cell.Blank)
	red := cell.RGB(255, 0, 0)
	buf.PutCell(0, 0, cell.NewScalar('A', red, 0, 0))
	buf.PutCell(1, 0, cell.NewScalar('B', red, 0, 0))
	pool := grapheme.New()
	frame := buffer.NewFrame(buf, pool)

	var out strings.Builder
	err := p.Present(&out, buf, pool, []diff.Run{{Y: 0, X0: 0, X1: 2}}, frame.Links, trueColorCaps())
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	if strings.Count(out.String(), "\x1b[0m") != 1 {
		t.Fatalf("expected a single style reset for two cells sharing a style, got %q", out.String())
	}
}

func TestPresentEmitsHyperlinkAndClosesIt(t *testing.T) {
	p := New()
	buf := buffer.New(4, 1, cell.Blank)
	pool := grapheme.New()
	frame := buffer.NewFrame(buf, pool)

	id := frame.Links.Register("https://example.com")
	buf.PutCell(0, 0, cell.NewScalar('L', 0, 0, cell.NewAttrs(0, uint32(id))))

	var out strings.Builder
	err := p.Present(&out, buf, pool, []diff.Run{{Y: 0, X0: 0, X1: 1}}, frame.Links, trueColorCaps())
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "\x1b]8;;https://example.com\x1b\\") {
		t.Fatalf("expected hyperlink open sequence, got %q", got)
	}
	if !strings.Contains(got, "\x1b]8;;\x1b\\") {
		t.Fatalf("expected hyperlink close sequence at end of run, got %q", got)
	}
}

func TestPresentSkipsHyperlinkWithoutOSC8Capability(t *testing.T) {
	p := New()
	buf := buffer.New(4, 1, cell.Blank)
	pool := grapheme.New()
	frame := buffer.NewFrame(buf, pool)

	id := frame.Links.Register("https://example.com")
	buf.PutCell(0, 0, cell.NewScalar('L', 0, 0, cell.NewAttrs(0, uint32(id))))

	caps := trueColorCaps()
	caps.OSC8 = false

	var out strings.Builder
	err := p.Present(&out, buf, pool, []diff.Run{{Y: 0, X0: 0, X1: 1}}, frame.Links, caps)
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	if strings.Contains(out.String(), "\x1b]8;;") {
		t.Fatalf("expected no OSC 8 sequence when caps.OSC8 is false, got %q", out.String())
	}
}

func TestPresentWrapsSyncOutputBrackets(t *testing.T) {
	p := New()
	buf := buffer.New(4, 1, cell.Blank)
	buf.PutCell(0, 0, cell.NewScalar('X', 0, 0, 0))
	pool := grapheme.New()
	frame := buffer.NewFrame(buf, pool)

	var out strings.Builder
	err := p.Present(&out, buf, pool, []diff.Run{{Y: 0, X0: 0, X1: 1}}, frame.Links, trueColorCaps())
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "\x1b[?2026h") || !strings.HasSuffix(got, "\x1b[?2026l") {
		t.Fatalf("expected synchronized-output brackets around the whole write, got %q", got)
	}
}

func TestInvalidateForcesFreshPreamble(t *testing.T) {
	p := New()
	buf := buffer.New(4, 1, cell.Blank)
	buf.PutCell(0, 0, cell.NewScalar('X', 0, 0, 0))
	pool := grapheme.New()
	frame := buffer.NewFrame(buf, pool)
	run := []diff.Run{{Y: 0, X0: 0, X1: 1}}

	var first strings.Builder
	if err := p.Present(&first, buf, pool, run, frame.Links, trueColorCaps()); err != nil {
		t.Fatalf("first Present: %v", err)
	}

	p.Invalidate()

	var second strings.Builder
	if err := p.Present(&second, buf, pool, run, frame.Links, trueColorCaps()); err != nil {
		t.Fatalf("second Present: %v", err)
	}
	if !strings.Contains(second.String(), "\x1b[1;1H") {
		t.Fatalf("expected Invalidate to force a fresh cursor move, got %q", second.String())
	}
}

func TestSetPaletteChangesANSI16DowngradeTarget(t *testing.T) {
	ansi16Caps := termcap.Capabilities{ColorDepth: termcap.ColorANSI16}

	buf := buffer.New(4, 1, cell.Blank)
	buf.PutCell(0, 0, cell.NewScalar('X', cell.RGB(10, 20, 30), cell.Default, cell.NoAttrs))
	pool := grapheme.New()
	frame := buffer.NewFrame(buf, pool)
	run := []diff.Run{{Y: 0, X0: 0, X1: 1}}

	var custom [16]cell.PackedColor
	custom[9] = cell.RGB(10, 20, 30)

	p := New()
	p.SetPalette(custom)

	var out strings.Builder
	if err := p.Present(&out, buf, pool, run, frame.Links, ansi16Caps); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if !strings.Contains(out.String(), "38;5;9") {
		t.Fatalf("expected the custom palette's exact-match slot 9 to be chosen, got %q", out.String())
	}
}

func TestSetRowOffsetShiftsCursorAddressing(t *testing.T) {
	p := New()
	p.SetRowOffset(5)

	buf := buffer.New(4, 1, cell.Blank)
	buf.PutCell(0, 0, cell.NewScalar('X', 0, 0, 0))
	pool := grapheme.New()
	frame := buffer.NewFrame(buf, pool)

	var out strings.Builder
	if err := p.Present(&out, buf, pool, []diff.Run{{Y: 0, X0: 0, X1: 1}}, frame.Links, trueColorCaps()); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if !strings.Contains(out.String(), "\x1b[6;1H") {
		t.Fatalf("expected buf row 0 to land on terminal row 6 with a row offset of 5, got %q", out.String())
	}
}

func TestMonoCapsEmitNoColorSGR(t *testing.T) {
	monoCaps := termcap.Capabilities{ColorDepth: termcap.ColorMono}

	p := New()
	buf := buffer.New(4, 1, cell.Blank)
	buf.PutCell(0, 0, cell.NewScalar('X', cell.RGB(200, 30, 30), cell.RGB(10, 10, 10), cell.NoAttrs))
	pool := grapheme.New()
	frame := buffer.NewFrame(buf, pool)

	var out strings.Builder
	if err := p.Present(&out, buf, pool, []diff.Run{{Y: 0, X0: 0, X1: 1}}, frame.Links, monoCaps); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if strings.Contains(out.String(), "38;") || strings.Contains(out.String(), "48;") {
		t.Fatalf("expected no fg/bg SGR under ColorMono, got %q", out.String())
	}
	if !strings.Contains(out.String(), "X") {
		t.Fatalf("expected the glyph itself to still be written, got %q", out.String())
	}
}

func TestNearestIndexedMatchesFarColorInsteadOfFallingBackToSlotZero(t *testing.T) {
	ansi16Caps := termcap.Capabilities{ColorDepth: termcap.ColorANSI16}

	// A mid-brightness green has no exact palette slot and sits well past
	// the old bestDist=4.0 seed's threshold from every candidate's Lab
	// distance; slot 10 (bright green) is its nearest neighbor and must
	// win on distance, not slot 0 (black) by default-value fallthrough.
	buf := buffer.New(4, 1, cell.Blank)
	buf.PutCell(0, 0, cell.NewScalar('X', cell.RGB(0, 200, 0), cell.Default, cell.NoAttrs))
	pool := grapheme.New()
	frame := buffer.NewFrame(buf, pool)
	run := []diff.Run{{Y: 0, X0: 0, X1: 1}}

	p := New()

	var out strings.Builder
	if err := p.Present(&out, buf, pool, run, frame.Links, ansi16Caps); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if strings.Contains(out.String(), "38;5;0m") {
		t.Fatalf("expected a color with no exact match to not collapse to palette slot 0, got %q", out.String())
	}
	if !strings.Contains(out.String(), "38;5;10") {
		t.Fatalf("expected the nearest slot (10, bright green) to be chosen, got %q", out.String())
	}
}

func TestSyncOutputSuppressedUnderMultiplexer(t *testing.T) {
	caps := termcap.Capabilities{ColorDepth: termcap.ColorTrueColor, SyncOutput: true, RunningUnderMultiplexer: true}

	p := New()
	buf := buffer.New(4, 1, cell.Blank)
	buf.PutCell(0, 0, cell.NewScalar('X', 0, 0, 0))
	pool := grapheme.New()
	frame := buffer.NewFrame(buf, pool)

	var out strings.Builder
	if err := p.Present(&out, buf, pool, []diff.Run{{Y: 0, X0: 0, X1: 1}}, frame.Links, caps); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if strings.Contains(out.String(), "?2026") {
		t.Fatalf("expected synchronized-output brackets to be suppressed under a detected multiplexer, got %q", out.String())
	}
}
