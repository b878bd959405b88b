// Package present turns a buffer and a set of diff runs into the ANSI
// byte stream a terminal actually receives, tracking just enough state
// (cursor position, active SGR, open hyperlink) to avoid re-emitting
// sequences the terminal is already in.
package present

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/frankentui/frankentui/buffer"
	"github.com/frankentui/frankentui/cell"
	"github.com/frankentui/frankentui/diff"
	"github.com/frankentui/frankentui/grapheme"
	"github.com/frankentui/frankentui/termcap"
)

// styleState is the SGR state the presenter believes the terminal holds,
// so Present only emits an SGR sequence when the new cell's style
// actually differs from what was last written.
type styleState struct {
	fg, bg cell.PackedColor
	attrs  cell.CellAttrs
	valid  bool
}

// Presenter tracks cursor position and style across successive Present
// calls on the same underlying writer. A Presenter must only ever drive
// one terminal at a time; it is not safe for concurrent use.
type Presenter struct {
	cursorX, cursorY int
	cursorValid      bool

	style    styleState
	linkID   uint16
	linkOpen bool

	palette16 [16]cell.PackedColor
	rowOffset int
}

// New returns a Presenter with no assumed cursor position or style, so
// the first Present call always emits a full positioning/style preamble.
// The 16-color downgrade target defaults to the standard xterm palette;
// use SetPalette to project onto a loaded theme instead.
func New() *Presenter {
	return &Presenter{palette16: ansi16Palette}
}

// SetPalette overrides the 16-color downgrade target, so cells intended
// for a truecolor terminal degrade to the colors of whatever theme is
// active rather than the standard xterm palette.
func (p *Presenter) SetPalette(palette [16]cell.PackedColor) {
	p.palette16 = palette
}

// SetRowOffset shifts every cursor-position sequence Present emits down
// by n terminal rows, so buf row 0 lands on terminal row n+1 instead of
// row 1. Alt-screen sessions leave this at 0, since the buffer already
// spans the whole screen; inline sessions set it to the anchored UI
// region's top row so Present's own diff-driven addressing lands inside
// that region rather than at the top of the terminal.
func (p *Presenter) SetRowOffset(n int) {
	p.rowOffset = n
}

// Invalidate forgets all tracked state, forcing the next Present call to
// re-establish cursor position and style from scratch. Call this after
// any write to the terminal Present did not itself produce (a resize
// banner, a raw passthrough write from an attached PTY).
func (p *Presenter) Invalidate() {
	palette, rowOffset := p.palette16, p.rowOffset
	*p = Presenter{palette16: palette, rowOffset: rowOffset}
}

// Present writes the byte sequence needed to bring the terminal from
// whatever the last Present call left it in to buf's contents at the
// given runs, using caps to decide which sequences are safe to emit.
// Synchronized-output brackets are suppressed when caps reports the
// session is running under a multiplexer that doesn't forward DEC 2026,
// since an unmatched or swallowed bracket there can hang the pane.
// With no runs (as when an unchanged buffer is diffed against the
// front buffer it matches) Present writes nothing at all, not even
// synchronized-output brackets. Passing the same non-empty runs again
// re-emits their glyphs and a cursor move back to each run's start.
func (p *Presenter) Present(w io.Writer, buf *buffer.Buffer, pool *grapheme.Pool, runs []diff.Run, links *buffer.HyperlinkRegistry, caps termcap.Capabilities) error {
	if len(runs) == 0 {
		return nil
	}

	sync := caps.SyncOutput && !caps.RunningUnderMultiplexer

	var out strings.Builder
	if sync {
		out.WriteString("\x1b[?2026h")
	}

	for _, run := range runs {
		p.presentRun(&out, buf, pool, run, links, caps)
	}

	if p.linkOpen {
		out.WriteString(oscHyperlink(""))
		p.linkOpen = false
	}
	if sync {
		out.WriteString("\x1b[?2026l")
	}

	if out.Len() == 0 {
		return nil
	}
	_, err := io.WriteString(w, out.String())
	return err
}

func (p *Presenter) presentRun(out *strings.Builder, buf *buffer.Buffer, pool *grapheme.Pool, run diff.Run, links *buffer.HyperlinkRegistry, caps termcap.Capabilities) {
	p.moveTo(out, run.X0, run.Y)

	for x := run.X0; x < run.X1; x++ {
		c := buf.GetCell(x, run.Y)
		if c.IsContinuation() {
			// The lead cell already advanced the cursor over this column;
			// nothing to draw, but the cursor tracking below still applies.
			p.cursorX = x + 1
			continue
		}

		p.applyLink(out, c, links, caps)
		p.applyStyle(out, c, caps)
		p.writeGlyph(out, pool, c)
		p.cursorX = x + 1
	}
}

// oscHyperlink builds an OSC 8 sequence; an empty uri closes the
// currently open link.
func oscHyperlink(uri string) string {
	return "\x1b]8;;" + uri + "\x1b\\"
}

// moveTo emits an absolute cursor-position sequence unless the tracked
// cursor is already there, in which case nothing is written.
func (p *Presenter) moveTo(out *strings.Builder, x, y int) {
	if p.cursorValid && p.cursorX == x && p.cursorY == y {
		return
	}
	fmt.Fprintf(out, "\x1b[%d;%dH", y+1+p.rowOffset, x+1)
	p.cursorX, p.cursorY, p.cursorValid = x, y, true
}

func (p *Presenter) applyLink(out *strings.Builder, c cell.Cell, links *buffer.HyperlinkRegistry, caps termcap.Capabilities) {
	if !caps.OSC8 {
		return
	}
	id := uint16(c.Attrs.LinkID())
	if id == p.linkID && p.linkOpen == (id != 0) {
		return
	}
	if id == 0 {
		if p.linkOpen {
			out.WriteString(oscHyperlink(""))
			p.linkOpen = false
		}
		p.linkID = 0
		return
	}
	uri := links.Resolve(id)
	if uri == "" {
		return
	}
	out.WriteString(oscHyperlink(uri))
	p.linkID = id
	p.linkOpen = true
}

// applyStyle resets and rebuilds the SGR state whenever the target style
// differs from the last one written. Reset-then-apply, rather than
// incremental attribute toggling, keeps the presenter's state machine
// small at the cost of a few redundant bytes on style changes.
func (p *Presenter) applyStyle(out *strings.Builder, c cell.Cell, caps termcap.Capabilities) {
	if p.style.valid && p.style.fg == c.Fg && p.style.bg == c.Bg && p.style.attrs == c.Attrs {
		return
	}

	var te ansi.Style
	if caps.ColorDepth != termcap.ColorMono {
		if !c.Fg.IsDefault() {
			te = te.ForegroundColor(p.downgrade(c.Fg, caps))
		}
		if !c.Bg.IsDefault() {
			te = te.BackgroundColor(p.downgrade(c.Bg, caps))
		}
	}
	flags := c.Attrs.Flags()
	if flags.Has(cell.Bold) {
		te = te.Bold()
	}
	if flags.Has(cell.Dim) {
		te = te.Faint()
	}
	if flags.Has(cell.Italic) {
		te = te.Italic(true)
	}
	if flags.Has(cell.Underline) {
		te = te.Underline(true)
	}
	if flags.Has(cell.Blink) {
		te = te.Blink(true)
	}
	if flags.Has(cell.Reverse) {
		te = te.Reverse(true)
	}
	if flags.Has(cell.Strikethrough) {
		te = te.Strikethrough(true)
	}
	if flags.Has(cell.Hidden) {
		te = te.Conceal(true)
	}

	out.WriteString("\x1b[0m")
	out.WriteString(te.String())
	p.style = styleState{fg: c.Fg, bg: c.Bg, attrs: c.Attrs, valid: true}
}

func (p *Presenter) writeGlyph(out *strings.Builder, pool *grapheme.Pool, c cell.Cell) {
	switch {
	case c.IsPooled():
		glyph, _ := pool.Resolve(c.PoolID())
		out.Write(glyph)
	default:
		out.WriteRune(c.Rune())
	}
}

// downgrade projects fg into caps' maximum color depth, using perceptual
// nearest-neighbor matching in Lab space against the appropriate palette
// once truecolor isn't available. Callers must not invoke this for
// ColorMono: there is no indexed or RGB representation of "no color" to
// downgrade to, so applyStyle skips the fg/bg SGR entirely in that case.
func (p *Presenter) downgrade(c cell.PackedColor, caps termcap.Capabilities) color.Color {
	switch caps.ColorDepth {
	case termcap.ColorTrueColor:
		return color.RGBA{R: c.R(), G: c.G(), B: c.B(), A: 0xff}
	case termcap.ColorANSI256:
		return ansi.IndexedColor(nearestIndexed(c, ansi256Palette[:]))
	default:
		return ansi.IndexedColor(nearestIndexed(c, p.palette16[:]))
	}
}

func nearestIndexed(c cell.PackedColor, palette []cell.PackedColor) uint8 {
	target, _ := colorful.MakeColor(rgbaModel{c})
	best, bestDist := uint8(0), math.MaxFloat64
	for i, p := range palette {
		cand, _ := colorful.MakeColor(rgbaModel{p})
		if d := target.DistanceLab(cand); d < bestDist {
			best, bestDist = uint8(i), d
		}
	}
	return best
}

// rgbaModel adapts a PackedColor to image/color.Color so go-colorful's
// MakeColor can consume it without this package importing image/color
// conversions duplicated elsewhere.
type rgbaModel struct{ c cell.PackedColor }

func (m rgbaModel) RGBA() (r, g, b, a uint32) {
	r = uint32(m.c.R()) * 0x101
	g = uint32(m.c.G()) * 0x101
	b = uint32(m.c.B()) * 0x101
	a = 0xffff
	return
}
