package buffer

import (
	"github.com/frankentui/frankentui/cell"
	"github.com/frankentui/frankentui/grapheme"
)

// HyperlinkRegistry maps a per-frame 16-bit link id to its URI. Widgets
// register links while drawing; the presenter consumes the registry to
// emit OSC 8 sequences. Cleared between frames by Frame.Reset.
type HyperlinkRegistry struct {
	byID map[uint16]string
	next uint16
}

func newHyperlinkRegistry() *HyperlinkRegistry {
	return &HyperlinkRegistry{byID: make(map[uint16]string)}
}

// Register assigns a fresh link id to uri and returns it. Id 0 is never
// issued; it is reserved to mean "no link".
func (h *HyperlinkRegistry) Register(uri string) uint16 {
	h.next++
	if h.next == 0 {
		h.next = 1
	}
	h.byID[h.next] = uri
	return h.next
}

// Resolve returns the URI for id, or "" if id is 0 or unregistered.
func (h *HyperlinkRegistry) Resolve(id uint16) string {
	if id == 0 {
		return ""
	}
	return h.byID[id]
}

func (h *HyperlinkRegistry) reset() {
	clear(h.byID)
	h.next = 0
}

// StyledSpan is one run of text sharing a single style, as used by
// Frame.DrawText.
type StyledSpan struct {
	Text  string
	Fg    cell.PackedColor
	Bg    cell.PackedColor
	Attrs cell.CellAttrs
}

// Frame is the transient composition context handed to widgets during one
// render pass. It borrows the back buffer and the pool, and owns the
// per-frame hyperlink registry; it has no identity beyond that render
// pass's lifetime.
type Frame struct {
	Buf   *Buffer
	Pool  *grapheme.Pool
	Links *HyperlinkRegistry

	Degradation DegradationLevel

	// Warn, if set, is called whenever DrawText has to degrade a cluster
	// to the replacement character because Pool.Intern rejected it
	// (InvalidCluster or PoolExhausted). Surfaced out-of-band rather than
	// returned, since DrawText's own callers have no error path: a
	// widget's render pass never fails outright over one bad glyph.
	Warn func(err error, x, y int)
}

// NewFrame wraps buf for one render pass.
func NewFrame(buf *Buffer, pool *grapheme.Pool) *Frame {
	return &Frame{Buf: buf, Pool: pool, Links: newHyperlinkRegistry()}
}

// Reset clears the hyperlink registry for reuse across frames, sparing an
// allocation per frame.
func (f *Frame) Reset(buf *Buffer) {
	f.Buf = buf
	f.Links.reset()
}

// PutCell delegates to the underlying buffer.
func (f *Frame) PutCell(x, y int, c cell.Cell) { f.Buf.PutCell(x, y, c) }

// PushScissor/PopScissor/PushOpacity/PopOpacity delegate to the buffer;
// Frame only exists to make widget code read as "draw into the frame",
// per spec.md's description of the frame owning stack mutation through
// buffer-owned storage.
func (f *Frame) PushScissor(r Rect) { f.Buf.PushScissor(r) }
func (f *Frame) PopScissor()        { f.Buf.PopScissor() }
func (f *Frame) PushOpacity(a float64) { f.Buf.PushOpacity(a) }
func (f *Frame) PopOpacity()           { f.Buf.PopOpacity() }

// DrawText writes each span left to right starting at (x,y), advancing by
// each grapheme's display width. A non-empty link is registered once per
// call and its id is applied to every span.
func (f *Frame) DrawText(x, y int, link string, spans ...StyledSpan) {
	linkID := uint16(0)
	if link != "" {
		linkID = f.Links.Register(link)
	}

	cursor := x
	for _, span := range spans {
		attrs := span.Attrs.WithLink(uint32(linkID))
		for _, cluster := range grapheme.Split(span.Text) {
			w := grapheme.Width([]byte(cluster))
			if w <= 0 {
				w = 1
			}
			if err := f.Buf.PutGrapheme(f.Pool, cursor, y, []byte(cluster), span.Fg, span.Bg, attrs); err != nil {
				if f.Warn != nil {
					f.Warn(err, cursor, y)
				}
				_ = f.Buf.PutGrapheme(f.Pool, cursor, y, []byte("�"), span.Fg, span.Bg, attrs)
			}
			cursor += w
		}
	}
}
