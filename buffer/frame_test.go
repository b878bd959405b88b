package buffer

import (
	"testing"

	"github.com/frankentui/frankentui/cell"
	"github.com/frankentui/frankentui/grapheme"
)

func TestDrawTextAdvancesByDisplayWidth(t *testing.T) {
	buf := New(10, 1, cell.Blank)
	pool := grapheme.New()
	f := NewFrame(buf, pool)

	f.DrawText(0, 0, "", StyledSpan{Text: "a中b", Fg: cell.Default, Bg: cell.Default})

	if got := buf.GetCell(0, 0).Rune(); got != 'a' {
		t.Fatalf("expected 'a' at column 0, got %q", got)
	}
	// column 1 holds the wide glyph's lead cell (pooled or scalar
	// depending on interning), column 2 its continuation.
	if !buf.GetCell(2, 0).IsContinuation() {
		t.Fatalf("expected a continuation cell at column 2 after a wide glyph at column 1")
	}
	if got := buf.GetCell(3, 0).Rune(); got != 'b' {
		t.Fatalf("expected 'b' at column 3 after the wide glyph advanced two columns, got %q", got)
	}
}

func TestDrawTextRegistersLinkOnlyWhenNonEmpty(t *testing.T) {
	buf := New(10, 1, cell.Blank)
	pool := grapheme.New()
	f := NewFrame(buf, pool)

	f.DrawText(0, 0, "https://example.com", StyledSpan{Text: "x", Fg: cell.Default, Bg: cell.Default})
	linkID := buf.GetCell(0, 0).Attrs.LinkID()
	if linkID == 0 {
		t.Fatalf("expected a non-zero link id after DrawText with a non-empty link")
	}
	if got := f.Links.Resolve(uint16(linkID)); got != "https://example.com" {
		t.Fatalf("Links.Resolve(%d) = %q, want the registered URI", linkID, got)
	}

	f.DrawText(1, 0, "", StyledSpan{Text: "y", Fg: cell.Default, Bg: cell.Default})
	if got := buf.GetCell(1, 0).Attrs.LinkID(); got != 0 {
		t.Fatalf("expected no link id for an empty link string, got %d", got)
	}
}

func TestFrameResetClearsLinkRegistry(t *testing.T) {
	buf := New(4, 1, cell.Blank)
	pool := grapheme.New()
	f := NewFrame(buf, pool)

	id := f.Links.Register("https://example.com")
	if f.Links.Resolve(id) == "" {
		t.Fatalf("expected the freshly registered link to resolve")
	}

	f.Reset(New(4, 1, cell.Blank))
	if got := f.Links.Resolve(id); got != "" {
		t.Fatalf("expected Reset to clear the link registry, still resolved to %q", got)
	}
}

func TestDrawTextDegradesInvalidClusterToReplacementAndWarns(t *testing.T) {
	buf := New(4, 1, cell.Blank)
	pool := grapheme.New()
	f := NewFrame(buf, pool)

	var warned error
	f.Warn = func(err error, x, y int) { warned = err }

	f.DrawText(0, 0, "", StyledSpan{Text: string([]byte{0xff}), Fg: cell.Default, Bg: cell.Default})

	if warned == nil {
		t.Fatalf("expected Warn to fire for an invalid grapheme cluster")
	}
	if got := buf.GetCell(0, 0).Rune(); got != '�' {
		t.Fatalf("expected the invalid cluster to degrade to the replacement character, got %q", got)
	}
}

func TestHyperlinkRegistryNeverIssuesZero(t *testing.T) {
	h := newHyperlinkRegistry()
	for i := 0; i < 3; i++ {
		if id := h.Register("u"); id == 0 {
			t.Fatalf("Register must never issue id 0 (reserved for \"no link\")")
		}
	}
}
