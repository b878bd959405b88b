// Package grapheme implements the process-scoped, append-only interning
// table that lets a 4-byte cell content word represent any displayable
// Unicode grapheme cluster, not just single scalars.
package grapheme

import (
	"errors"
	"sync"
	"unicode/utf8"

	"github.com/clipperhouse/displaywidth"
	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"
)

// ErrInvalidCluster is returned by Intern when the input is not valid
// UTF-8. Callers are expected to sanitize input before it reaches the
// pool; this is a defensive backstop, not the primary line of defense.
var ErrInvalidCluster = errors.New("grapheme: invalid UTF-8 cluster")

// ErrPoolExhausted is returned by Intern when the 24-bit slot space is
// saturated. Practically unreachable for real UI workloads; callers that
// hit it should degrade to a replacement character and log a warning.
var ErrPoolExhausted = errors.New("grapheme: pool exhausted")

// maxSlots is one below the 24-bit ceiling: the top index is reserved as
// the wide-glyph continuation sentinel (see cell.Continuation).
const maxSlots = 0x00FF_FFFE

// ID identifies a cell's glyph content: either a bare Unicode scalar
// (Index holds the rune value and IsScalar is true) or a pool slot
// (IsScalar is false) with its display width cached alongside it so the
// diff/present path never needs to re-resolve width for equality or
// cursor-advance purposes.
type ID struct {
	index  uint32
	width  uint8
	scalar bool
}

// NewID constructs a pool-slot ID from a raw pool index and width, as
// decoded from a packed cell content word's pool-tagged form. It performs
// no validation; validation happens at Intern time.
func NewID(index uint32, width uint8) ID { return ID{index: index, width: width} }

func (id ID) Index() uint32 { return id.index }
func (id ID) Width() uint8  { return id.width }

// IsScalar reports whether this ID was produced by Intern's scalar fast
// path: no pool slot was allocated, and Index() is the rune value itself.
// Callers packing a cell.Cell must check this and use cell.NewScalar
// instead of cell.NewPooled when it is true.
func (id ID) IsScalar() bool { return id.scalar }

// entry is one interned cluster.
type entry struct {
	bytes string
	width uint8
}

// Pool is a concurrent-safe, append-only interning table. The zero value
// is not usable; construct with New.
type Pool struct {
	mu      sync.RWMutex
	byBytes map[string]uint32
	slots   []entry
}

// New creates an empty pool.
func New() *Pool {
	return &Pool{byBytes: make(map[string]uint32)}
}

// Width computes the display width of a single grapheme cluster's bytes
// following East-Asian-Width and emoji-presentation rules, clamped to
// {0,1,2}. Combining marks contribute zero width; this is exposed
// separately from Intern so callers (e.g. the presenter's cursor tracker)
// can recompute width without touching the pool.
func Width(clusterBytes []byte) int {
	w := displaywidth.String(string(clusterBytes))
	if w < 0 {
		w = 0
	}
	if w > 2 {
		w = 2
	}
	if w == 0 && len(clusterBytes) > 0 {
		// displaywidth reports 0 for a handful of runes it doesn't
		// classify (some private-use and unassigned code points);
		// fall back to go-runewidth's wcwidth table rather than
		// silently collapsing a printable-looking cluster to nothing.
		r, size := utf8.DecodeRune(clusterBytes)
		if r != utf8.RuneError || size != 0 {
			if rw := runewidth.RuneWidth(r); rw > w {
				w = rw
			}
		}
	}
	if w > 2 {
		w = 2
	}
	return w
}

// Split breaks s into grapheme clusters using UAX #29 segmentation.
func Split(s string) []string {
	var out []string
	seg := graphemes.FromString(s)
	for seg.Next() {
		out = append(out, seg.Value())
	}
	return out
}

// Intern returns the ID for cluster, allocating a new pool slot if the
// cluster has not been seen before. A single scalar that fits in 21 bits
// is returned directly as a scalar ID (Width still reflects the computed
// display width; callers packing a cell.Cell use IsScalar to choose the
// scalar-vs-pooled content encoding).
func (p *Pool) Intern(cluster []byte) (ID, error) {
	if !utf8.Valid(cluster) {
		return ID{}, ErrInvalidCluster
	}

	w := Width(cluster)
	if w == 0 {
		w = 1
	}

	if r, size := utf8.DecodeRune(cluster); size == len(cluster) && r != utf8.RuneError {
		return ID{index: uint32(r), width: uint8(w), scalar: true}, nil
	}

	key := string(cluster)

	p.mu.RLock()
	if idx, ok := p.byBytes[key]; ok {
		p.mu.RUnlock()
		return ID{index: idx, width: p.slots[idx].width}, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.byBytes[key]; ok {
		return ID{index: idx, width: p.slots[idx].width}, nil
	}

	if len(p.slots) >= maxSlots {
		return ID{}, ErrPoolExhausted
	}

	idx := uint32(len(p.slots))
	p.slots = append(p.slots, entry{bytes: key, width: uint8(w)})
	p.byBytes[key] = idx

	return ID{index: idx, width: uint8(w)}, nil
}

// Resolve returns the original bytes and display width for a pool id
// previously returned by Intern with a multi-scalar cluster. It is total
// for any id this pool produced. Resolving an id from a different pool,
// or a scalar-form id, is a programmer error; it panics only when the
// index lies past the pool's last slot, and otherwise returns whatever
// entry occupies that index.
func (p *Pool) Resolve(id ID) ([]byte, int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if int(id.index) >= len(p.slots) {
		panic("grapheme: Resolve called with an id this pool never interned")
	}
	e := p.slots[id.index]
	return []byte(e.bytes), int(e.width)
}

// Len returns the number of allocated pool slots, for diagnostics and
// pool-growth monitoring.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.slots)
}
