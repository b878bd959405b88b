package cell

// StyleFlags is an 8-bit set of SGR style attributes.
type StyleFlags uint8

const (
	Bold StyleFlags = 1 << iota
	Dim
	Italic
	Underline
	Blink
	Reverse
	Strikethrough
	Hidden
)

// Has reports whether all bits of want are set.
func (f StyleFlags) Has(want StyleFlags) bool { return f&want == want }

// LinkIDNone marks the absence of a hyperlink.
const LinkIDNone uint32 = 0

// LinkIDMax is the largest usable link id; one below the 24-bit ceiling,
// which is reserved as a sentinel the way the grounding source reserves
// its own LINK_ID_MAX.
const LinkIDMax uint32 = 0x00FF_FFFE

// CellAttrs packs StyleFlags into the top byte and a 24-bit link id into
// the low bits of a 32-bit word.
type CellAttrs uint32

// NoAttrs is the zero value: no flags, no link.
const NoAttrs CellAttrs = 0

// NewAttrs packs flags and a link id. linkID must be <= LinkIDMax.
func NewAttrs(flags StyleFlags, linkID uint32) CellAttrs {
	return CellAttrs(uint32(flags)<<24 | (linkID & 0x00FF_FFFF))
}

func (a CellAttrs) Flags() StyleFlags { return StyleFlags(a >> 24) }
func (a CellAttrs) LinkID() uint32    { return uint32(a) & 0x00FF_FFFF }

func (a CellAttrs) WithFlags(flags StyleFlags) CellAttrs {
	return CellAttrs(uint32(a)&0x00FF_FFFF | uint32(flags)<<24)
}

func (a CellAttrs) WithLink(linkID uint32) CellAttrs {
	return CellAttrs(uint32(a)&0xFF00_0000 | (linkID & 0x00FF_FFFF))
}

func (a CellAttrs) HasFlag(flag StyleFlags) bool { return a.Flags().Has(flag) }
