package termsession

import (
	"io"

	"github.com/frankentui/frankentui/config"
)

// sanitizeMode selects how much of a write survives on its way to the
// terminal. It mirrors config.SanitizationMode but stays internal so the
// scanning logic below isn't coupled to the config package's TOML tags.
type sanitizeMode int

const (
	sanitizeStrict sanitizeMode = iota
	sanitizeRaw
)

func sanitizeModeFrom(m config.SanitizationMode) sanitizeMode {
	if m == config.SanitizeRaw {
		return sanitizeRaw
	}
	return sanitizeStrict
}

// sanitizingWriter strips terminal control sequences from whatever a
// hosted application writes to it before forwarding the result to the
// underlying terminal, so a stray log line can never reposition the
// cursor, switch screens, or corrupt the presenter's tracked state.
//
// In strict mode every ESC-introduced sequence (CSI, OSC, DCS, APC, and
// bare two-byte ESC sequences) is dropped entirely, along with C0
// control bytes other than tab, line feed, and carriage return. In raw
// mode every ESC-introduced sequence is still dropped the same way, but
// the other C0 control bytes and DEL pass through unchanged. The 8-bit
// C1 control range (0x80-0x9F)
// is stripped unconditionally in both modes, the same as ESC: a raw C1
// CSI/OSC/DCS/APC introducer is exactly as capable of repositioning the
// cursor or altering screen state as its 7-bit ESC-prefixed equivalent.
type sanitizingWriter struct {
	w    io.Writer
	mode sanitizeMode
}

func newSanitizingWriter(w io.Writer, mode sanitizeMode) *sanitizingWriter {
	return &sanitizingWriter{w: w, mode: mode}
}

func (sw *sanitizingWriter) Write(p []byte) (int, error) {
	clean := sanitize(p, sw.mode)
	if _, err := sw.w.Write(clean); err != nil {
		return 0, err
	}
	return len(p), nil
}

func sanitize(p []byte, mode sanitizeMode) []byte {
	out := make([]byte, 0, len(p))
	for i := 0; i < len(p); i++ {
		b := p[i]
		switch {
		case b == 0x1b:
			i += escapeLen(p[i:]) - 1
		case b >= 0x80 && b <= 0x9f:
			i += c1Len(p[i:]) - 1
		case b < 0x20 || b == 0x7f:
			if b == '\t' || b == '\n' || b == '\r' {
				out = append(out, b)
			} else if mode == sanitizeRaw {
				out = append(out, b)
			}
		default:
			out = append(out, b)
		}
	}
	return out
}

// escapeLen returns the number of bytes making up the escape sequence
// starting at seq[0] (which must be ESC), so the caller can skip it as a
// unit. It recognizes CSI (ESC [ ... final-byte), OSC/DCS/APC (ESC ] | P
// | _ ... ST, where ST is ESC \ or BEL), and otherwise a bare two-byte
// ESC sequence.
func escapeLen(seq []byte) int {
	if len(seq) < 2 {
		return len(seq)
	}
	switch seq[1] {
	case '[':
		for i := 2; i < len(seq); i++ {
			if seq[i] >= 0x40 && seq[i] <= 0x7e {
				return i + 1
			}
		}
		return len(seq)
	case ']', 'P', '_':
		for i := 2; i < len(seq); i++ {
			if seq[i] == 0x07 {
				return i + 1
			}
			if seq[i] == 0x1b && i+1 < len(seq) && seq[i+1] == '\\' {
				return i + 2
			}
		}
		return len(seq)
	default:
		return 2
	}
}

// c1Len returns the number of bytes making up the C1 control sequence
// starting at seq[0] (0x80-0x9F). CSI (0x9b) runs until its final byte
// (0x40-0x7E); OSC (0x9d), DCS (0x90), and APC (0x9f) run until a string
// terminator (0x9c, or ESC \); any other C1 control byte is one byte wide.
func c1Len(seq []byte) int {
	switch seq[0] {
	case 0x9b:
		for i := 1; i < len(seq); i++ {
			if seq[i] >= 0x40 && seq[i] <= 0x7e {
				return i + 1
			}
		}
		return len(seq)
	case 0x9d, 0x90, 0x9f:
		for i := 1; i < len(seq); i++ {
			if seq[i] == 0x9c {
				return i + 1
			}
			if seq[i] == 0x1b && i+1 < len(seq) && seq[i+1] == '\\' {
				return i + 2
			}
		}
		return len(seq)
	default:
		return 1
	}
}
