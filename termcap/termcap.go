// Package termcap detects what a connected terminal actually supports,
// so the presenter degrades gracefully instead of emitting sequences
// the terminal will echo back as garbage.
package termcap

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
)

// ColorDepth is the maximum color representation a terminal accepts.
type ColorDepth int

const (
	ColorMono ColorDepth = iota
	ColorANSI16
	ColorANSI256
	ColorTrueColor
)

func (d ColorDepth) String() string {
	switch d {
	case ColorTrueColor:
		return "truecolor"
	case ColorANSI256:
		return "ansi256"
	case ColorANSI16:
		return "ansi16"
	default:
		return "mono"
	}
}

// Capabilities describes the subset of terminal features the kernel
// cares about. Everything here is best-effort: a false negative only
// costs fidelity, never correctness.
type Capabilities struct {
	ColorDepth             ColorDepth
	SyncOutput             bool
	OSC8                   bool
	BracketedPaste         bool
	FocusEvents            bool
	ScrollRegion           bool
	RunningUnderMultiplexer bool
}

// Detect inspects out (typically the terminal's stdout) and env
// (typically os.Environ(), or an SSH session's forwarded environment)
// and returns the capabilities it believes the terminal supports.
// Sync output, OSC 8, bracketed paste, focus events, and scroll regions
// are all assumed present once the terminal isn't a dumb/NoTTY target
// (OSC 8 is additionally withheld for TERM=linux); unlike color depth, xterm-family terminals overwhelmingly agree on
// support for these regardless of what they advertise in TERM.
func Detect(out io.Writer, env []string) Capabilities {
	profile := colorprofile.Detect(out, env)

	caps := Capabilities{ColorDepth: profileToDepth(profile)}
	if profile == colorprofile.NoTTY {
		return caps
	}

	term := lookupEnv(env, "TERM")
	caps.SyncOutput = true
	caps.OSC8 = term != "dumb" && term != "linux"
	caps.BracketedPaste = true
	caps.FocusEvents = true
	caps.ScrollRegion = true
	caps.RunningUnderMultiplexer = lookupEnv(env, "TMUX") != "" ||
		lookupEnv(env, "STY") != "" ||
		lookupEnv(env, "ZELLIJ") != ""

	if lookupEnv(env, "NO_COLOR") != "" {
		caps.ColorDepth = ColorMono
	}

	return caps
}

// DetectStdout is a convenience wrapper for the common case of
// detecting the process's own controlling terminal.
func DetectStdout() Capabilities {
	return Detect(os.Stdout, os.Environ())
}

func profileToDepth(p colorprofile.Profile) ColorDepth {
	switch p {
	case colorprofile.TrueColor:
		return ColorTrueColor
	case colorprofile.ANSI256:
		return ColorANSI256
	case colorprofile.ANSI:
		return ColorANSI16
	default:
		return ColorMono
	}
}

func lookupEnv(env []string, key string) string {
	prefix := key + "="
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			return kv[len(prefix):]
		}
	}
	return ""
}
