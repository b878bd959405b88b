// Package termsession owns the terminal for the lifetime of a render
// loop: raw mode entry/exit, inline-vs-alt-screen anchoring, frame
// commit and presentation, and the sanitized log sinks a hosted
// application can safely write to without corrupting the display.
package termsession

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/frankentui/frankentui/buffer"
	"github.com/frankentui/frankentui/cell"
	"github.com/frankentui/frankentui/config"
	"github.com/frankentui/frankentui/diff"
	"github.com/frankentui/frankentui/grapheme"
	"github.com/frankentui/frankentui/present"
	"github.com/frankentui/frankentui/termcap"
	"github.com/frankentui/frankentui/theme"
)

// Sentinel errors returned by Start and Commit. Wrap with fmt.Errorf and
// %w at call sites that need to attach more context.
var (
	ErrCapabilityAcquisitionFailed = errors.New("termsession: capability detection failed")
	ErrRawModeEntryFailed          = errors.New("termsession: could not enter raw mode")
	ErrWriteFailed                 = errors.New("termsession: write to terminal failed")
)

// state is the session's lifecycle, advanced only by Start, Shutdown,
// and the panic hook.
type state int32

const (
	statePreSession state = iota
	stateRaw
	stateShuttingDown
)

// fder is satisfied by *os.File and lets Start put a real terminal into
// raw mode; callers driving Start over a plain io.ReadWriter (tests, a
// pipe) simply don't get raw-mode/fd-based capability detection.
type fder interface {
	Fd() uintptr
}

// Session owns one terminal for as long as it is running: it tracks the
// previously committed buffer for diffing, the presenter's cursor/style
// state, and the raw-mode restore function.
type Session struct {
	mu sync.Mutex

	id     string
	logger *log.Logger

	rw        io.ReadWriter
	mode      config.ScreenMode
	mouse     config.MousePolicy
	caps      termcap.Capabilities
	height    int
	anchorRow int

	pool  *grapheme.Pool
	front *buffer.Buffer
	back  *buffer.Buffer
	frame *buffer.Frame

	presenter *present.Presenter

	restoreRaw func() error
	anchored   bool

	logSink    *sanitizingWriter
	rawLogSink *sanitizingWriter

	mailbox    chan struct{}
	outputDone chan struct{}

	pty *ptyBridge

	st atomic.Int32
}

// Start acquires the terminal: it detects capabilities, enters raw mode
// (when rw is backed by a file descriptor), and anchors the render
// surface according to mode. On any failure the terminal is left exactly
// as it was found.
func Start(rw io.ReadWriter, width, height int, screen config.ScreenSettings, themeName string) (*Session, error) {
	caps := detectCapabilities(rw)

	if err := theme.Initialize(themeName); err != nil {
		return nil, fmt.Errorf("termsession: initialize theme: %w", err)
	}

	s := &Session{
		id:        uuid.New().String(),
		rw:        rw,
		mode:      screen.Mode,
		mouse:     screen.Mouse,
		caps:      caps,
		height:    height,
		anchorRow: screen.AnchorRow,
		pool:      grapheme.New(),
		presenter: present.New(),
	}
	s.presenter.SetPalette(theme.Palette())
	s.front = buffer.New(width, height, cell.Blank)
	s.back = buffer.New(width, height, cell.Blank)
	s.frame = buffer.NewFrame(s.back, s.pool)
	s.logSink = newSanitizingWriter(rw, sanitizeModeFrom(screen.Sanitization))
	s.rawLogSink = newSanitizingWriter(rw, sanitizeRaw)
	s.logger = log.NewWithOptions(io.Discard, log.Options{
		ReportTimestamp: true,
		Prefix:          "frankentui",
	}).With("session", s.id)
	s.frame.Warn = func(err error, x, y int) {
		s.logger.Warn("grapheme degraded to replacement character", "err", err, "x", x, "y", y)
	}

	if f, ok := rw.(fder); ok {
		restore, err := enterRawMode(f.Fd())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRawModeEntryFailed, err)
		}
		s.restoreRaw = restore
	}

	if err := s.writeStartupSequence(); err != nil {
		if s.restoreRaw != nil {
			_ = s.restoreRaw()
		}
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	s.st.Store(int32(stateRaw))
	return s, nil
}

func detectCapabilities(rw io.ReadWriter) termcap.Capabilities {
	return termcap.Detect(rw, os.Environ())
}

func (s *Session) writeStartupSequence() error {
	var seq string
	switch s.mode {
	case config.ScreenAlt:
		seq += "\x1b[?1049h\x1b[H"
	case config.ScreenInline:
		s.anchored = true
	}
	if s.wantsMouse() {
		seq += "\x1b[?1000h\x1b[?1006h"
	}
	if seq == "" {
		return nil
	}
	_, err := io.WriteString(s.rw, seq)
	return err
}

// wantsMouse reports whether the session should request mouse tracking:
// always for MouseOn, never for MouseOff, and only in alt-screen mode for
// MouseAuto, since inline mode shares the terminal with the surrounding
// shell and mouse reporting there would break the shell's own
// selection/scroll.
func (s *Session) wantsMouse() bool {
	switch s.mouse {
	case config.MouseOn:
		return true
	case config.MouseAuto:
		return s.mode == config.ScreenAlt
	default:
		return false
	}
}

// Frame returns the transient composition context for the next commit.
// Widgets draw into it; Commit consumes it.
func (s *Session) Frame() *buffer.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Commit diffs the frame's back buffer (as returned by Frame, and drawn
// into by the caller) against what was last presented, writes only the
// changed runs, and swaps front/back. Committing an unchanged frame
// twice in a row is a no-op past the initial diff.
func (s *Session) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state(s.st.Load()) != stateRaw {
		return nil
	}

	buf := s.frame.Buf
	runs, err := diff.Compute(s.front, buf)
	if errors.Is(err, diff.ErrDimensionMismatch) {
		s.front = buffer.New(buf.Width(), buf.Height(), cell.Blank)
		runs, err = diff.Compute(s.front, buf)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	if err := s.presentInline(buf, runs); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	s.front = buf
	s.back = buffer.New(buf.Width(), buf.Height(), cell.Blank)
	s.frame.Reset(s.back)
	return nil
}

// presentInline writes runs, anchoring the UI to a fixed-height region
// when in inline mode: save cursor, move to the anchor row, clear only
// the region's lines (never a full-screen erase), present, restore
// cursor. This is spec's baseline overlay-redraw fallback: it never
// disturbs anything outside the region, so surrounding shell scrollback
// is preserved.
func (s *Session) presentInline(buf *buffer.Buffer, runs []diff.Run) error {
	if len(runs) == 0 {
		return nil
	}

	if !s.anchored {
		return s.presenter.Present(s.rw, buf, s.pool, runs, s.frame.Links, s.caps)
	}

	if _, err := io.WriteString(s.rw, "\x1b7"); err != nil {
		return err
	}

	row := s.resolveAnchorRow(buf.Height())
	if _, err := fmt.Fprintf(s.rw, "\x1b[%d;1H", row); err != nil {
		return err
	}
	if _, err := io.WriteString(s.rw, clearRegionSequence(buf.Height())); err != nil {
		return err
	}

	// The move and per-line clear above happened outside the presenter's
	// own cursor/style tracking, so force it to re-establish both, and
	// re-anchor its row addressing to this region's top row.
	s.presenter.Invalidate()
	s.presenter.SetRowOffset(row - 1)

	if err := s.presenter.Present(s.rw, buf, s.pool, runs, s.frame.Links, s.caps); err != nil {
		return err
	}

	_, err := io.WriteString(s.rw, "\x1b8")
	return err
}

// resolveAnchorRow returns the 1-indexed terminal row the top of a
// regionHeight-tall inline UI region should occupy: the configured
// AnchorRow if set, otherwise bottom-anchored against the session's
// current height.
func (s *Session) resolveAnchorRow(regionHeight int) int {
	if s.anchorRow > 0 {
		return s.anchorRow
	}
	row := s.height - regionHeight + 1
	if row < 1 {
		row = 1
	}
	return row
}

// clearRegionSequence erases height lines starting at the cursor's
// current row using per-line erase (CSI 2 K), never CSI 2 J, then
// returns the cursor to where it started. Per spec, a full-screen erase
// is never used for the inline region since that would erase content
// outside it too.
func clearRegionSequence(height int) string {
	var b strings.Builder
	for i := 0; i < height; i++ {
		b.WriteString("\r\x1b[2K")
		if i < height-1 {
			b.WriteString("\x1b[1B")
		}
	}
	if height > 1 {
		fmt.Fprintf(&b, "\x1b[%dA", height-1)
	}
	b.WriteString("\r")
	return b.String()
}

// Resize atomically replaces both buffers with fresh ones at the new
// dimensions and clears cursor-tracking, so the next Commit performs a
// full repaint against a matching front/back pair. Callers must not call
// Resize concurrently with Commit; the caller serializes resize against
// the render loop.
func (s *Session) Resize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.height = h
	s.front = buffer.New(w, h, cell.Blank)
	s.back = buffer.New(w, h, cell.Blank)
	s.frame.Reset(s.back)
	s.presenter.Invalidate()
}

// ID returns the session's unique identifier, generated once at Start and
// stable for the session's lifetime. Useful for correlating log lines
// across multiple concurrently hosted sessions, e.g. one per SSH client.
func (s *Session) ID() string { return s.id }

// Logger returns a structured logger tagged with this session's ID. Its
// output defaults to io.Discard; call SetLogOutput to direct it somewhere
// safe, such as LogSink or a file, since writing raw log output straight
// to the terminal would corrupt the display.
func (s *Session) Logger() *log.Logger { return s.logger }

// SetLogOutput redirects Logger's output. Passing LogSink() keeps log
// lines on the same terminal the session owns without corrupting the
// display; passing a file keeps them off the terminal entirely.
func (s *Session) SetLogOutput(w io.Writer) { s.logger.SetOutput(w) }

// LogSink returns a writer that strips escape sequences from anything
// written to it before forwarding to the terminal, safe for a hosted
// application's structured logger to share the terminal without
// corrupting the display.
func (s *Session) LogSink() io.Writer { return s.logSink }

// RawLogSink returns a writer that only strips control bytes capable of
// repositioning the cursor or altering screen state (ESC, CSI, OSC, DCS,
// APC), while passing through everything else including raw PTY bytes.
func (s *Session) RawLogSink() io.Writer { return s.rawLogSink }

// Shutdown restores the terminal to how Start found it: mouse tracking
// and the alternate screen are turned off, raw mode is exited, and the
// state machine is marked terminal. Shutdown is idempotent.
func (s *Session) Shutdown() error {
	if !s.st.CompareAndSwap(int32(stateRaw), int32(stateShuttingDown)) {
		return nil
	}
	s.StopOutputThread()
	_ = s.DetachPTY()

	s.mu.Lock()
	defer s.mu.Unlock()

	var seq string
	if s.wantsMouse() {
		seq += "\x1b[?1006l\x1b[?1000l"
	}
	if s.mode == config.ScreenAlt {
		seq += "\x1b[?1049l"
	}
	if seq != "" {
		_, _ = io.WriteString(s.rw, seq)
	}

	if s.restoreRaw != nil {
		return s.restoreRaw()
	}
	return nil
}

// RecoverAndShutdown is deferred by callers immediately after Start
// succeeds, so a panic anywhere in the render loop still leaves the
// terminal in raw-mode-exited, main-screen state before the panic
// propagates. It re-panics with the original value once cleanup runs.
func (s *Session) RecoverAndShutdown() {
	r := recover()
	_ = s.Shutdown()
	if r != nil {
		panic(r)
	}
}

func enterRawMode(fd uintptr) (func() error, error) {
	oldState, err := term.MakeRaw(int(fd))
	if err != nil {
		return nil, err
	}
	return func() error {
		return term.Restore(int(fd), oldState)
	}, nil
}
