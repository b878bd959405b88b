package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/frankentui/frankentui/buffer"
	"github.com/frankentui/frankentui/cell"
	"github.com/frankentui/frankentui/config"
	"github.com/frankentui/frankentui/termsession"
)

// stdio wires os.Stdin/os.Stdout together as a single io.ReadWriter whose
// Fd is stdin's, matching the fd raw mode is conventionally entered on.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdio) Fd() uintptr                 { return os.Stdin.Fd() }

func newDemoCmd() *cobra.Command {
	var themeName string
	var mode string
	var fps int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run an animated scene through the kernel",
		Long: `Run a small animated demo scene through the kernel: a sweeping
gradient bar and a text panel with a live hyperlink, redrawn every frame
via diff-and-present so only changed cells hit the wire.

Press q or Ctrl+C to exit.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDemo(themeName, config.ScreenMode(mode), fps)
		},
	}

	cmd.Flags().StringVar(&themeName, "theme", "", "bubbletint theme name (empty uses standard terminal colors)")
	cmd.Flags().StringVar(&mode, "screen", string(config.ScreenAlt), "screen mode: inline or alt")
	cmd.Flags().IntVar(&fps, "fps", 30, "target frames per second")

	return cmd
}

func runDemo(themeName string, mode config.ScreenMode, fps int) error {
	width, height := 80, 24
	if w, h, err := termSize(); err == nil {
		width, height = w, h
	}

	sess, err := termsession.Start(stdio{}, width, height, config.ScreenSettings{
		Mode:         mode,
		Mouse:        config.MouseOff,
		Sanitization: config.SanitizeStrict,
	}, themeName)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer sess.RecoverAndShutdown()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	resize := termsession.WatchResize(os.Stdin.Fd())
	defer resize.Stop()

	statsStop := make(chan struct{})
	defer close(statsStop)
	sess.WithStatsLogger(2*time.Second, statsStop)

	keys := make(chan byte, 16)
	go readKeys(keys)

	ticker := time.NewTicker(time.Second / time.Duration(max(fps, 1)))
	defer ticker.Stop()

	var tick int
	for {
		select {
		case <-quit:
			return sess.Shutdown()
		case k := <-keys:
			if k == 'q' || k == 3 {
				return sess.Shutdown()
			}
		case size := <-resize.Events():
			width, height = size[0], size[1]
			sess.Resize(width, height)
		case <-ticker.C:
			drawDemoFrame(sess, tick, width, height)
			if err := sess.Commit(); err != nil {
				return fmt.Errorf("commit: %w", err)
			}
			tick++
		}
	}
}

func readKeys(out chan<- byte) {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n > 0 {
			out <- buf[0]
		}
	}
}

func drawDemoFrame(sess *termsession.Session, tick, width, height int) {
	frame := sess.Frame()

	barY := height / 2
	for x := 0; x < width; x++ {
		hue := float64((x+tick)%width) / float64(width)
		r, g, b := hsvToRGB(hue)
		frame.PutCell(x, barY, cell.NewScalar(' ', cell.Default, cell.RGB(r, g, b), cell.NoAttrs))
	}

	label := fmt.Sprintf(" FrankenTUI kernel demo — frame %d ", tick)
	frame.DrawText(2, 1, "", buffer.StyledSpan{
		Text: label,
		Fg:   cell.RGB(0xff, 0xff, 0xff),
		Bg:   cell.Default,
	})
	frame.DrawText(2, 3, "https://github.com/frankentui/frankentui", buffer.StyledSpan{
		Text:  "project page",
		Fg:    cell.RGB(0x5c, 0x5c, 0xff),
		Bg:    cell.Default,
		Attrs: cell.NewAttrs(cell.Underline, 0),
	})
}

func hsvToRGB(h float64) (uint8, uint8, uint8) {
	i := int(h * 6)
	f := h*6 - float64(i)
	q := 1 - f
	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = 1, f, 0
	case 1:
		r, g, b = q, 1, 0
	case 2:
		r, g, b = 0, 1, f
	case 3:
		r, g, b = 0, q, 1
	case 4:
		r, g, b = f, 0, 1
	case 5:
		r, g, b = 1, 0, q
	}
	return uint8(r * 255), uint8(g * 255), uint8(b * 255)
}

func termSize() (int, int, error) {
	return term.GetSize(int(os.Stdin.Fd()))
}
