package termsession

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/x/xpty"
)

// ptyBridge copies bytes between a hosted PTY and the terminal, and stays
// alive until Close is called or the PTY hits EOF.
type ptyBridge struct {
	pty    xpty.Pty
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// AttachPTY starts a goroutine that copies everything the PTY produces
// straight to the terminal, bypassing the diff/present pipeline: the
// hosted process is expected to draw its own screen. The output is not
// sanitized, whatever sgrPassthrough says. When sgrPassthrough is true,
// DECSCUSR cursor-shape sequences found in a chunk are also written just
// ahead of that chunk, so they reach the terminal twice; no other
// filtering depends on the flag.
//
// Callers writing to Session.RawLogSink concurrently with an attached
// PTY will see interleaved output; AttachPTY is meant for a session
// that hands the whole surface to one hosted process at a time.
func (s *Session) AttachPTY(p xpty.Pty, sgrPassthrough bool) error {
	s.mu.Lock()
	if state(s.st.Load()) != stateRaw {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	bridge := &ptyBridge{pty: p, cancel: cancel}
	s.mu.Unlock()

	bridge.wg.Add(1)
	go func() {
		defer bridge.wg.Done()
		s.pumpPTY(ctx, p, sgrPassthrough)
	}()

	s.mu.Lock()
	s.pty = bridge
	s.mu.Unlock()
	return nil
}

func (s *Session) pumpPTY(ctx context.Context, p xpty.Pty, sgrPassthrough bool) {
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := p.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			s.mu.Lock()
			if sgrPassthrough {
				passThroughCursorStyle(s.rw, chunk)
			}
			_, _ = s.rw.Write(chunk)
			s.presenter.Invalidate()
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// DetachPTY stops the background copy goroutine started by AttachPTY and
// closes the PTY. It is a no-op if no PTY is attached.
func (s *Session) DetachPTY() error {
	s.mu.Lock()
	bridge := s.pty
	s.pty = nil
	s.mu.Unlock()

	if bridge == nil {
		return nil
	}
	bridge.cancel()
	err := bridge.pty.Close()
	bridge.wg.Wait()
	return err
}

// passThroughCursorStyle scans chunk for DECSCUSR sequences (ESC [ N SP
// q) and writes each one it finds to w. It does not remove them from
// chunk; the caller still writes the whole chunk afterwards.
func passThroughCursorStyle(w io.Writer, chunk []byte) {
	idx := 0
	for idx < len(chunk) {
		escIdx := bytes.Index(chunk[idx:], []byte("\x1b["))
		if escIdx == -1 {
			return
		}
		escIdx += idx

		numEnd := escIdx + 2
		for numEnd < len(chunk) && chunk[numEnd] >= '0' && chunk[numEnd] <= '9' {
			numEnd++
		}
		if numEnd+1 < len(chunk) && chunk[numEnd] == ' ' && chunk[numEnd+1] == 'q' {
			_, _ = w.Write(chunk[escIdx : numEnd+2])
			idx = numEnd + 2
			continue
		}
		idx = escIdx + 2
	}
}
