//go:build unix

package termsession

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// ResizeWatcher delivers terminal window size changes reported via
// SIGWINCH on fd, so a caller can drive Session.Resize without polling.
type ResizeWatcher struct {
	fd     int
	sig    chan os.Signal
	events chan [2]int
	stop   chan struct{}
	done   chan struct{}
}

// WatchResize starts listening for SIGWINCH on fd. Call Stop when the
// session using it shuts down.
func WatchResize(fd uintptr) *ResizeWatcher {
	w := &ResizeWatcher{
		fd:     int(fd),
		sig:    make(chan os.Signal, 1),
		events: make(chan [2]int, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	signal.Notify(w.sig, syscall.SIGWINCH)
	go w.loop()
	return w
}

func (w *ResizeWatcher) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		case <-w.sig:
			width, height, ok := w.size()
			if !ok {
				continue
			}
			select {
			case w.events <- [2]int{width, height}:
			default:
				select {
				case <-w.events:
				default:
				}
				w.events <- [2]int{width, height}
			}
		}
	}
}

func (w *ResizeWatcher) size() (int, int, bool) {
	ws, err := unix.IoctlGetWinsize(w.fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, false
	}
	return int(ws.Col), int(ws.Row), true
}

// Events returns the channel new (width, height) pairs arrive on.
func (w *ResizeWatcher) Events() <-chan [2]int { return w.events }

// Stop unregisters the signal handler and waits for the watch loop to
// exit.
func (w *ResizeWatcher) Stop() {
	signal.Stop(w.sig)
	close(w.stop)
	<-w.done
}
