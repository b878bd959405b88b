package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"charm.land/wish/v2"
	charmlog "github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/spf13/cobra"

	"github.com/frankentui/frankentui/config"
	"github.com/frankentui/frankentui/termsession"
)

func newServeSSHCmd() *cobra.Command {
	var host string
	var port int
	var keyPath string
	var themeName string

	cmd := &cobra.Command{
		Use:   "serve-ssh",
		Short: "Serve the demo scene to SSH clients",
		Long: `Serve the animated demo scene over SSH: each connecting client gets
its own kernel session sized to its PTY window, so the rendering path is
exercised the same way it would be for a directly-attached terminal.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSSHServer(host, port, keyPath, themeName)
		},
	}

	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "address to bind")
	cmd.Flags().IntVar(&port, "port", 2323, "port to listen on")
	cmd.Flags().StringVar(&keyPath, "key", "", "host key path (empty uses a key file next to the config file, created if missing)")
	cmd.Flags().StringVar(&themeName, "theme", "", "bubbletint theme name applied to every session")

	return cmd
}

// sshReadWriter adapts an ssh.Session's Read/Write pair into the
// io.ReadWriter Start expects; the PTY size is passed to Start
// separately. It has no
// Fd method: raw mode is meaningless over a network session, since the
// client's PTY is already in raw mode by the time bytes arrive here.
type sshReadWriter struct {
	ssh.Session
}

func runSSHServer(host string, port int, keyPath string, themeName string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{ReportTimestamp: true, Prefix: "frankentui-ssh"})

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, fmt.Sprintf("%d", port))),
		wish.WithMiddleware(sessionMiddleware(themeName, logger)),
	}
	if keyPath == "" {
		path, err := config.Path()
		if err != nil {
			return fmt.Errorf("resolving default host key path: %w", err)
		}
		keyPath = path + ".ssh_host_key"
	}
	opts = append(opts, wish.WithHostKeyPath(keyPath))

	srv, err := wish.NewServer(opts...)
	if err != nil {
		return fmt.Errorf("building ssh server: %w", err)
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "host", host, "port", port)
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		return err
	}
}

func sessionMiddleware(themeName string, logger *charmlog.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				io.WriteString(sess, "frankentui: a PTY is required\n")
				next(sess)
				return
			}

			kernel, err := termsession.Start(sshReadWriter{sess}, pty.Window.Width, pty.Window.Height, config.ScreenSettings{
				Mode:         config.ScreenAlt,
				Mouse:        config.MouseOff,
				Sanitization: config.SanitizeStrict,
			}, themeName)
			if err != nil {
				fmt.Fprintf(sess, "frankentui: starting session: %v\n", err)
				next(sess)
				return
			}
			defer kernel.RecoverAndShutdown()

			connLogger := logger.With("session", kernel.ID(), "remote", sess.RemoteAddr().String())
			connLogger.Info("client connected")
			defer connLogger.Info("client disconnected")

			width, height := pty.Window.Width, pty.Window.Height

			keys := make(chan byte, 16)
			go func() {
				buf := make([]byte, 1)
				for {
					n, err := sess.Read(buf)
					if err != nil {
						return
					}
					if n > 0 {
						keys <- buf[0]
					}
				}
			}()

			ticker := time.NewTicker(time.Second / 30)
			defer ticker.Stop()

			done := sess.Context().Done()
			var tick int
			for {
				select {
				case <-done:
					return
				case win, ok := <-winCh:
					if !ok {
						return
					}
					width, height = win.Width, win.Height
					kernel.Resize(width, height)
				case k := <-keys:
					if k == 'q' || k == 3 {
						return
					}
				case <-ticker.C:
					drawDemoFrame(kernel, tick, width, height)
					if err := kernel.Commit(); err != nil {
						return
					}
					tick++
				}
			}
		}
	}
}
