// Command frankentui is a demo harness for the rendering kernel: it
// starts a session against the controlling terminal, runs a small
// animated scene through it, and exposes the same capability-detection
// and configuration surface a hosted application would use.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "frankentui",
		Short: "FrankenTUI rendering kernel demo and diagnostics",
		Long: `FrankenTUI is a terminal rendering kernel: a cell buffer, a diff
engine, and an ANSI presenter, with no opinion about layout or input
handling. This binary is a demo harness and diagnostic tool for it, not
the kernel itself.`,
		Example: `  # Run the animated demo scene
  frankentui demo

  # Run the demo with a bubbletint theme
  frankentui demo --theme dracula

  # Print detected terminal capabilities
  frankentui caps

  # Print the config file path
  frankentui config path`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newDemoCmd(), newCapsCmd(), newConfigCmd(), newServeSSHCmd())

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s", version, commit, date)),
	); err != nil {
		os.Exit(1)
	}
}
