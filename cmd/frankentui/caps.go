package main

import (
	"fmt"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/frankentui/frankentui/termcap"
)

var (
	capsLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5c5cff")).Bold(true)
	capsGoodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cd00"))
	capsBadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#cd0000"))
)

func newCapsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "caps",
		Short: "Print detected terminal capabilities",
		Long:  `Detect and print the color depth and feature set the kernel believes the current terminal supports.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			caps := termcap.DetectStdout()
			printCap("color depth", caps.ColorDepth.String())
			printBool("sync output", caps.SyncOutput)
			printBool("osc8 links", caps.OSC8)
			printBool("bracketed paste", caps.BracketedPaste)
			printBool("focus events", caps.FocusEvents)
			printBool("scroll region", caps.ScrollRegion)
			printBool("multiplexer", caps.RunningUnderMultiplexer)
			if !isTerminal() {
				fmt.Fprintln(os.Stderr, capsBadStyle.Render("warning: stdout is not a terminal; capabilities reflect the NoTTY fallback"))
			}
			return nil
		},
	}
}

func printCap(label, value string) {
	fmt.Printf("%s %s\n", capsLabelStyle.Render(label+":"), value)
}

func printBool(label string, v bool) {
	style := capsBadStyle
	if v {
		style = capsGoodStyle
	}
	fmt.Printf("%s %s\n", capsLabelStyle.Render(label+":"), style.Render(fmt.Sprintf("%t", v)))
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
