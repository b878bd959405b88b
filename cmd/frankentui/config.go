package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frankentui/frankentui/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and manage the kernel configuration file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			RunE: func(_ *cobra.Command, _ []string) error {
				path, err := config.Path()
				if err != nil {
					return err
				}
				fmt.Println(path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			RunE: func(_ *cobra.Command, _ []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				fmt.Printf("screen.mode:                %s\n", cfg.Screen.Mode)
				fmt.Printf("screen.mouse:                %s\n", cfg.Screen.Mouse)
				fmt.Printf("screen.sanitization:         %s\n", cfg.Screen.Sanitization)
				fmt.Printf("theme.name:                  %s\n", cfg.Theme.Name)
				fmt.Printf("degradation.frame_budget_millis: %d\n", cfg.Degrade.FrameBudgetMillis)
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Reset the configuration file to defaults",
			RunE: func(_ *cobra.Command, _ []string) error {
				return config.Reset()
			},
		},
	)

	return cmd
}
