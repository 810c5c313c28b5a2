package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/config"
)

func authCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Store the Gemini API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}

			fmt.Fprint(os.Stderr, "Gemini API key: ")
			keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("read key: %w", err)
			}
			key := strings.TrimSpace(string(keyBytes))
			if key == "" {
				return fmt.Errorf("empty key")
			}

			cfg.Gemini.APIKey = key
			if err := cfg.Save(*cfgPath); err != nil {
				return err
			}
			fmt.Printf("Key saved to %s\n", *cfgPath)
			return nil
		},
	}
}
