package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/config"
)

func main() {
	// .env is optional; GEMINI_API_KEY from it overrides the config file.
	_ = godotenv.Load()

	defaultCfg, _ := config.DefaultPath()
	var cfgPath string

	root := &cobra.Command{
		Use:          "creative",
		Short:        "creative — AI text, image, video, and speech generation with local history",
		Long:         "Generates text, images, video, and speech through the Gemini API and keeps a local, bounded history of everything you create.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", defaultCfg, "config file path")

	root.AddCommand(
		authCmd(&cfgPath),
		generateCmd(&cfgPath),
		socialCmd(&cfgPath),
		narrateCmd(&cfgPath),
		transcribeCmd(&cfgPath),
		historyCmd(&cfgPath),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
