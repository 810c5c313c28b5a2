package main

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/blob"
	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/config"
	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/genai"
	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/history"
	"github.com/hafarna03aja-droid/final-foto-video-creation/internal/logger"
)

// app bundles the wired-up stores and client every command needs.
type app struct {
	cfg     *config.Config
	media   *blob.Store
	history *history.Store
	client  *genai.Client
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return nil, err
	}
	if err := cfg.EnsureStorageDir(); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	media := blob.NewStore(cfg.MediaPath(), logger.Log)
	hist := history.NewStore(cfg.HistoryPath(), media, logger.Log)
	if err := hist.Load(); err != nil {
		media.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		media:   media,
		history: hist,
		client:  genai.NewClient(cfg.Gemini.APIKey, logger.Log),
	}, nil
}

func (a *app) Close() {
	if err := a.media.Close(); err != nil {
		logger.Warn("failed to close media store", "error", err)
	}
}

// readImage loads an image file and sniffs its content type.
func readImage(path string) (genai.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return genai.Image{}, err
	}
	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		mt = http.DetectContentType(data)
	}
	return genai.Image{Data: data, MIME: mt}, nil
}
