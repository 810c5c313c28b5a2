package config

import (
	"os"
	"path/filepath"
)

const appDirName = ".creative-suite"

// UserDir is where the config file and data live by default.
func UserDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// DefaultPath is the default config file location.
func DefaultPath() (string, error) {
	dir, err := UserDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultDataDir is the default storage directory.
func DefaultDataDir() (string, error) {
	dir, err := UserDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}
