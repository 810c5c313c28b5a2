package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration, stored as YAML in the user
// config dir. The Gemini API key is the only credential; it never
// leaves this machine except toward the Gemini endpoint itself.
type Config struct {
	Gemini  GeminiConfig  `yaml:"gemini"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Voice  string `yaml:"voice"`
}

type StorageConfig struct {
	Dir string `yaml:"dir"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	dir, _ := DefaultDataDir()
	return &Config{
		Gemini:  GeminiConfig{Voice: "Kore"},
		Storage: StorageConfig{Dir: dir},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the configuration file, falling back to defaults when the
// file does not exist. GEMINI_API_KEY in the environment overrides the
// stored key.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run; auth will create the file.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}
	if cfg.Storage.Dir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.Storage.Dir = dir
	}
	if cfg.Gemini.Voice == "" {
		cfg.Gemini.Voice = "Kore"
	}
	return cfg, nil
}

// Save writes the configuration, creating the parent directory if
// needed. The file holds the API key, so it is not group/world
// readable.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// HistoryPath is the JSON file holding the creation record list.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Storage.Dir, "history.json")
}

// MediaPath is the SQLite database holding externalized media.
func (c *Config) MediaPath() string {
	return filepath.Join(c.Storage.Dir, "media.db")
}

// EnsureStorageDir creates the data directory if it is missing.
func (c *Config) EnsureStorageDir() error {
	return os.MkdirAll(c.Storage.Dir, 0755)
}
