package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the optional override file read from the working directory.
const ConfigFile = ".config.yaml"

// Loader reads configuration from defaults, an optional yaml override
// file and process environment, in that order of precedence.
type Loader struct {
	useDotEnv bool
	path      string
	lookupEnv func(string) string
}

// NewLoader creates a loader with the default sources.
func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		path:      ConfigFile,
		lookupEnv: os.Getenv,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the yaml override file location (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// WithEnvLookup overrides environment access (useful for tests).
func (l *Loader) WithEnvLookup(lookup func(string) string) *Loader {
	if lookup != nil {
		l.lookupEnv = lookup
	}
	return l
}

// Result captures the loaded configuration and its origin.
type Result struct {
	Config *Config
	Path   string
}

// Load builds the effective configuration.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("no .env file found, using system environment")
		}
	}

	cfg := DefaultConfig()
	origin := "defaults"

	if data, err := os.ReadFile(l.path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", l.path, err)
		}
		origin = l.path
	}

	l.applyEnv(cfg)

	if err := l.validate(cfg); err != nil {
		return nil, err
	}

	return &Result{
		Config: cfg,
		Path:   origin,
	}, nil
}

func (l *Loader) applyEnv(cfg *Config) {
	if v := l.lookupEnv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := l.lookupEnv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := l.lookupEnv("VISION_MODEL"); v != "" {
		cfg.Vision.ModelName = v
	}
	if v := l.lookupEnv("VISION_BASE_URL"); v != "" {
		cfg.Vision.BaseURL = v
	}
}

func (l *Loader) validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Vision.ModelName == "" {
		return fmt.Errorf("vision model name is required")
	}
	if cfg.Vision.BaseURL == "" {
		return fmt.Errorf("vision base URL is required")
	}
	if _, err := time.ParseDuration(cfg.Vision.RequestTimeout); err != nil {
		return fmt.Errorf("invalid vision request_timeout %q: %w", cfg.Vision.RequestTimeout, err)
	}
	if len(cfg.TTS.Voices) == 0 {
		return fmt.Errorf("at least one TTS voice mapping is required")
	}
	return nil
}

// Timeout returns the parsed per-attempt timeout for vision calls.
func (c VisionConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}
