// Package config loads tool settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"cad-batch-export/internal/engine"
	"cad-batch-export/internal/notice"
)

const EnvPrefix = "CADBATCH_"

// Config is read from CADBATCH_* variables. Command line flags override it.
type Config struct {
	// Bridge is the engine bridge executable, looked up on PATH.
	Bridge string `env:"BRIDGE" envDefault:"cad-bridge"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// NoticeMode is auto, modal or console.
	NoticeMode string `env:"NOTICE_MODE" envDefault:"auto"`

	// SettingsDir overrides the directory holding the settings sub-folders.
	SettingsDir string `env:"SETTINGS_DIR"`
}

// Sanitize applies guardrails to values loaded from env.
func (c *Config) Sanitize() {
	c.Bridge = strings.TrimSpace(c.Bridge)
	if c.Bridge == "" {
		c.Bridge = engine.DefaultBridgeBinary
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	case "warning":
		c.LogLevel = "warn"
	default:
		c.LogLevel = "info"
	}

	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat != "json" {
		c.LogFormat = "text"
	}

	c.NoticeMode = strings.ToLower(strings.TrimSpace(c.NoticeMode))
	switch c.NoticeMode {
	case notice.ModeAuto, notice.ModeModal, notice.ModeConsole:
	default:
		c.NoticeMode = notice.ModeAuto
	}

	c.SettingsDir = strings.TrimSpace(c.SettingsDir)
}

// Load reads .env from the working directory if present, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}
	return Parse(nil)
}

// Parse reads the configuration from environ, or from the process environment when
// environ is nil.
func Parse(environ map[string]string) (Config, error) {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger installs the diagnostic logger as slog default. Diagnostics go to w so
// stdout stays free for command output.
func InitLogger(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
