package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr  string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath    string     `env:"DB_PATH" envDefault:"data/molkky.db"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir    string     `env:"SPA_DIR" envDefault:"../web/dist"`
	MaxTables int        `env:"MAX_TABLES" envDefault:"256"`
}

// Load reads an optional .env file from the working directory, then the
// process environment. Variables already set win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.MaxTables < 1 {
		return nil, fmt.Errorf("MAX_TABLES must be positive, got %d", cfg.MaxTables)
	}
	return &cfg, nil
}
