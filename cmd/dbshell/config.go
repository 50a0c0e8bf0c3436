package main

import (
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is read from the file named by -config. Flags override it.
type Config struct {
	URL         string `toml:"url"`
	BusyTimeout int    `toml:"busy_timeout"` // milliseconds, SQLite only
	LogLevel    string `toml:"log_level"`    // debug, info, warn or error
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
