package main

import (
	"context"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/tomyedwab/dbfacade/dburl"
	"github.com/tomyedwab/dbfacade/sqlite3"
)

func main() {
	dbURL := flag.String("db", "", "Database URL, e.g. sqlite3:app.db or postgres://localhost/app")
	configPath := flag.String("config", "", "Path to a TOML config file")
	backupPath := flag.String("backup", "", "Copy the SQLite database to this file and exit")
	verbose := flag.Bool("v", false, "Log at debug level")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", *configPath, err)
	}
	if *dbURL != "" {
		cfg.URL = *dbURL
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.level()}))
	slog.SetDefault(logger)

	if cfg.URL == "" {
		log.Fatal("Database URL must be provided via -db flag or the config file")
	}

	db, err := dburl.Open(context.Background(), cfg.URL, dburl.Options{
		Logger:  logger,
		SQLite3: sqlite3.Config{BusyTimeout: time.Duration(cfg.BusyTimeout) * time.Millisecond},
	})
	if err != nil {
		logger.Error("Failed to open database", "url", cfg.URL, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if *backupPath != "" {
		err := sqlite3.Backup(db, *backupPath, sqlite3.BackupConfig{
			Progress: func(remaining, total int) {
				logger.Info("Backup progress", "copied", total-remaining, "total", total)
			},
		})
		if err != nil {
			logger.Error("Backup failed", "path", *backupPath, "error", err)
			os.Exit(1)
		}
		return
	}

	var input io.Reader = os.Stdin
	if flag.NArg() > 0 {
		input = strings.NewReader(strings.Join(flag.Args(), ";\n"))
	}
	if err := run(db, input, os.Stdout); err != nil {
		logger.Error("Statement failed", "error", err)
		os.Exit(1)
	}
}
