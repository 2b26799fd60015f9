// Command songplay-warehouse loads song metadata files and user activity
// logs into the songplay star schema, then exits.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	"github.com/justestif/go-songplay-warehouse/internal/config"
	"github.com/justestif/go-songplay-warehouse/internal/db"
	"github.com/justestif/go-songplay-warehouse/internal/etl"
)

// Set by LDFLAGS
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; deployed environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pflag.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL connection string")
	pflag.StringVar(&cfg.SongDataDir, "song-dir", cfg.SongDataDir, "directory of song metadata files")
	pflag.StringVar(&cfg.LogDataDir, "log-dir", cfg.LogDataDir, "directory of activity log files")
	pflag.Float64Var(&cfg.DurationTolerance, "duration-tolerance", cfg.DurationTolerance, "seconds of slack when matching song duration during lookup")
	pflag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable debug logging")
	showVersion := pflag.Bool("version", false, "print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Println(version)
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.Verbose).With("run_id", uuid.NewString())
	ctx := context.Background()

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	driver := etl.NewDriver(etl.NewDatabase(database), logger)

	// Song metadata first: the log phase's dimension lookup expects the
	// songs and artists to be loaded already.
	logger.Info("loading song metadata", "dir", cfg.SongDataDir)
	if err := driver.Run(ctx, cfg.SongDataDir, etl.ProcessSongFile); err != nil {
		return fmt.Errorf("loading song metadata: %w", err)
	}

	events := etl.NewEventProcessor(etl.WithDurationTolerance(cfg.DurationTolerance))
	logger.Info("loading activity logs", "dir", cfg.LogDataDir)
	if err := driver.Run(ctx, cfg.LogDataDir, events.Process); err != nil {
		return fmt.Errorf("loading activity logs: %w", err)
	}

	logger.Info("load complete")
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
}
