package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zynfvr/sih2/internal/app"
	"github.com/zynfvr/sih2/internal/argo"
	"github.com/zynfvr/sih2/internal/config"
)

// runIngest loads float CSV exports from a directory into PostgreSQL.
// Existing rows are replaced, so ingest is safe to rerun.
func runIngest() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: floatchat ingest <dir>")
	}
	dir := os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateStorage(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()
	pool, err := app.SetupStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	loader, err := argo.NewLoader(pool, logger)
	if err != nil {
		return fmt.Errorf("creating loader: %w", err)
	}

	start := time.Now()
	stats, err := loader.LoadDir(ctx, dir)
	if err != nil {
		return fmt.Errorf("loading %s: %w", dir, err)
	}

	fmt.Printf("Ingested %d floats, %d cycles, %d measurements in %s\n",
		stats.Floats, stats.Cycles, stats.Measurements,
		time.Since(start).Round(time.Millisecond))
	return nil
}
