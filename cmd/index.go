package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/zynfvr/sih2/internal/app"
	"github.com/zynfvr/sih2/internal/config"
)

// runIndex rebuilds the semantic index from all stored cycles.
// The rebuild embeds every cycle summary, so it needs the API key.
func runIndex() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()
	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	cycles, err := a.Argo.Cycles(ctx)
	if err != nil {
		return fmt.Errorf("loading cycles: %w", err)
	}
	if len(cycles) == 0 {
		return fmt.Errorf("no cycles in database, run ingest first")
	}

	start := time.Now()
	n, err := a.Index.Build(ctx, cycles)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	fmt.Printf("Indexed %d cycle documents in %s\n", n, time.Since(start).Round(time.Millisecond))
	return nil
}
