// Package app wires the application together.
//
// App is the container holding every long-lived component: the database
// pool, the Genkit runtime, the stores and the answer service. Setup
// builds it top to bottom; Close releases everything in reverse.
package app

import (
	"context"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zynfvr/sih2/internal/answer"
	"github.com/zynfvr/sih2/internal/argo"
	"github.com/zynfvr/sih2/internal/config"
	"github.com/zynfvr/sih2/internal/index"
	"github.com/zynfvr/sih2/internal/memory"
	"github.com/zynfvr/sih2/internal/session"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool

	Argo    *argo.Store
	Index   *index.Index
	Memory  *memory.Store
	Tracker *session.Tracker
	Answer  *answer.Service

	cancel context.CancelFunc
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}

	if a.cancel != nil {
		a.cancel()
	}

	if a.DBPool != nil {
		a.DBPool.Close()
		if a.Logger != nil {
			a.Logger.Info("database pool closed")
		}
	}

	return nil
}
