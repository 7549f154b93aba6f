package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
	"golang.org/x/time/rate"

	"github.com/zynfvr/sih2/db"
	"github.com/zynfvr/sih2/internal/answer"
	"github.com/zynfvr/sih2/internal/argo"
	"github.com/zynfvr/sih2/internal/config"
	"github.com/zynfvr/sih2/internal/extract"
	"github.com/zynfvr/sih2/internal/facts"
	"github.com/zynfvr/sih2/internal/index"
	"github.com/zynfvr/sih2/internal/log"
	"github.com/zynfvr/sih2/internal/memory"
	"github.com/zynfvr/sih2/internal/session"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup; call Close to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = log.New(log.Config{})
	}
	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized.
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	g, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}
	a.Embedder = embedder

	a.Argo, err = argo.NewStore(pool, logger)
	if err != nil {
		return nil, fmt.Errorf("creating float store: %w", err)
	}

	a.Index, err = index.New(pool, embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("creating semantic index: %w", err)
	}

	a.Memory, err = memory.NewStore(pool, embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("creating memory store: %w", err)
	}

	a.Tracker = session.NewTracker()

	resolver, err := facts.NewResolver(a.Argo, logger)
	if err != nil {
		return nil, fmt.Errorf("creating fact resolver: %w", err)
	}

	a.Answer, err = answer.NewService(g, extract.NewKeyword(), resolver,
		a.Index, a.Memory, a.Tracker,
		answer.Config{
			ModelName:    cfg.FullModelName(),
			IndexTopK:    cfg.IndexTopK,
			MemoryTopK:   cfg.MemoryTopK,
			ModelTimeout: cfg.ModelTimeout(),
			RateLimit:    rate.Limit(1),
			RateBurst:    3,
		}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating answer service: %w", err)
	}

	_, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	return a, nil
}

// SetupStorage runs migrations and returns just the database pool, for
// commands that never touch the model runtime.
func SetupStorage(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return provideDBPool(ctx, cfg)
}

// provideGenkit initializes Genkit with the Google AI plugin.
// The plugin reads GEMINI_API_KEY or GOOGLE_API_KEY from the environment.
func provideGenkit(ctx context.Context, cfg *config.Config, logger log.Logger) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with gemini provider")
	}
	logger.Info("initialized Genkit with gemini provider",
		"model", cfg.ModelName, "embedder", cfg.EmbedderModel)
	return g, nil
}

// provideDBPool runs migrations and creates the PostgreSQL connection pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	// The vector codecs must be registered per connection; binary COPY into
	// the embedding columns fails without them.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if err := pgxvector.RegisterTypes(ctx, conn); err != nil {
			return fmt.Errorf("registering vector types: %w", err)
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// Model returns the configured chat model, or nil when it is not registered.
func (a *App) Model() ai.Model {
	return googlegenai.GoogleAIModel(a.Genkit, a.Config.ModelName)
}
