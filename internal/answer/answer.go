// Package answer orchestrates a single question/answer exchange.
//
// The pipeline runs entity extraction, then fact resolution and vector
// retrieval concurrently, assembles the prompt and makes exactly one model
// call. Session context and conversational memory commit only after the
// model answered, so a failed call leaves no trace in either.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/zynfvr/sih2/internal/extract"
	"github.com/zynfvr/sih2/internal/index"
	"github.com/zynfvr/sih2/internal/memory"
	"github.com/zynfvr/sih2/internal/prompt"
	"github.com/zynfvr/sih2/internal/session"
)

// Sentinel errors surfaced to callers.
var (
	ErrEmptyQuestion   = errors.New("question is empty")
	ErrGenerateTimeout = errors.New("model call timed out")
)

// FactResolver resolves entities to grounded fact sentences.
type FactResolver interface {
	Resolve(ctx context.Context, question string, ents extract.Entities) []string
}

// Retriever searches the semantic index.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]index.Result, error)
}

// Memory searches and appends per-session conversational memory.
type Memory interface {
	Search(ctx context.Context, sessionID, query string, k int) ([]memory.Entry, error)
	Append(ctx context.Context, sessionID, question, answer string) error
}

// Config tunes the answer pipeline.
type Config struct {
	ModelName    string // full genkit model name, e.g. "googleai/gemini-2.5-flash"
	IndexTopK    int
	MemoryTopK   int
	ModelTimeout time.Duration
	RateLimit    rate.Limit // model calls per second, 0 means default
	RateBurst    int
}

// Service answers questions over the float database.
//
// Service is safe for concurrent use; per-session state lives in the
// session tracker, everything else is read-only after construction.
type Service struct {
	g         *genkit.Genkit
	extractor extract.Extractor
	facts     FactResolver
	retriever Retriever
	memory    Memory
	tracker   *session.Tracker
	limiter   *rate.Limiter
	cfg       Config
	logger    *slog.Logger
}

// NewService creates a Service. All dependencies are required.
func NewService(g *genkit.Genkit, extractor extract.Extractor, facts FactResolver,
	retriever Retriever, mem Memory, tracker *session.Tracker,
	cfg Config, logger *slog.Logger) (*Service, error) {

	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if facts == nil {
		return nil, fmt.Errorf("fact resolver is required")
	}
	if retriever == nil {
		return nil, fmt.Errorf("retriever is required")
	}
	if mem == nil {
		return nil, fmt.Errorf("memory store is required")
	}
	if tracker == nil {
		return nil, fmt.Errorf("session tracker is required")
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if cfg.IndexTopK < 1 {
		cfg.IndexTopK = 5
	}
	if cfg.MemoryTopK < 1 {
		cfg.MemoryTopK = 2
	}
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = 60 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = rate.Limit(1)
	}
	if cfg.RateBurst < 1 {
		cfg.RateBurst = 3
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		g:         g,
		extractor: extractor,
		facts:     facts,
		retriever: retriever,
		memory:    mem,
		tracker:   tracker,
		limiter:   rate.NewLimiter(cfg.RateLimit, cfg.RateBurst),
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Answer runs the full pipeline for one question and returns the model's
// answer. Session context and memory are updated only on success.
func (s *Service) Answer(ctx context.Context, sessionID, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	if sessionID == "" {
		return "", fmt.Errorf("session id is required")
	}

	start := time.Now()
	ents := s.extractor.Extract(question)
	s.logger.Debug("entities extracted",
		"session_id", sessionID,
		"float_id", ents.FloatID,
		"region", ents.Region,
		"parameter", ents.Parameter)

	var (
		facts []string
		docs  []string
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		facts = s.facts.Resolve(groupCtx, question, ents)
		return nil
	})
	group.Go(func() error {
		docs = s.retrieve(groupCtx, sessionID, question)
		return nil
	})
	if err := group.Wait(); err != nil {
		return "", fmt.Errorf("gathering context: %w", err)
	}

	contextBlock := s.tracker.Get(sessionID).Snapshot().PromptBlock()
	fullPrompt := prompt.Compose(facts, docs, contextBlock, question)

	answer, err := s.generate(ctx, fullPrompt)
	if err != nil {
		return "", err
	}

	s.commit(ctx, sessionID, question, answer, ents)

	s.logger.Info("question answered",
		"session_id", sessionID,
		"facts", len(facts),
		"documents", len(docs),
		"duration", time.Since(start))
	return answer, nil
}

// ClearSession drops the in-memory context for a session.
func (s *Service) ClearSession(sessionID string) {
	s.tracker.Delete(sessionID)
}

// retrieve gathers memory hits then index hits. Retrieval failures
// degrade the answer but never fail it; the pipeline continues with
// whatever was found.
func (s *Service) retrieve(ctx context.Context, sessionID, question string) []string {
	var docs []string

	entries, err := s.memory.Search(ctx, sessionID, question, s.cfg.MemoryTopK)
	if err != nil {
		s.logger.Warn("memory search failed", "session_id", sessionID, "error", err)
	}
	for _, e := range entries {
		docs = append(docs, e.PromptText())
	}

	results, err := s.retriever.Search(ctx, question, s.cfg.IndexTopK)
	if err != nil {
		s.logger.Warn("index search failed", "session_id", sessionID, "error", err)
	}
	for _, r := range results {
		docs = append(docs, r.Content)
	}

	return docs
}

// generate makes the single model call, gated by the rate limiter and
// bounded by the model timeout.
func (s *Service) generate(ctx context.Context, fullPrompt string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.ModelTimeout)
	defer cancel()

	resp, err := genkit.Generate(genCtx, s.g,
		ai.WithModelName(s.cfg.ModelName),
		ai.WithPrompt(fullPrompt))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("%w after %s", ErrGenerateTimeout, s.cfg.ModelTimeout)
		}
		return "", fmt.Errorf("generating answer: %w", err)
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		return "", fmt.Errorf("model returned an empty answer")
	}
	return answer, nil
}

// commit records the successful exchange: session context first, then the
// durable memory. A memory write failure is logged and swallowed so the
// user still gets the answer.
func (s *Service) commit(ctx context.Context, sessionID, question, answer string, ents extract.Entities) {
	s.tracker.Get(sessionID).Update(ents, question)

	if err := s.memory.Append(ctx, sessionID, question, answer); err != nil {
		s.logger.Warn("appending memory failed", "session_id", sessionID, "error", err)
	}
}
