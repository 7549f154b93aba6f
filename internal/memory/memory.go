// Package memory provides the append-only conversational memory store.
//
// Each exchange persists the assistant's answer as the searchable content
// with the user's question alongside it. Memories are scoped per session
// and retrieved by vector similarity, so earlier exchanges resurface when
// a later question comes close in meaning.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zynfvr/sih2/internal/index"
)

const (
	insertMemorySQL = `
		INSERT INTO memories (session_id, question, content, embedding)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	searchMemorySQL = `
		SELECT question, content, 1 - (embedding <=> $2) AS similarity
		FROM memories
		WHERE session_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3`

	countMemorySQL = `SELECT COUNT(*) FROM memories WHERE session_id = $1`
)

// Entry is a recalled exchange, nearest first.
type Entry struct {
	Question   string
	Content    string
	Similarity float32
}

// PromptText renders the entry as a retrieved-document line.
func (e Entry) PromptText() string {
	var b strings.Builder
	b.WriteString("Previous exchange")
	if e.Question != "" {
		b.WriteString(" (asked: ")
		b.WriteString(e.Question)
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(e.Content)
	return b.String()
}

// Store is the pgvector-backed conversational memory.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool     *pgxpool.Pool
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewStore creates a memory Store.
func NewStore(pool *pgxpool.Pool, embedder ai.Embedder, logger *slog.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, embedder: embedder, logger: logger}, nil
}

// Append persists one exchange. The answer is embedded and stored as the
// searchable content; the question rides along for prompt rendering.
func (s *Store) Append(ctx context.Context, sessionID, question, answer string) error {
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if answer == "" {
		return fmt.Errorf("answer is required")
	}

	vec, err := index.EmbedText(ctx, s.embedder, answer)
	if err != nil {
		return fmt.Errorf("embedding answer: %w", err)
	}

	var id string
	if err := s.pool.QueryRow(ctx, insertMemorySQL,
		sessionID, question, answer, vec).Scan(&id); err != nil {
		return fmt.Errorf("inserting memory: %w", err)
	}

	s.logger.Debug("memory appended", "session_id", sessionID, "memory_id", id)
	return nil
}

// Search returns the k memories of the session nearest to the query.
func (s *Store) Search(ctx context.Context, sessionID, query string, k int) ([]Entry, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if k < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", k)
	}

	vec, err := index.EmbedText(ctx, s.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.pool.Query(ctx, searchMemorySQL, sessionID, vec, k)
	if err != nil {
		return nil, fmt.Errorf("searching memories: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Question, &e.Content, &e.Similarity); err != nil {
			return nil, fmt.Errorf("scanning memory: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating memories: %w", err)
	}
	return entries, nil
}

// Count returns how many memories the session has accumulated.
func (s *Store) Count(ctx context.Context, sessionID string) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, countMemorySQL, sessionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting memories: %w", err)
	}
	return n, nil
}
