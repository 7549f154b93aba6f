// Package index provides the semantic index over per-cycle summaries.
//
// The index is built once at initialization from the cycles table and is
// read-only afterward; Build is the only writer of cycle_documents.
// Vector search runs on PostgreSQL + pgvector with cosine distance.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/genai"

	"github.com/zynfvr/sih2/internal/argo"
)

// VectorDimension is the embedding width stored in pgvector columns.
// gemini-embedding-001 is truncated to this via OutputDimensionality;
// the value must match the vector(768) columns in the schema.
const VectorDimension int32 = 768

// EmbedTimeout bounds a single embedding request.
const EmbedTimeout = 15 * time.Second

// embedBatchSize is how many summaries are embedded per request during Build.
const embedBatchSize = 64

// Result is a single retrieval hit, nearest first.
type Result struct {
	Content    string
	Metadata   map[string]string
	Similarity float32
}

// Index is the pgvector-backed semantic index over cycle summaries.
//
// Index is safe for concurrent use by multiple goroutines.
type Index struct {
	pool     *pgxpool.Pool
	embedder ai.Embedder
	logger   *slog.Logger
}

// New creates an Index.
func New(pool *pgxpool.Pool, embedder ai.Embedder, logger *slog.Logger) (*Index, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{pool: pool, embedder: embedder, logger: logger}, nil
}

// Build rebuilds the index from cycle summaries. The rebuild is atomic:
// existing documents are truncated and replaced in one transaction.
// Returns the number of documents indexed.
func (ix *Index) Build(ctx context.Context, cycles []argo.Cycle) (int, error) {
	tx, err := ix.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			ix.logger.Debug("index build rollback", "error", rbErr)
		}
	}()

	if _, err := tx.Exec(ctx, `TRUNCATE cycle_documents`); err != nil {
		return 0, fmt.Errorf("truncating cycle_documents: %w", err)
	}

	indexed := 0
	for start := 0; start < len(cycles); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(cycles) {
			end = len(cycles)
		}
		batch := cycles[start:end]

		vectors, err := ix.embedBatch(ctx, batch)
		if err != nil {
			return 0, err
		}

		rows := make([][]any, 0, len(batch))
		for i, c := range batch {
			metadata, err := json.Marshal(cycleMetadata(c))
			if err != nil {
				return 0, fmt.Errorf("marshaling metadata: %w", err)
			}
			rows = append(rows, []any{
				c.PlatformNumber, c.CycleNumber, c.Summary(), vectors[i], metadata,
			})
		}

		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"cycle_documents"},
			[]string{"platform_number", "cycle_number", "content", "embedding", "metadata"},
			pgx.CopyFromRows(rows))
		if err != nil {
			return 0, fmt.Errorf("copying documents: %w", err)
		}
		indexed += int(n)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing index build: %w", err)
	}

	ix.logger.Info("semantic index built", "documents", indexed)
	return indexed, nil
}

// Count returns the number of indexed documents.
func (ix *Index) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := ix.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cycle_documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// Search returns the k nearest documents to the query, nearest first.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", k)
	}

	vec, err := embedText(ctx, ix.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := ix.pool.Query(ctx,
		`SELECT content, metadata, 1 - (embedding <=> $1) AS similarity
		 FROM cycle_documents
		 ORDER BY embedding <=> $1
		 LIMIT $2`, vec, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			r            Result
			metadataJSON []byte
		)
		if err := rows.Scan(&r.Content, &metadataJSON, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if err := json.Unmarshal(metadataJSON, &r.Metadata); err != nil {
			ix.logger.Warn("parsing document metadata", "error", err)
			r.Metadata = make(map[string]string)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return results, nil
}

// embedBatch embeds cycle summaries in a single request.
func (ix *Index) embedBatch(ctx context.Context, cycles []argo.Cycle) ([]pgvector.Vector, error) {
	embedCtx, cancel := context.WithTimeout(ctx, EmbedTimeout)
	defer cancel()

	docs := make([]*ai.Document, len(cycles))
	for i, c := range cycles {
		docs[i] = ai.DocumentFromText(c.Summary(), nil)
	}

	dim := VectorDimension
	resp, err := ix.embedder.Embed(embedCtx, &ai.EmbedRequest{
		Input:   docs,
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding batch: %w", err)
	}
	if len(resp.Embeddings) != len(docs) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d",
			len(resp.Embeddings), len(docs))
	}

	vectors := make([]pgvector.Vector, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if len(e.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding at position %d", i)
		}
		vectors[i] = pgvector.NewVector(e.Embedding)
	}
	return vectors, nil
}

// embedText generates a vector embedding for a single text.
// Shared with the memory store.
func embedText(ctx context.Context, embedder ai.Embedder, text string) (pgvector.Vector, error) {
	embedCtx, cancel := context.WithTimeout(ctx, EmbedTimeout)
	defer cancel()

	dim := VectorDimension
	resp, err := embedder.Embed(embedCtx, &ai.EmbedRequest{
		Input:   []*ai.Document{ai.DocumentFromText(text, nil)},
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("embedding text: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return pgvector.Vector{}, fmt.Errorf("empty embedding response")
	}
	return pgvector.NewVector(resp.Embeddings[0].Embedding), nil
}

// EmbedText is the exported embedding helper used by the memory store.
func EmbedText(ctx context.Context, embedder ai.Embedder, text string) (pgvector.Vector, error) {
	return embedText(ctx, embedder, text)
}

// cycleMetadata builds the retrievable metadata stored with each document.
func cycleMetadata(c argo.Cycle) map[string]string {
	return map[string]string{
		"platform_number": c.PlatformNumber,
		"cycle_number":    strconv.Itoa(int(c.CycleNumber)),
		"date":            c.Date.Format("2006-01-02"),
		"latitude":        strconv.FormatFloat(c.Latitude, 'f', 3, 64),
		"longitude":       strconv.FormatFloat(c.Longitude, 'f', 3, 64),
		"data_mode":       c.DataMode,
	}
}
