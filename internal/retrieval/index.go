// Package retrieval selects conversation context for the coach prompt.
//
// This file implements the embedded history index: past turns stored with
// their embeddings in a sqlite-vec vec0 virtual table, searched by cosine
// distance.
package retrieval

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	// Register the sqlite-vec extension with the mattn/go-sqlite3 driver.
	// vec.Auto() registers it as an auto-loadable extension.
	vec.Auto()
}

// DefaultEmbeddingDim matches text-embedding-3-small.
const DefaultEmbeddingDim = 1536

// Embedder produces an embedding vector for one text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// HistoryIndex stores conversation turns with embeddings and answers
// similarity searches. It satisfies Searcher.
type HistoryIndex struct {
	db       *sql.DB
	embedder Embedder
	dim      int
}

// NewHistoryIndex opens (creating if needed) the index database at path.
// dim <= 0 falls back to DefaultEmbeddingDim.
func NewHistoryIndex(path string, dim int, embedder Embedder) (*HistoryIndex, error) {
	if dim <= 0 {
		dim = DefaultEmbeddingDim
	}
	slog.Debug("NewHistoryIndex invoked", "path", path, "dim", dim)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		slog.Error("Failed to create index directory", "error", err, "path", path)
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		slog.Error("Failed to open history index", "error", err, "path", path)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("History index ping failed", "error", err)
		return nil, err
	}

	schema := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS history_vec USING vec0(
			embedding float[%d],
			uid TEXT,
			content TEXT
		)`, dim)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		slog.Error("Failed to create vec0 virtual table", "error", err)
		return nil, fmt.Errorf("failed to create history index table: %w", err)
	}

	slog.Debug("History index ready", "path", path)
	return &HistoryIndex{db: db, embedder: embedder, dim: dim}, nil
}

// Add embeds one turn and stores it under the participant's uid.
func (h *HistoryIndex) Add(ctx context.Context, uid, content string) error {
	embedding, err := h.embedder.Embed(ctx, content)
	if err != nil {
		slog.Error("HistoryIndex Add embed failed", "error", err, "uid", uid)
		return fmt.Errorf("failed to embed turn: %w", err)
	}
	if len(embedding) != h.dim {
		return fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(embedding), h.dim)
	}

	_, err = h.db.ExecContext(ctx,
		`INSERT INTO history_vec (embedding, uid, content) VALUES (?, ?, ?)`,
		encodeFloat32Slice(embedding), uid, content)
	if err != nil {
		slog.Error("HistoryIndex Add insert failed", "error", err, "uid", uid)
		return fmt.Errorf("failed to index turn: %w", err)
	}
	slog.Debug("HistoryIndex Add succeeded", "uid", uid, "length", len(content))
	return nil
}

// Search returns up to limit stored turns for uid ordered by cosine
// distance to the query.
func (h *HistoryIndex) Search(ctx context.Context, uid, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultRelevantHistory
	}
	embedding, err := h.embedder.Embed(ctx, query)
	if err != nil {
		slog.Error("HistoryIndex Search embed failed", "error", err, "uid", uid)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT content, vec_distance_cosine(embedding, ?) AS distance
		FROM history_vec
		WHERE uid = ?
		ORDER BY distance ASC
		LIMIT ?`, encodeFloat32Slice(embedding), uid, limit)
	if err != nil {
		slog.Error("HistoryIndex Search query failed", "error", err, "uid", uid)
		return nil, fmt.Errorf("failed to search history index: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Content, &r.Distance); err != nil {
			slog.Error("HistoryIndex Search scan failed", "error", err, "uid", uid)
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slog.Debug("HistoryIndex Search succeeded", "uid", uid, "results", len(results))
	return results, nil
}

// Close closes the index database.
func (h *HistoryIndex) Close() error {
	return h.db.Close()
}

// encodeFloat32Slice converts an embedding to the little-endian float32
// blob format sqlite-vec expects.
func encodeFloat32Slice(embedding []float64) []byte {
	buf := make([]byte, len(embedding)*4)
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
	}
	return buf
}
