package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"jamesfarrell.me/video-search/internal/storage/models"
)

// IndexRepository persists chunks and their embeddings in Postgres with the
// pgvector extension, so the index survives process restarts.
type IndexRepository struct {
	db   *sql.DB
	dims int
}

func NewIndexRepository(db *sql.DB, dims int) *IndexRepository {
	if dims <= 0 {
		dims = 1536 // text-embedding-ada-002
	}
	return &IndexRepository{db: db, dims: dims}
}

// EnsureSchema creates the vector extension and chunk table if missing.
func (r *IndexRepository) EnsureSchema(ctx context.Context) error {
	schema := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS video_chunks (
			id              BIGSERIAL PRIMARY KEY,
			video_id        TEXT NOT NULL,
			video_path      TEXT NOT NULL,
			chunk_index     INT NOT NULL,
			chunk_text      TEXT NOT NULL,
			chunk_start     DOUBLE PRECISION NOT NULL,
			chunk_end       DOUBLE PRECISION NOT NULL,
			chunk_embedding vector(%d) NOT NULL
		)`, r.dims)
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema failed: %w", err)
	}
	return nil
}

// Append inserts all entries in a single transaction, so a concurrent Search
// sees either none or all of the video's chunks.
func (r *IndexRepository) Append(ctx context.Context, entries []models.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO video_chunks (video_id, video_path, chunk_index, chunk_text, chunk_start, chunk_end, chunk_embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return fmt.Errorf("prepare statement failed: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx,
			e.VideoID,
			e.VideoPath,
			e.ChunkIndex,
			e.Text,
			e.StartTime,
			e.EndTime,
			pgvector.NewVector(e.Embedding),
		)
		if err != nil {
			return fmt.Errorf("chunk insert failed: %w", err)
		}
	}
	return tx.Commit()
}

// Search ranks chunks by cosine similarity using the pgvector `<=>` operator.
// The secondary sort keys keep the output deterministic when scores tie.
func (r *IndexRepository) Search(ctx context.Context, query []float32, topK int) ([]models.SearchResult, error) {
	if topK <= 0 {
		return []models.SearchResult{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			chunk_text,
			chunk_start,
			chunk_end,
			video_path,
			chunk_index,
			1 - (chunk_embedding <=> $1) AS similarity
		FROM video_chunks
		ORDER BY chunk_embedding <=> $1, chunk_index, id
		LIMIT $2
	`, pgvector.NewVector(query), topK)
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}
	defer rows.Close()

	results := []models.SearchResult{}
	for rows.Next() {
		var res models.SearchResult
		err := rows.Scan(
			&res.Text,
			&res.StartTime,
			&res.EndTime,
			&res.VideoPath,
			&res.ChunkIndex,
			&res.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// Stats reports the aggregate index counters.
func (r *IndexRepository) Stats(ctx context.Context) (models.IndexStats, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT video_id), COALESCE(SUM(chunk_end - chunk_start), 0)
		FROM video_chunks
	`)

	var stats models.IndexStats
	if err := row.Scan(&stats.TotalChunks, &stats.TotalVideos, &stats.TotalDuration); err != nil {
		return models.IndexStats{}, fmt.Errorf("index stats query failed: %w", err)
	}
	return stats, nil
}
