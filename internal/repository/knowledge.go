package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventnav/program-service/internal/model"
)

// KnowledgeRepository stores denormalized assistant context chunks.
type KnowledgeRepository struct {
	db *pgxpool.Pool
}

// NewKnowledgeRepository constructs a KnowledgeRepository.
func NewKnowledgeRepository(db *pgxpool.Pool) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

// Replace swaps the chunk set for one event (or the global set when
// eventID is nil) in a single transaction, so retrieval never observes a
// half-rebuilt knowledge base.
func (r *KnowledgeRepository) Replace(ctx context.Context, eventID *uuid.UUID, chunks []model.KnowledgeChunk) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if eventID != nil {
		_, err = tx.Exec(ctx, `DELETE FROM knowledge_chunks WHERE event_id = $1`, *eventID)
	} else {
		_, err = tx.Exec(ctx, `DELETE FROM knowledge_chunks WHERE event_id IS NULL`)
	}
	if err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}

	for _, c := range chunks {
		extra := c.ExtraData
		if len(extra) == 0 {
			extra = []byte(`{}`)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO knowledge_chunks (id, event_id, chunk_type, content, extra_data, created_at)
			 VALUES ($1, $2, $3, $4, $5, now())`,
			uuid.New(), eventID, c.ChunkType, c.Content, extra,
		); err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// ListForEvent returns an event's chunks plus the global ones.
func (r *KnowledgeRepository) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]model.KnowledgeChunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, event_id, chunk_type, content, extra_data, created_at
		 FROM knowledge_chunks
		 WHERE event_id = $1 OR event_id IS NULL`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	defer rows.Close()

	var chunks []model.KnowledgeChunk
	for rows.Next() {
		var c model.KnowledgeChunk
		if err := rows.Scan(&c.ID, &c.EventID, &c.ChunkType, &c.Content, &c.ExtraData, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
