package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"draftshare/internal/domain"
)

type ContentRepository struct {
	db *sqlx.DB
}

func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Content, error) {
	var content domain.Content
	query := `SELECT * FROM contents WHERE id = $1`
	if err := r.db.GetContext(ctx, &content, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return &content, nil
}

// GetPublishedByID — обычный публичный запрос: статусный фильтр
// отсекает черновики и отложенные записи.
func (r *ContentRepository) GetPublishedByID(ctx context.Context, id uuid.UUID) (*domain.Content, error) {
	var content domain.Content
	query := `SELECT * FROM contents WHERE id = $1 AND status = $2`
	if err := r.db.GetContext(ctx, &content, query, id, domain.StatusPublish); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to get published content: %w", err)
	}
	return &content, nil
}

func (r *ContentRepository) ListDraftsByOwner(ctx context.Context, ownerID string) ([]domain.ContentSummary, error) {
	query := `
        SELECT id, title FROM contents
        WHERE owner_id = $1 AND status = $2
        ORDER BY updated_at DESC`

	var drafts []domain.ContentSummary
	if err := r.db.SelectContext(ctx, &drafts, query, ownerID, domain.StatusDraft); err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, nil
}

func (r *ContentRepository) ListScheduledByOwner(ctx context.Context, ownerID string) ([]domain.ContentSummary, error) {
	query := `
        SELECT id, title FROM contents
        WHERE owner_id = $1 AND status = $2
        ORDER BY updated_at DESC`

	var scheduled []domain.ContentSummary
	if err := r.db.SelectContext(ctx, &scheduled, query, ownerID, domain.StatusFuture); err != nil {
		return nil, fmt.Errorf("failed to list scheduled content: %w", err)
	}
	return scheduled, nil
}
