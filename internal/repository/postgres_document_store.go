package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"draftshare/internal/domain"
)

const grantDocumentName = "share_grants"

type PostgresDocumentStore struct {
	db *sqlx.DB
}

func NewPostgresDocumentStore(db *sqlx.DB) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db}
}

func (s *PostgresDocumentStore) Load(ctx context.Context) (domain.OwnerGrantSet, int64, error) {
	var row struct {
		Doc      []byte `db:"doc"`
		Revision int64  `db:"revision"`
	}

	query := `SELECT doc, revision FROM grant_documents WHERE name = $1`
	if err := s.db.GetContext(ctx, &row, query, grantDocumentName); err != nil {
		if err == sql.ErrNoRows {
			return domain.OwnerGrantSet{}, 0, nil
		}
		return nil, 0, fmt.Errorf("%w: load document: %v", domain.ErrStoreUnavailable, err)
	}

	var set domain.OwnerGrantSet
	if err := json.Unmarshal(row.Doc, &set); err != nil {
		// Повреждённый документ не должен ронять операцию, начинаем с пустого
		log.Printf("[PostgresDocumentStore] Malformed grant document, treating as empty: %v", err)
		return domain.OwnerGrantSet{}, row.Revision, nil
	}
	if set == nil {
		set = domain.OwnerGrantSet{}
	}
	return set, row.Revision, nil
}

func (s *PostgresDocumentStore) Save(ctx context.Context, set domain.OwnerGrantSet, revision int64) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshal grant document: %w", err)
	}

	if revision == 0 {
		query := `
            INSERT INTO grant_documents (name, doc, revision)
            VALUES ($1, $2, 1)
            ON CONFLICT (name) DO NOTHING`
		result, err := s.db.ExecContext(ctx, query, grantDocumentName, raw)
		if err != nil {
			return fmt.Errorf("%w: insert document: %v", domain.ErrStoreUnavailable, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: insert document: %v", domain.ErrStoreUnavailable, err)
		}
		if rows == 0 {
			return domain.ErrRevisionConflict
		}
		return nil
	}

	query := `
        UPDATE grant_documents
        SET doc = $1, revision = revision + 1
        WHERE name = $2 AND revision = $3`
	result, err := s.db.ExecContext(ctx, query, raw, grantDocumentName, revision)
	if err != nil {
		return fmt.Errorf("%w: update document: %v", domain.ErrStoreUnavailable, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update document: %v", domain.ErrStoreUnavailable, err)
	}
	if rows == 0 {
		return domain.ErrRevisionConflict
	}
	return nil
}
