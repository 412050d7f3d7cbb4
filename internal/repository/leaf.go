package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"wildberries/catalog/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS leaf_subjects (
	leaf_id       BIGINT PRIMARY KEY,
	leaf_name     TEXT NOT NULL,
	leaf_full_url TEXT NOT NULL,
	subjects      JSONB NOT NULL DEFAULT '[]',
	error         TEXT,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertLeaf = `
INSERT INTO leaf_subjects (leaf_id, leaf_name, leaf_full_url, subjects, error, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (leaf_id)
DO UPDATE SET leaf_name = $2, leaf_full_url = $3, subjects = $4, error = $5, updated_at = now()`

// DB is the subset of pgxpool.Pool the repository needs
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type LeafRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveLeafRecords(ctx context.Context, records []domain.LeafRecord) error
}

type leafRepository struct {
	db DB
}

func NewLeafRepository(db DB) LeafRepository {
	return &leafRepository{
		db: db,
	}
}

func (r *leafRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create leaf_subjects table: %w", err)
	}
	return nil
}

// SaveLeafRecords upserts all records in one transaction
func (r *leafRepository) SaveLeafRecords(ctx context.Context, records []domain.LeafRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, record := range records {
		subjects := record.Subjects
		if subjects == nil {
			subjects = []domain.Subject{}
		}
		data, err := json.Marshal(subjects)
		if err != nil {
			return fmt.Errorf("failed to encode subjects of leaf %d: %w", record.LeafID, err)
		}

		_, err = tx.Exec(ctx, upsertLeaf, record.LeafID, record.LeafName, record.LeafFullURL, data, record.Error)
		if err != nil {
			return fmt.Errorf("failed to save leaf %d: %w", record.LeafID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit leaf records: %w", err)
	}
	return nil
}
