package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"finmgmt/internal/domain/summary"
)

// SummaryRepository stores the materialized summary as a JSONB document
type SummaryRepository struct {
	db *DB
}

func NewSummaryRepository(db *DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Get returns the "current" summary, falling back to the most recently
// generated one when that row is missing.
func (r *SummaryRepository) Get(ctx context.Context) (*summary.Summary, error) {
	query := `
		SELECT id, data
		FROM financial_summaries
		ORDER BY (id = $1) DESC, generated_at DESC
		LIMIT 1
	`

	var id string
	var data []byte
	err := r.db.QueryRowContext(ctx, query, summary.DocumentID).Scan(&id, &data)
	if err == sql.ErrNoRows {
		return nil, summary.ErrSummaryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	var s summary.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	s.ID = id

	return &s, nil
}

func (r *SummaryRepository) Save(ctx context.Context, s *summary.Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	query := `
		INSERT INTO financial_summaries (id, data, generated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
		    data = EXCLUDED.data,
		    generated_at = EXCLUDED.generated_at
	`

	if _, err := r.db.ExecContext(ctx, query, summary.DocumentID, string(data), s.GeneratedAt); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	return nil
}
