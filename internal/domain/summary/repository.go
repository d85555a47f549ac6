package summary

import "context"

// Repository reads and writes the materialized summary document
type Repository interface {
	// Get returns ErrSummaryNotFound when nothing has been materialized yet
	Get(ctx context.Context) (*Summary, error)
	Save(ctx context.Context, s *Summary) error
}
