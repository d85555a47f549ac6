package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"finmgmt/internal/domain/summary"
)

// SummaryRepository reads and writes the materialized summary document
type SummaryRepository struct {
	client *firestore.Client
}

func NewSummaryRepository(client *firestore.Client) *SummaryRepository {
	return &SummaryRepository{client: client}
}

// Get reads the "current" document, falling back to the first document of
// the collection the way the web client reads it.
func (r *SummaryRepository) Get(ctx context.Context) (*summary.Summary, error) {
	ctx, span := startSpan(ctx, "Get", SummaryCollection)

	col := r.client.Collection(SummaryCollection)
	snap, err := col.Doc(summary.DocumentID).Get(ctx)
	if isNotFound(err) {
		snap, err = firstDocument(ctx, col)
	}
	endSpan(span, err)
	if isNotFound(err) {
		return nil, summary.ErrSummaryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	var s summary.Summary
	if err := snap.DataTo(&s); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	s.ID = snap.Ref.ID

	return &s, nil
}

func (r *SummaryRepository) Save(ctx context.Context, s *summary.Summary) error {
	ctx, span := startSpan(ctx, "Set", SummaryCollection)
	_, err := r.client.Collection(SummaryCollection).Doc(summary.DocumentID).Set(ctx, s)
	if endSpan(span, err) != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}

func firstDocument(ctx context.Context, col *firestore.CollectionRef) (*firestore.DocumentSnapshot, error) {
	iter := col.Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, errNoDocuments
	}
	return snap, err
}
