package transaction

import (
	"context"
	"errors"
	"log"
	"time"

	"finmgmt/internal/domain/event"
)

// Service contains the business logic for transaction operations
type Service struct {
	repo      Repository
	publisher event.Publisher
	now       func() time.Time
}

// NewService creates a new transaction service. publisher may be nil.
func NewService(repo Repository, publisher event.Publisher) *Service {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &Service{repo: repo, publisher: publisher, now: time.Now}
}

// WithClock replaces the time source used for audit timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create validates params, stamps createdAt/updatedAt and stores the transaction.
func (s *Service) Create(ctx context.Context, params CreateParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	now := s.now().UTC()
	params.CreatedAt = now
	params.UpdatedAt = now

	id, err := s.repo.Create(ctx, params)
	if err != nil {
		return "", err
	}

	event.Emit(ctx, s.publisher, event.Event{
		Name:       event.TransactionCreated,
		EntityID:   id,
		ActorID:    params.CreatedBy.ID,
		OccurredAt: now,
		Data: map[string]string{
			"type":   string(params.Type),
			"status": string(params.Status),
		},
	})
	return id, nil
}

// Get retrieves a transaction by ID
func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	if id == "" {
		return nil, ErrTransactionNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// List returns transactions ordered by due date, newest first
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	if filter.Type != "" && !IsValidType(filter.Type) {
		return nil, ErrInvalidType
	}
	if filter.Status != "" && !IsValidStatus(filter.Status) {
		return nil, ErrInvalidStatus
	}
	if filter.Limit < 0 {
		filter.Limit = 0
	}
	return s.repo.List(ctx, filter)
}

// Update applies a partial update and refreshes updatedAt.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) error {
	if id == "" {
		return ErrTransactionNotFound
	}
	if err := params.Validate(); err != nil {
		return err
	}

	params.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, id, params); err != nil {
		return err
	}

	data := map[string]string{}
	if params.Status != nil {
		data["status"] = string(*params.Status)
	}
	event.Emit(ctx, s.publisher, event.Event{
		Name:       event.TransactionUpdated,
		EntityID:   id,
		OccurredAt: params.UpdatedAt,
		Data:       data,
	})
	return nil
}

// Delete removes a transaction. Payments recorded against it are left untouched.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrTransactionNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	event.Emit(ctx, s.publisher, event.Event{Name: event.TransactionDeleted, EntityID: id})
	return nil
}

// MarkOverdue moves every pending transaction whose due day ended before
// today (UTC) to overdue and returns the transactions it changed. A failure on one
// transaction is logged and the sweep continues.
func (s *Service) MarkOverdue(ctx context.Context) ([]*Transaction, error) {
	cutoff := OverdueCutoff(s.now())

	candidates, err := s.repo.List(ctx, ListFilter{Status: StatusPending, DueBefore: cutoff})
	if err != nil {
		return nil, err
	}

	overdue := StatusOverdue
	var swept []*Transaction
	var errs []error
	for _, tx := range candidates {
		if !tx.DueDate.Before(cutoff) {
			continue
		}
		if err := s.Update(ctx, tx.ID, UpdateParams{Status: &overdue}); err != nil {
			log.Printf("Error marking transaction %s overdue: %v", tx.ID, err)
			errs = append(errs, err)
			continue
		}
		tx.Status = StatusOverdue
		swept = append(swept, tx)
	}

	if len(swept) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return swept, nil
}
