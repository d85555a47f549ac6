package payment

import (
	"context"
	"time"

	"finmgmt/internal/domain/event"
)

// Service contains the business logic for payment records
type Service struct {
	repo      Repository
	publisher event.Publisher
	now       func() time.Time
}

func NewService(repo Repository, publisher event.Publisher) *Service {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &Service{repo: repo, publisher: publisher, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create validates params, stamps createdAt and stores the payment.
func (s *Service) Create(ctx context.Context, params CreateParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}
	params.CreatedAt = s.now().UTC()

	id, err := s.repo.Create(ctx, params)
	if err != nil {
		return "", err
	}

	event.Emit(ctx, s.publisher, event.Event{
		Name:       event.PaymentCreated,
		EntityID:   id,
		ActorID:    params.CreatedBy.ID,
		OccurredAt: params.CreatedAt,
		Data:       map[string]string{"transactionId": params.TransactionID},
	})
	return id, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	if id == "" {
		return nil, ErrPaymentNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// List returns payments for transactionID, or all payments when it is empty.
func (s *Service) List(ctx context.Context, transactionID string) ([]*Record, error) {
	return s.repo.List(ctx, transactionID)
}

// Update applies a partial update. No timestamps are touched.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) error {
	if id == "" {
		return ErrPaymentNotFound
	}
	if err := params.Validate(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, params); err != nil {
		return err
	}

	event.Emit(ctx, s.publisher, event.Event{Name: event.PaymentUpdated, EntityID: id})
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrPaymentNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	event.Emit(ctx, s.publisher, event.Event{Name: event.PaymentDeleted, EntityID: id})
	return nil
}
