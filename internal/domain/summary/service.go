package summary

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"finmgmt/internal/domain/event"
	"finmgmt/internal/domain/payment"
	"finmgmt/internal/domain/transaction"
)

// TransactionLister is satisfied by transaction.Service and transaction.Repository.
type TransactionLister interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

// PaymentLister is satisfied by payment.Service and payment.Repository.
type PaymentLister interface {
	List(ctx context.Context, transactionID string) ([]*payment.Record, error)
}

// Service reads the materialized summary and rebuilds it on demand
type Service struct {
	repo         Repository
	transactions TransactionLister
	payments     PaymentLister
	publisher    event.Publisher
	currency     string
	now          func() time.Time
}

func NewService(repo Repository, transactions TransactionLister, payments PaymentLister, publisher event.Publisher, currency string) *Service {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &Service{
		repo:         repo,
		transactions: transactions,
		payments:     payments,
		publisher:    publisher,
		currency:     currency,
		now:          time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Current returns the materialized summary without computing anything.
func (s *Service) Current(ctx context.Context) (*Summary, error) {
	return s.repo.Get(ctx)
}

// Rebuild recomputes the summary from every transaction and payment and saves it.
func (s *Service) Rebuild(ctx context.Context) (*Summary, error) {
	txs, err := s.transactions.List(ctx, transaction.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	payments, err := s.payments.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	sum := Build(txs, payments, s.currency, s.now())
	if err := s.repo.Save(ctx, sum); err != nil {
		return nil, fmt.Errorf("failed to save summary: %w", err)
	}

	log.Printf("Financial summary rebuilt from %d transactions and %d payments", len(txs), len(payments))

	event.Emit(ctx, s.publisher, event.Event{
		Name:       event.SummaryRebuilt,
		EntityID:   DocumentID,
		OccurredAt: sum.GeneratedAt,
		Data: map[string]string{
			"totalReceivables": strconv.FormatFloat(sum.TotalReceivables, 'f', 2, 64),
			"totalPayables":    strconv.FormatFloat(sum.TotalPayables, 'f', 2, 64),
		},
	})
	return sum, nil
}
