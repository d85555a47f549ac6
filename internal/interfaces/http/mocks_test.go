package http

import (
	"context"

	"finmgmt/internal/domain/payment"
	"finmgmt/internal/domain/summary"
	"finmgmt/internal/domain/transaction"
)

// MockTransactionService implements TransactionService for testing
type MockTransactionService struct {
	CreateFunc func(ctx context.Context, params transaction.CreateParams) (string, error)
	GetFunc    func(ctx context.Context, id string) (*transaction.Transaction, error)
	ListFunc   func(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
	UpdateFunc func(ctx context.Context, id string, params transaction.UpdateParams) error
	DeleteFunc func(ctx context.Context, id string) error
}

func (m *MockTransactionService) Create(ctx context.Context, params transaction.CreateParams) (string, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return "", nil
}

func (m *MockTransactionService) Get(ctx context.Context, id string) (*transaction.Transaction, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, transaction.ErrTransactionNotFound
}

func (m *MockTransactionService) List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockTransactionService) Update(ctx context.Context, id string, params transaction.UpdateParams) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return nil
}

func (m *MockTransactionService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockPaymentService implements PaymentService for testing
type MockPaymentService struct {
	CreateFunc func(ctx context.Context, params payment.CreateParams) (string, error)
	GetFunc    func(ctx context.Context, id string) (*payment.Record, error)
	ListFunc   func(ctx context.Context, transactionID string) ([]*payment.Record, error)
	UpdateFunc func(ctx context.Context, id string, params payment.UpdateParams) error
	DeleteFunc func(ctx context.Context, id string) error
}

func (m *MockPaymentService) Create(ctx context.Context, params payment.CreateParams) (string, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return "", nil
}

func (m *MockPaymentService) Get(ctx context.Context, id string) (*payment.Record, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, payment.ErrPaymentNotFound
}

func (m *MockPaymentService) List(ctx context.Context, transactionID string) ([]*payment.Record, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, transactionID)
	}
	return nil, nil
}

func (m *MockPaymentService) Update(ctx context.Context, id string, params payment.UpdateParams) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return nil
}

func (m *MockPaymentService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockSummaryService implements SummaryService for testing
type MockSummaryService struct {
	CurrentFunc func(ctx context.Context) (*summary.Summary, error)
	RebuildFunc func(ctx context.Context) (*summary.Summary, error)
}

func (m *MockSummaryService) Current(ctx context.Context) (*summary.Summary, error) {
	if m.CurrentFunc != nil {
		return m.CurrentFunc(ctx)
	}
	return nil, summary.ErrSummaryNotFound
}

func (m *MockSummaryService) Rebuild(ctx context.Context) (*summary.Summary, error) {
	if m.RebuildFunc != nil {
		return m.RebuildFunc(ctx)
	}
	return &summary.Summary{}, nil
}
