package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"finmgmt/internal/domain/event"
	"finmgmt/internal/domain/transaction"
)

type MockRepository struct {
	CreateFunc  func(ctx context.Context, params CreateParams) (string, error)
	GetByIDFunc func(ctx context.Context, id string) (*Record, error)
	ListFunc    func(ctx context.Context, transactionID string) ([]*Record, error)
	UpdateFunc  func(ctx context.Context, id string, params UpdateParams) error
	DeleteFunc  func(ctx context.Context, id string) error
}

func (m *MockRepository) Create(ctx context.Context, params CreateParams) (string, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return "", nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Record, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrPaymentNotFound
}

func (m *MockRepository) List(ctx context.Context, transactionID string) ([]*Record, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, transactionID)
	}
	return nil, nil
}

func (m *MockRepository) Update(ctx context.Context, id string, params UpdateParams) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type recordingPublisher struct {
	events []event.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e event.Event) error {
	p.events = append(p.events, e)
	return nil
}

func validParams() CreateParams {
	return CreateParams{
		TransactionID:   "tx-1",
		Amount:          250,
		Currency:        "USD",
		PaymentDate:     time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		PaymentMethod:   transaction.MethodBankTransfer,
		ReferenceNumber: "PAY-1",
		CreatedBy:       transaction.Actor{ID: "user-1", Name: "Maria"},
	}
}

func TestService_Create(t *testing.T) {
	now := time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(p *CreateParams)
		wantErr error
	}{
		{name: "Success", mutate: func(p *CreateParams) {}},
		{name: "Missing transaction", mutate: func(p *CreateParams) { p.TransactionID = "" }, wantErr: ErrInvalidTransaction},
		{name: "Zero amount", mutate: func(p *CreateParams) { p.Amount = 0 }, wantErr: ErrInvalidAmount},
		{name: "Bad method", mutate: func(p *CreateParams) { p.PaymentMethod = "crypto" }, wantErr: ErrInvalidMethod},
		{name: "Missing date", mutate: func(p *CreateParams) { p.PaymentDate = time.Time{} }, wantErr: ErrInvalidPaymentDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stored CreateParams
			repo := &MockRepository{
				CreateFunc: func(ctx context.Context, params CreateParams) (string, error) {
					stored = params
					return "pay-1", nil
				},
			}
			pub := &recordingPublisher{}
			svc := NewService(repo, pub).WithClock(func() time.Time { return now })

			p := validParams()
			tt.mutate(&p)
			id, err := svc.Create(context.Background(), p)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if id != "pay-1" {
				t.Errorf("Create() id = %q, want pay-1", id)
			}
			if !stored.CreatedAt.Equal(now) {
				t.Errorf("CreatedAt = %v, want %v", stored.CreatedAt, now)
			}
			if len(pub.events) != 1 || pub.events[0].Data["transactionId"] != "tx-1" {
				t.Errorf("unexpected events: %+v", pub.events)
			}
		})
	}
}

func TestService_ListPassesFilter(t *testing.T) {
	var gotFilter string
	repo := &MockRepository{
		ListFunc: func(ctx context.Context, transactionID string) ([]*Record, error) {
			gotFilter = transactionID
			return []*Record{{ID: "pay-1"}}, nil
		},
	}
	svc := NewService(repo, nil)

	records, err := svc.List(context.Background(), "tx-7")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if gotFilter != "tx-7" {
		t.Errorf("filter = %q, want tx-7", gotFilter)
	}
	if len(records) != 1 {
		t.Errorf("len(records) = %d, want 1", len(records))
	}
}

func TestService_Update(t *testing.T) {
	amount := 99.5
	negative := -1.0

	tests := []struct {
		name    string
		id      string
		params  UpdateParams
		repoErr error
		wantErr error
	}{
		{name: "Success", id: "pay-1", params: UpdateParams{Amount: &amount}},
		{name: "Empty", id: "pay-1", params: UpdateParams{}, wantErr: ErrEmptyUpdate},
		{name: "Negative", id: "pay-1", params: UpdateParams{Amount: &negative}, wantErr: ErrInvalidAmount},
		{name: "Not found", id: "pay-2", params: UpdateParams{Amount: &amount}, repoErr: ErrPaymentNotFound, wantErr: ErrPaymentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockRepository{
				UpdateFunc: func(ctx context.Context, id string, params UpdateParams) error {
					return tt.repoErr
				},
			}
			svc := NewService(repo, nil)
			if err := svc.Update(context.Background(), tt.id, tt.params); !errors.Is(err, tt.wantErr) {
				t.Errorf("Update() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
