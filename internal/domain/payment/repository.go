package payment

import "context"

// Repository defines the interface for payment record data access
type Repository interface {
	Create(ctx context.Context, params CreateParams) (string, error)
	GetByID(ctx context.Context, id string) (*Record, error)
	// List returns payments ordered by payment date descending.
	// An empty transactionID lists every payment.
	List(ctx context.Context, transactionID string) ([]*Record, error)
	Update(ctx context.Context, id string, params UpdateParams) error
	Delete(ctx context.Context, id string) error
}
