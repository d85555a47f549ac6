package transaction

import "context"

// Repository defines the interface for transaction data access.
// Implemented by the Firestore and Postgres backends in the infrastructure layer.
type Repository interface {
	// Create stores a new transaction and returns the backend-assigned id
	Create(ctx context.Context, params CreateParams) (string, error)

	// GetByID returns ErrTransactionNotFound when no document exists
	GetByID(ctx context.Context, id string) (*Transaction, error)

	// List returns transactions matching filter, ordered by due date descending
	List(ctx context.Context, filter ListFilter) ([]*Transaction, error)

	// Update applies a partial update
	Update(ctx context.Context, id string, params UpdateParams) error

	Delete(ctx context.Context, id string) error
}
