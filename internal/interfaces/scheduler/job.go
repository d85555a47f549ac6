package scheduler

import "context"

// Job is one unit of background work. Execute must return when ctx is done.
type Job interface {
	Execute(ctx context.Context) error
	// Name is low cardinality; it labels metrics.
	Name() string
	// Description is for logs and may carry per-run detail.
	Description() string
}
