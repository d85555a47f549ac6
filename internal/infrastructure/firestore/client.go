package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection names shared with the web client.
const (
	TransactionsCollection = "transactions"
	PaymentsCollection     = "payments"
	SummaryCollection      = "financialSummary"
)

var fsTracer = otel.Tracer("finmgmt.firestore")

var errNoDocuments = status.Error(grpccodes.NotFound, "collection is empty")

func startSpan(ctx context.Context, operation, collection string) (context.Context, trace.Span) {
	return fsTracer.Start(ctx, "firestore."+operation, trace.WithAttributes(
		attribute.String("db.system", "firestore"),
		attribute.String("db.operation", operation),
		attribute.String("db.collection", collection),
	))
}

// endSpan records err on span and ends it. It returns err unchanged.
func endSpan(span trace.Span, err error) error {
	if err != nil && !isNotFound(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	return err
}

func isNotFound(err error) bool {
	return status.Code(err) == grpccodes.NotFound
}

// Repositories bundles the Firestore-backed repositories over one client
type Repositories struct {
	Transactions *TransactionRepository
	Payments     *PaymentRepository
	Summary      *SummaryRepository
}

func NewRepositories(client *firestore.Client) *Repositories {
	return &Repositories{
		Transactions: NewTransactionRepository(client),
		Payments:     NewPaymentRepository(client),
		Summary:      NewSummaryRepository(client),
	}
}
