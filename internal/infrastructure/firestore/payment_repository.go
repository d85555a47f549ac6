package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"finmgmt/internal/domain/payment"
)

// PaymentRepository implements payment.Repository on the payments collection
type PaymentRepository struct {
	client *firestore.Client
}

func NewPaymentRepository(client *firestore.Client) *PaymentRepository {
	return &PaymentRepository{client: client}
}

func (r *PaymentRepository) Create(ctx context.Context, params payment.CreateParams) (string, error) {
	ctx, span := startSpan(ctx, "Add", PaymentsCollection)

	doc := newPaymentDoc(payment.Record{
		TransactionID:   params.TransactionID,
		Amount:          params.Amount,
		Currency:        params.Currency,
		ExchangeRate:    params.ExchangeRate,
		PaymentDate:     params.PaymentDate,
		PaymentMethod:   params.PaymentMethod,
		ReferenceNumber: params.ReferenceNumber,
		Notes:           params.Notes,
		Attachments:     params.Attachments,
		CreatedBy:       params.CreatedBy,
		CreatedAt:       params.CreatedAt,
	})

	ref, _, err := r.client.Collection(PaymentsCollection).Add(ctx, doc)
	if endSpan(span, err) != nil {
		return "", fmt.Errorf("failed to create payment: %w", err)
	}

	return ref.ID, nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Record, error) {
	ctx, span := startSpan(ctx, "Get", PaymentsCollection)

	snap, err := r.client.Collection(PaymentsCollection).Doc(id).Get(ctx)
	endSpan(span, err)
	if isNotFound(err) {
		return nil, payment.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return decodePayment(snap)
}

// List returns payments for transactionID, or every payment when it is empty.
func (r *PaymentRepository) List(ctx context.Context, transactionID string) ([]*payment.Record, error) {
	ctx, span := startSpan(ctx, "Query", PaymentsCollection)

	q := r.client.Collection(PaymentsCollection).Query
	if transactionID != "" {
		q = q.Where("transactionId", "==", transactionID)
	}
	q = q.OrderBy("paymentDate", firestore.Desc)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var records []*payment.Record
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			endSpan(span, err)
			return nil, fmt.Errorf("failed to list payments: %w", err)
		}

		p, err := decodePayment(snap)
		if err != nil {
			endSpan(span, err)
			return nil, err
		}
		records = append(records, p)
	}

	endSpan(span, nil)
	return records, nil
}

func (r *PaymentRepository) Update(ctx context.Context, id string, params payment.UpdateParams) error {
	updates := paymentUpdates(params)
	if len(updates) == 0 {
		return payment.ErrEmptyUpdate
	}

	ctx, span := startSpan(ctx, "Update", PaymentsCollection)
	_, err := r.client.Collection(PaymentsCollection).Doc(id).Update(ctx, updates)
	endSpan(span, err)
	if isNotFound(err) {
		return payment.ErrPaymentNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	ctx, span := startSpan(ctx, "Delete", PaymentsCollection)
	_, err := r.client.Collection(PaymentsCollection).Doc(id).Delete(ctx, firestore.Exists)
	endSpan(span, err)
	if isNotFound(err) {
		return payment.ErrPaymentNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	return nil
}

func decodePayment(snap *firestore.DocumentSnapshot) (*payment.Record, error) {
	var doc paymentDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode payment %s: %w", snap.Ref.ID, err)
	}
	return doc.decode(snap.Ref.ID)
}

func paymentUpdates(params payment.UpdateParams) []firestore.Update {
	var updates []firestore.Update
	add := func(path string, v any) {
		updates = append(updates, firestore.Update{Path: path, Value: v})
	}

	if params.TransactionID != nil {
		add("transactionId", *params.TransactionID)
	}
	if params.Amount != nil {
		add("amount", *params.Amount)
	}
	if params.Currency != nil {
		add("currency", *params.Currency)
	}
	if params.ExchangeRate != nil {
		add("exchangeRate", *params.ExchangeRate)
	}
	if params.PaymentDate != nil {
		add("paymentDate", formatDate(*params.PaymentDate))
	}
	if params.PaymentMethod != nil {
		add("paymentMethod", string(*params.PaymentMethod))
	}
	if params.ReferenceNumber != nil {
		add("referenceNumber", *params.ReferenceNumber)
	}
	if params.Notes != nil {
		add("notes", *params.Notes)
	}
	if params.Attachments != nil {
		add("attachments", newAttachmentDocs(*params.Attachments))
	}

	return updates
}
