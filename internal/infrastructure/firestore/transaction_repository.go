package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"finmgmt/internal/domain/transaction"
)

// TransactionRepository implements transaction.Repository on the transactions collection
type TransactionRepository struct {
	client *firestore.Client
}

func NewTransactionRepository(client *firestore.Client) *TransactionRepository {
	return &TransactionRepository{client: client}
}

func (r *TransactionRepository) Create(ctx context.Context, params transaction.CreateParams) (string, error) {
	ctx, span := startSpan(ctx, "Add", TransactionsCollection)

	doc := newTransactionDoc(transaction.Transaction{
		Type:             params.Type,
		Status:           params.Status,
		ReferenceNumber:  params.ReferenceNumber,
		Description:      params.Description,
		Amount:           params.Amount,
		Currency:         params.Currency,
		ExchangeRate:     params.ExchangeRate,
		DueDate:          params.DueDate,
		IssueDate:        params.IssueDate,
		PaymentDate:      params.PaymentDate,
		PaymentMethod:    params.PaymentMethod,
		Entity:           params.Entity,
		RelatedDocuments: params.RelatedDocuments,
		Notes:            params.Notes,
		Attachments:      params.Attachments,
		CreatedBy:        params.CreatedBy,
		CreatedAt:        params.CreatedAt,
		UpdatedAt:        params.UpdatedAt,
	})

	ref, _, err := r.client.Collection(TransactionsCollection).Add(ctx, doc)
	if endSpan(span, err) != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	return ref.ID, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*transaction.Transaction, error) {
	ctx, span := startSpan(ctx, "Get", TransactionsCollection)

	snap, err := r.client.Collection(TransactionsCollection).Doc(id).Get(ctx)
	endSpan(span, err)
	if isNotFound(err) {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return decodeTransaction(snap)
}

func (r *TransactionRepository) List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	ctx, span := startSpan(ctx, "Query", TransactionsCollection)

	q := r.client.Collection(TransactionsCollection).Query
	if filter.Type != "" {
		q = q.Where("type", "==", string(filter.Type))
	}
	if filter.Status != "" {
		q = q.Where("status", "==", string(filter.Status))
	}
	if filter.EntityID != "" {
		q = q.Where("entity.id", "==", filter.EntityID)
	}
	if !filter.DueBefore.IsZero() {
		q = q.Where("dueDate", "<", dateBound(filter.DueBefore))
	}
	q = q.OrderBy("dueDate", firestore.Desc)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var transactions []*transaction.Transaction
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			endSpan(span, err)
			return nil, fmt.Errorf("failed to list transactions: %w", err)
		}

		t, err := decodeTransaction(snap)
		if err != nil {
			endSpan(span, err)
			return nil, err
		}
		transactions = append(transactions, t)
	}

	endSpan(span, nil)
	return transactions, nil
}

func (r *TransactionRepository) Update(ctx context.Context, id string, params transaction.UpdateParams) error {
	updates := transactionUpdates(params)
	if len(updates) == 0 {
		return transaction.ErrEmptyUpdate
	}

	ctx, span := startSpan(ctx, "Update", TransactionsCollection)
	_, err := r.client.Collection(TransactionsCollection).Doc(id).Update(ctx, updates)
	endSpan(span, err)
	if isNotFound(err) {
		return transaction.ErrTransactionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := startSpan(ctx, "Delete", TransactionsCollection)
	_, err := r.client.Collection(TransactionsCollection).Doc(id).Delete(ctx, firestore.Exists)
	endSpan(span, err)
	if isNotFound(err) {
		return transaction.ErrTransactionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	return nil
}

func decodeTransaction(snap *firestore.DocumentSnapshot) (*transaction.Transaction, error) {
	var doc transactionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode transaction %s: %w", snap.Ref.ID, err)
	}
	return doc.decode(snap.Ref.ID)
}

// transactionUpdates maps the non-nil fields of params to field paths.
// updatedAt is written whenever anything else is.
func transactionUpdates(params transaction.UpdateParams) []firestore.Update {
	var updates []firestore.Update
	add := func(path string, v any) {
		updates = append(updates, firestore.Update{Path: path, Value: v})
	}

	if params.Type != nil {
		add("type", string(*params.Type))
	}
	if params.Status != nil {
		add("status", string(*params.Status))
	}
	if params.ReferenceNumber != nil {
		add("referenceNumber", *params.ReferenceNumber)
	}
	if params.Description != nil {
		add("description", *params.Description)
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
	if params.DueDate != nil {
		add("dueDate", formatDate(*params.DueDate))
	}
	if params.IssueDate != nil {
		add("issueDate", formatDate(*params.IssueDate))
	}
	if params.PaymentDate != nil {
		add("paymentDate", formatDate(*params.PaymentDate))
	}
	if params.PaymentMethod != nil {
		add("paymentMethod", string(*params.PaymentMethod))
	}
	if params.Entity != nil {
		add("entity", *params.Entity)
	}
	if params.RelatedDocuments != nil {
		add("relatedDocuments", *params.RelatedDocuments)
	}
	if params.Notes != nil {
		add("notes", *params.Notes)
	}
	if params.Attachments != nil {
		add("attachments", newAttachmentDocs(*params.Attachments))
	}
	if len(updates) == 0 {
		return nil
	}
	updatedAt := params.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	add("updatedAt", formatDate(updatedAt))

	return updates
}
