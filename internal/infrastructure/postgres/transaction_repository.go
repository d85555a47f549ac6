package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"finmgmt/internal/domain/transaction"
)

const transactionColumns = `id, type, status, reference_number, description, amount, currency, exchange_rate,
	due_date, issue_date, payment_date, payment_method, entity, related_documents, notes, attachments,
	created_by, created_at, updated_at`

// TransactionRepository implements transaction.Repository for PostgreSQL
type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, params transaction.CreateParams) (string, error) {
	entity, err := json.Marshal(params.Entity)
	if err != nil {
		return "", fmt.Errorf("failed to encode entity: %w", err)
	}
	docs, err := marshalList(params.RelatedDocuments)
	if err != nil {
		return "", fmt.Errorf("failed to encode related documents: %w", err)
	}
	attachments, err := marshalList(params.Attachments)
	if err != nil {
		return "", fmt.Errorf("failed to encode attachments: %w", err)
	}
	createdBy, err := json.Marshal(params.CreatedBy)
	if err != nil {
		return "", fmt.Errorf("failed to encode creator: %w", err)
	}

	query := `
		INSERT INTO financial_transactions (id, type, status, reference_number, description, amount, currency,
		                                    exchange_rate, due_date, issue_date, payment_date, payment_method,
		                                    entity, related_documents, notes, attachments, created_by,
		                                    created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`

	var method *string
	if params.PaymentMethod != nil {
		m := string(*params.PaymentMethod)
		method = &m
	}

	var id string
	err = r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), string(params.Type), string(params.Status), params.ReferenceNumber, params.Description,
		params.Amount, params.Currency, params.ExchangeRate, params.DueDate, params.IssueDate, params.PaymentDate,
		method, string(entity), docs, params.Notes, attachments, string(createdBy), params.CreatedAt, params.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	return id, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM financial_transactions WHERE id = $1`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return t, nil
}

func (r *TransactionRepository) List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Type != "" {
		where = append(where, "type = "+arg(string(filter.Type)))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}
	if filter.EntityID != "" {
		where = append(where, "entity->>'id' = "+arg(filter.EntityID))
	}
	if !filter.DueBefore.IsZero() {
		where = append(where, "due_date < "+arg(filter.DueBefore))
	}

	query := `SELECT ` + transactionColumns + ` FROM financial_transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY due_date DESC, created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

func (r *TransactionRepository) Update(ctx context.Context, id string, params transaction.UpdateParams) error {
	set, args, err := transactionUpdateSet(params)
	if err != nil {
		return err
	}

	args = append(args, id)
	query := `UPDATE financial_transactions SET ` + strings.Join(set, ", ") + ` WHERE id = $` + strconv.Itoa(len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return transaction.ErrTransactionNotFound
	}

	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM financial_transactions WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return transaction.ErrTransactionNotFound
	}

	return nil
}

// transactionUpdateSet builds the SET clause for the non-nil fields of params.
// Placeholders are numbered from $1 in the order of the returned args.
func transactionUpdateSet(params transaction.UpdateParams) ([]string, []any, error) {
	var set []string
	var args []any
	add := func(column string, v any) {
		args = append(args, v)
		set = append(set, column+" = $"+strconv.Itoa(len(args)))
	}
	addJSON := func(column string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", column, err)
		}
		add(column, string(b))
		return nil
	}

	if params.Type != nil {
		add("type", string(*params.Type))
	}
	if params.Status != nil {
		add("status", string(*params.Status))
	}
	if params.ReferenceNumber != nil {
		add("reference_number", *params.ReferenceNumber)
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
		add("exchange_rate", *params.ExchangeRate)
	}
	if params.DueDate != nil {
		add("due_date", *params.DueDate)
	}
	if params.IssueDate != nil {
		add("issue_date", *params.IssueDate)
	}
	if params.PaymentDate != nil {
		add("payment_date", *params.PaymentDate)
	}
	if params.PaymentMethod != nil {
		add("payment_method", string(*params.PaymentMethod))
	}
	if params.Entity != nil {
		if err := addJSON("entity", *params.Entity); err != nil {
			return nil, nil, err
		}
	}
	if params.RelatedDocuments != nil {
		docs, err := marshalList(*params.RelatedDocuments)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode related documents: %w", err)
		}
		add("related_documents", docs)
	}
	if params.Notes != nil {
		add("notes", *params.Notes)
	}
	if params.Attachments != nil {
		attachments, err := marshalList(*params.Attachments)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode attachments: %w", err)
		}
		add("attachments", attachments)
	}
	if len(set) == 0 {
		return nil, nil, transaction.ErrEmptyUpdate
	}
	if params.UpdatedAt.IsZero() {
		set = append(set, "updated_at = CURRENT_TIMESTAMP")
	} else {
		add("updated_at", params.UpdatedAt)
	}

	return set, args, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*transaction.Transaction, error) {
	var t transaction.Transaction
	var exchangeRate sql.NullFloat64
	var paymentDate sql.NullTime
	var method, notes sql.NullString
	var entity, docs, attachments, createdBy []byte

	err := row.Scan(
		&t.ID, &t.Type, &t.Status, &t.ReferenceNumber, &t.Description, &t.Amount, &t.Currency, &exchangeRate,
		&t.DueDate, &t.IssueDate, &paymentDate, &method, &entity, &docs, &notes, &attachments,
		&createdBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if exchangeRate.Valid {
		t.ExchangeRate = &exchangeRate.Float64
	}
	if paymentDate.Valid {
		pd := paymentDate.Time.UTC()
		t.PaymentDate = &pd
	}
	if method.Valid {
		m := transaction.PaymentMethod(method.String)
		t.PaymentMethod = &m
	}
	if notes.Valid {
		t.Notes = &notes.String
	}
	t.DueDate = t.DueDate.UTC()
	t.IssueDate = t.IssueDate.UTC()

	if err := json.Unmarshal(entity, &t.Entity); err != nil {
		return nil, fmt.Errorf("failed to decode entity: %w", err)
	}
	if err := json.Unmarshal(docs, &t.RelatedDocuments); err != nil {
		return nil, fmt.Errorf("failed to decode related documents: %w", err)
	}
	if err := json.Unmarshal(attachments, &t.Attachments); err != nil {
		return nil, fmt.Errorf("failed to decode attachments: %w", err)
	}
	if err := json.Unmarshal(createdBy, &t.CreatedBy); err != nil {
		return nil, fmt.Errorf("failed to decode creator: %w", err)
	}

	return &t, nil
}

// marshalList encodes a slice as a JSON array, never as null. The result is a
// string because lib/pq sends []byte parameters as bytea.
func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
