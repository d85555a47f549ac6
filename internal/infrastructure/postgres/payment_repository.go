package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"finmgmt/internal/domain/payment"
	"finmgmt/internal/domain/transaction"
)

const paymentColumns = `id, transaction_id, amount, currency, exchange_rate, payment_date, payment_method,
	reference_number, notes, attachments, created_by, created_at`

// PaymentRepository implements payment.Repository for PostgreSQL
type PaymentRepository struct {
	db *DB
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, params payment.CreateParams) (string, error) {
	attachments, err := marshalList(params.Attachments)
	if err != nil {
		return "", fmt.Errorf("failed to encode attachments: %w", err)
	}
	createdBy, err := json.Marshal(params.CreatedBy)
	if err != nil {
		return "", fmt.Errorf("failed to encode creator: %w", err)
	}

	query := `
		INSERT INTO financial_payments (id, transaction_id, amount, currency, exchange_rate, payment_date,
		                                payment_method, reference_number, notes, attachments, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	var id string
	err = r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), params.TransactionID, params.Amount, params.Currency, params.ExchangeRate,
		params.PaymentDate, string(params.PaymentMethod), params.ReferenceNumber, params.Notes,
		attachments, string(createdBy), params.CreatedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create payment: %w", err)
	}

	return id, nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Record, error) {
	query := `SELECT ` + paymentColumns + ` FROM financial_payments WHERE id = $1`

	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, payment.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return p, nil
}

func (r *PaymentRepository) List(ctx context.Context, transactionID string) ([]*payment.Record, error) {
	query := `SELECT ` + paymentColumns + ` FROM financial_payments`
	var args []any
	if transactionID != "" {
		query += ` WHERE transaction_id = $1`
		args = append(args, transactionID)
	}
	query += ` ORDER BY payment_date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var records []*payment.Record
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		records = append(records, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return records, nil
}

func (r *PaymentRepository) Update(ctx context.Context, id string, params payment.UpdateParams) error {
	set, args, err := paymentUpdateSet(params)
	if err != nil {
		return err
	}

	args = append(args, id)
	query := `UPDATE financial_payments SET ` + strings.Join(set, ", ") + ` WHERE id = $` + strconv.Itoa(len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return payment.ErrPaymentNotFound
	}

	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM financial_payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return payment.ErrPaymentNotFound
	}

	return nil
}

func paymentUpdateSet(params payment.UpdateParams) ([]string, []any, error) {
	var set []string
	var args []any
	add := func(column string, v any) {
		args = append(args, v)
		set = append(set, column+" = $"+strconv.Itoa(len(args)))
	}

	if params.TransactionID != nil {
		add("transaction_id", *params.TransactionID)
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
	if params.PaymentDate != nil {
		add("payment_date", *params.PaymentDate)
	}
	if params.PaymentMethod != nil {
		add("payment_method", string(*params.PaymentMethod))
	}
	if params.ReferenceNumber != nil {
		add("reference_number", *params.ReferenceNumber)
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
		return nil, nil, payment.ErrEmptyUpdate
	}

	return set, args, nil
}

func scanPayment(row rowScanner) (*payment.Record, error) {
	var p payment.Record
	var exchangeRate sql.NullFloat64
	var notes sql.NullString
	var method string
	var attachments, createdBy []byte

	err := row.Scan(
		&p.ID, &p.TransactionID, &p.Amount, &p.Currency, &exchangeRate, &p.PaymentDate, &method,
		&p.ReferenceNumber, &notes, &attachments, &createdBy, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.PaymentMethod = transaction.PaymentMethod(method)
	p.PaymentDate = p.PaymentDate.UTC()
	if exchangeRate.Valid {
		p.ExchangeRate = &exchangeRate.Float64
	}
	if notes.Valid {
		p.Notes = &notes.String
	}
	if err := json.Unmarshal(attachments, &p.Attachments); err != nil {
		return nil, fmt.Errorf("failed to decode attachments: %w", err)
	}
	if err := json.Unmarshal(createdBy, &p.CreatedBy); err != nil {
		return nil, fmt.Errorf("failed to decode creator: %w", err)
	}

	return &p, nil
}
