package payment

import (
	"errors"
	"slices"
	"time"

	"finmgmt/internal/domain/transaction"
	"finmgmt/internal/shared/money"
)

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrInvalidTransaction  = errors.New("transactionId is required")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidCurrency     = errors.New("valid ISO 4217 currency is required")
	ErrInvalidMethod       = errors.New("invalid payment method")
	ErrInvalidExchangeRate = errors.New("exchange rate must be positive")
	ErrInvalidPaymentDate  = errors.New("paymentDate is required")
	ErrEmptyUpdate         = errors.New("no fields to update")
)

// Record is a payment applied against a transaction.
type Record struct {
	ID              string                    `json:"id" firestore:"-"`
	TransactionID   string                    `json:"transactionId" firestore:"transactionId"`
	Amount          float64                   `json:"amount" firestore:"amount"`
	Currency        string                    `json:"currency" firestore:"currency"`
	ExchangeRate    *float64                  `json:"exchangeRate,omitempty" firestore:"exchangeRate,omitempty"`
	PaymentDate     time.Time                 `json:"paymentDate" firestore:"paymentDate"`
	PaymentMethod   transaction.PaymentMethod `json:"paymentMethod" firestore:"paymentMethod"`
	ReferenceNumber string                    `json:"referenceNumber" firestore:"referenceNumber"`
	Notes           *string                   `json:"notes,omitempty" firestore:"notes,omitempty"`
	Attachments     []transaction.Attachment  `json:"attachments,omitempty" firestore:"attachments,omitempty"`
	CreatedBy       transaction.Actor         `json:"createdBy" firestore:"createdBy"`
	CreatedAt       time.Time                 `json:"createdAt" firestore:"createdAt"`
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := *r
	if r.ExchangeRate != nil {
		rate := *r.ExchangeRate
		c.ExchangeRate = &rate
	}
	if r.Notes != nil {
		notes := *r.Notes
		c.Notes = &notes
	}
	c.Attachments = slices.Clone(r.Attachments)
	return &c
}

// Rate returns the exchange rate to the reporting currency, 1 when unset.
func (r *Record) Rate() float64 {
	if r.ExchangeRate == nil || *r.ExchangeRate <= 0 {
		return 1
	}
	return *r.ExchangeRate
}

type CreateParams struct {
	TransactionID   string
	Amount          float64
	Currency        string
	ExchangeRate    *float64
	PaymentDate     time.Time
	PaymentMethod   transaction.PaymentMethod
	ReferenceNumber string
	Notes           *string
	Attachments     []transaction.Attachment
	CreatedBy       transaction.Actor
	CreatedAt       time.Time
}

func (p CreateParams) Validate() error {
	if p.TransactionID == "" {
		return ErrInvalidTransaction
	}
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !money.IsValidCurrency(p.Currency) {
		return ErrInvalidCurrency
	}
	if p.ExchangeRate != nil && *p.ExchangeRate <= 0 {
		return ErrInvalidExchangeRate
	}
	if p.PaymentDate.IsZero() {
		return ErrInvalidPaymentDate
	}
	if !transaction.IsValidPaymentMethod(p.PaymentMethod) {
		return ErrInvalidMethod
	}
	return nil
}

// UpdateParams is a partial update. Payment records carry no updatedAt.
type UpdateParams struct {
	TransactionID   *string
	Amount          *float64
	Currency        *string
	ExchangeRate    *float64
	PaymentDate     *time.Time
	PaymentMethod   *transaction.PaymentMethod
	ReferenceNumber *string
	Notes           *string
	Attachments     *[]transaction.Attachment
}

func (p UpdateParams) IsEmpty() bool {
	return p.TransactionID == nil && p.Amount == nil && p.Currency == nil && p.ExchangeRate == nil &&
		p.PaymentDate == nil && p.PaymentMethod == nil && p.ReferenceNumber == nil && p.Notes == nil &&
		p.Attachments == nil
}

func (p UpdateParams) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyUpdate
	}
	if p.TransactionID != nil && *p.TransactionID == "" {
		return ErrInvalidTransaction
	}
	if p.Amount != nil && *p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Currency != nil && !money.IsValidCurrency(*p.Currency) {
		return ErrInvalidCurrency
	}
	if p.ExchangeRate != nil && *p.ExchangeRate <= 0 {
		return ErrInvalidExchangeRate
	}
	if p.PaymentDate != nil && p.PaymentDate.IsZero() {
		return ErrInvalidPaymentDate
	}
	if p.PaymentMethod != nil && !transaction.IsValidPaymentMethod(*p.PaymentMethod) {
		return ErrInvalidMethod
	}
	return nil
}
