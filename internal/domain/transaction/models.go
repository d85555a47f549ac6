package transaction

import (
	"errors"
	"slices"
	"time"

	"finmgmt/internal/shared/money"
)

// Type distinguishes money owed to the business from money it owes.
type Type string

const (
	TypePayable    Type = "payable"
	TypeReceivable Type = "receivable"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCreditCard   PaymentMethod = "credit_card"
	MethodCheck        PaymentMethod = "check"
	MethodCash         PaymentMethod = "cash"
	MethodOther        PaymentMethod = "other"
)

var (
	validTypes = map[Type]struct{}{
		TypePayable:    {},
		TypeReceivable: {},
	}
	validStatuses = map[Status]struct{}{
		StatusPending:   {},
		StatusPaid:      {},
		StatusOverdue:   {},
		StatusCancelled: {},
	}
	validMethods = map[PaymentMethod]struct{}{
		MethodBankTransfer: {},
		MethodCreditCard:   {},
		MethodCheck:        {},
		MethodCash:         {},
		MethodOther:        {},
	}
	validEntityTypes = map[string]struct{}{
		"customer": {},
		"vendor":   {},
		"agent":    {},
	}
	validDocumentTypes = map[string]struct{}{
		"invoice":  {},
		"quote":    {},
		"shipment": {},
		"other":    {},
	}
)

// Domain errors
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidType         = errors.New("type must be 'payable' or 'receivable'")
	ErrInvalidStatus       = errors.New("status must be one of pending, paid, overdue, cancelled")
	ErrInvalidMethod       = errors.New("invalid payment method")
	ErrInvalidEntity       = errors.New("entity requires id, name and a type of customer, vendor or agent")
	ErrInvalidDocument     = errors.New("related document requires id, number and a valid type")
	ErrInvalidCurrency     = errors.New("valid ISO 4217 currency is required")
	ErrInvalidAmount       = errors.New("amount must not be negative")
	ErrInvalidExchangeRate = errors.New("exchange rate must be positive")
	ErrInvalidDates        = errors.New("dueDate and issueDate are required")
	ErrInvalidPaymentDate  = errors.New("paymentDate must be a date when set")
	ErrEmptyUpdate         = errors.New("no fields to update")
)

// Entity is the counterparty of a transaction.
type Entity struct {
	ID       string `json:"id" firestore:"id"`
	Type     string `json:"type" firestore:"type"`
	Name     string `json:"name" firestore:"name"`
	Document string `json:"document,omitempty" firestore:"document,omitempty"`
}

type RelatedDocument struct {
	Type   string `json:"type" firestore:"type"`
	ID     string `json:"id" firestore:"id"`
	Number string `json:"number" firestore:"number"`
}

type Attachment struct {
	Name       string    `json:"name" firestore:"name"`
	URL        string    `json:"url" firestore:"url"`
	Type       string    `json:"type" firestore:"type"`
	UploadedAt time.Time `json:"uploadedAt" firestore:"uploadedAt"`
}

// Actor identifies who created a record.
type Actor struct {
	ID   string `json:"id" firestore:"id"`
	Name string `json:"name" firestore:"name"`
}

// Transaction is a receivable or payable obligation.
type Transaction struct {
	ID               string            `json:"id" firestore:"-"`
	Type             Type              `json:"type" firestore:"type"`
	Status           Status            `json:"status" firestore:"status"`
	ReferenceNumber  string            `json:"referenceNumber" firestore:"referenceNumber"`
	Description      string            `json:"description" firestore:"description"`
	Amount           float64           `json:"amount" firestore:"amount"`
	Currency         string            `json:"currency" firestore:"currency"`
	ExchangeRate     *float64          `json:"exchangeRate,omitempty" firestore:"exchangeRate,omitempty"`
	DueDate          time.Time         `json:"dueDate" firestore:"dueDate"`
	IssueDate        time.Time         `json:"issueDate" firestore:"issueDate"`
	PaymentDate      *time.Time        `json:"paymentDate,omitempty" firestore:"paymentDate,omitempty"`
	PaymentMethod    *PaymentMethod    `json:"paymentMethod,omitempty" firestore:"paymentMethod,omitempty"`
	Entity           Entity            `json:"entity" firestore:"entity"`
	RelatedDocuments []RelatedDocument `json:"relatedDocuments,omitempty" firestore:"relatedDocuments,omitempty"`
	Notes            *string           `json:"notes,omitempty" firestore:"notes,omitempty"`
	Attachments      []Attachment      `json:"attachments,omitempty" firestore:"attachments,omitempty"`
	CreatedBy        Actor             `json:"createdBy" firestore:"createdBy"`
	CreatedAt        time.Time         `json:"createdAt" firestore:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt" firestore:"updatedAt"`
}

// Clone returns a deep copy of t.
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.ExchangeRate = clonePtr(t.ExchangeRate)
	c.PaymentDate = clonePtr(t.PaymentDate)
	c.PaymentMethod = clonePtr(t.PaymentMethod)
	c.Notes = clonePtr(t.Notes)
	c.RelatedDocuments = slices.Clone(t.RelatedDocuments)
	c.Attachments = slices.Clone(t.Attachments)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// IsOpen reports whether the obligation still counts towards outstanding totals.
func (t *Transaction) IsOpen() bool {
	return t.Status == StatusPending || t.Status == StatusOverdue
}

// OverdueCutoff is the start of now's UTC day. Due dates are calendar days,
// so a transaction is past due only once its due day has ended.
func OverdueCutoff(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsOverdue reports whether an open transaction is past due at now.
func (t *Transaction) IsOverdue(now time.Time) bool {
	if !t.IsOpen() {
		return false
	}
	return t.Status == StatusOverdue || t.DueDate.Before(OverdueCutoff(now))
}

// Rate returns the exchange rate to the reporting currency, 1 when unset.
func (t *Transaction) Rate() float64 {
	if t.ExchangeRate == nil || *t.ExchangeRate <= 0 {
		return 1
	}
	return *t.ExchangeRate
}

// CreateParams carries everything but the id; audit timestamps are set by the service.
type CreateParams struct {
	Type             Type
	Status           Status
	ReferenceNumber  string
	Description      string
	Amount           float64
	Currency         string
	ExchangeRate     *float64
	DueDate          time.Time
	IssueDate        time.Time
	PaymentDate      *time.Time
	PaymentMethod    *PaymentMethod
	Entity           Entity
	RelatedDocuments []RelatedDocument
	Notes            *string
	Attachments      []Attachment
	CreatedBy        Actor
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (p CreateParams) Validate() error {
	if !IsValidType(p.Type) {
		return ErrInvalidType
	}
	if !IsValidStatus(p.Status) {
		return ErrInvalidStatus
	}
	if p.PaymentMethod != nil && !IsValidPaymentMethod(*p.PaymentMethod) {
		return ErrInvalidMethod
	}
	if err := validateEntity(p.Entity); err != nil {
		return err
	}
	if err := validateDocuments(p.RelatedDocuments); err != nil {
		return err
	}
	if !money.IsValidCurrency(p.Currency) {
		return ErrInvalidCurrency
	}
	if p.Amount < 0 {
		return ErrInvalidAmount
	}
	if p.ExchangeRate != nil && *p.ExchangeRate <= 0 {
		return ErrInvalidExchangeRate
	}
	if p.DueDate.IsZero() || p.IssueDate.IsZero() {
		return ErrInvalidDates
	}
	if p.PaymentDate != nil && p.PaymentDate.IsZero() {
		return ErrInvalidPaymentDate
	}
	return nil
}

// UpdateParams is a partial update: only non-nil fields are written.
type UpdateParams struct {
	Type             *Type
	Status           *Status
	ReferenceNumber  *string
	Description      *string
	Amount           *float64
	Currency         *string
	ExchangeRate     *float64
	DueDate          *time.Time
	IssueDate        *time.Time
	PaymentDate      *time.Time
	PaymentMethod    *PaymentMethod
	Entity           *Entity
	RelatedDocuments *[]RelatedDocument
	Notes            *string
	Attachments      *[]Attachment
	UpdatedAt        time.Time
}

// IsEmpty reports whether the patch carries no field changes.
func (p UpdateParams) IsEmpty() bool {
	return p.Type == nil && p.Status == nil && p.ReferenceNumber == nil && p.Description == nil &&
		p.Amount == nil && p.Currency == nil && p.ExchangeRate == nil && p.DueDate == nil &&
		p.IssueDate == nil && p.PaymentDate == nil && p.PaymentMethod == nil && p.Entity == nil &&
		p.RelatedDocuments == nil && p.Notes == nil && p.Attachments == nil
}

func (p UpdateParams) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyUpdate
	}
	if p.Type != nil && !IsValidType(*p.Type) {
		return ErrInvalidType
	}
	if p.Status != nil && !IsValidStatus(*p.Status) {
		return ErrInvalidStatus
	}
	if p.PaymentMethod != nil && !IsValidPaymentMethod(*p.PaymentMethod) {
		return ErrInvalidMethod
	}
	if p.Entity != nil {
		if err := validateEntity(*p.Entity); err != nil {
			return err
		}
	}
	if p.RelatedDocuments != nil {
		if err := validateDocuments(*p.RelatedDocuments); err != nil {
			return err
		}
	}
	if p.Currency != nil && !money.IsValidCurrency(*p.Currency) {
		return ErrInvalidCurrency
	}
	if p.Amount != nil && *p.Amount < 0 {
		return ErrInvalidAmount
	}
	if p.ExchangeRate != nil && *p.ExchangeRate <= 0 {
		return ErrInvalidExchangeRate
	}
	if (p.DueDate != nil && p.DueDate.IsZero()) || (p.IssueDate != nil && p.IssueDate.IsZero()) {
		return ErrInvalidDates
	}
	if p.PaymentDate != nil && p.PaymentDate.IsZero() {
		return ErrInvalidPaymentDate
	}
	return nil
}

// ListFilter narrows a listing. Results are always ordered by due date, newest first.
type ListFilter struct {
	Type      Type
	Status    Status
	EntityID  string
	DueBefore time.Time
	Limit     int
}

func IsValidType(t Type) bool {
	_, ok := validTypes[t]
	return ok
}

func IsValidStatus(s Status) bool {
	_, ok := validStatuses[s]
	return ok
}

func IsValidPaymentMethod(m PaymentMethod) bool {
	_, ok := validMethods[m]
	return ok
}

func validateEntity(e Entity) error {
	if e.ID == "" || e.Name == "" {
		return ErrInvalidEntity
	}
	if _, ok := validEntityTypes[e.Type]; !ok {
		return ErrInvalidEntity
	}
	return nil
}

func validateDocuments(docs []RelatedDocument) error {
	for _, d := range docs {
		if d.ID == "" || d.Number == "" {
			return ErrInvalidDocument
		}
		if _, ok := validDocumentTypes[d.Type]; !ok {
			return ErrInvalidDocument
		}
	}
	return nil
}
