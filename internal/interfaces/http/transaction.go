package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"finmgmt/internal/domain/transaction"
	"finmgmt/internal/shared/middleware"
)

// TransactionService is implemented by transaction.Service.
type TransactionService interface {
	Create(ctx context.Context, params transaction.CreateParams) (string, error)
	Get(ctx context.Context, id string) (*transaction.Transaction, error)
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
	Update(ctx context.Context, id string, params transaction.UpdateParams) error
	Delete(ctx context.Context, id string) error
}

type TransactionHandler struct {
	service TransactionService
}

func NewTransactionHandler(service TransactionService) *TransactionHandler {
	return &TransactionHandler{service: service}
}

type CreateTransactionRequest struct {
	Type             transaction.Type              `json:"type"`
	Status           transaction.Status            `json:"status,omitempty"` // defaults to pending
	ReferenceNumber  string                        `json:"referenceNumber"`
	Description      string                        `json:"description"`
	Amount           float64                       `json:"amount"`
	Currency         string                        `json:"currency"`
	ExchangeRate     *float64                      `json:"exchangeRate,omitempty"`
	DueDate          string                        `json:"dueDate"`
	IssueDate        string                        `json:"issueDate"`
	PaymentDate      *string                       `json:"paymentDate,omitempty"`
	PaymentMethod    *transaction.PaymentMethod    `json:"paymentMethod,omitempty"`
	Entity           transaction.Entity            `json:"entity"`
	RelatedDocuments []transaction.RelatedDocument `json:"relatedDocuments,omitempty"`
	Notes            *string                       `json:"notes,omitempty"`
	Attachments      []transaction.Attachment      `json:"attachments,omitempty"`
}

type UpdateTransactionRequest struct {
	Type             *transaction.Type              `json:"type,omitempty"`
	Status           *transaction.Status            `json:"status,omitempty"`
	ReferenceNumber  *string                        `json:"referenceNumber,omitempty"`
	Description      *string                        `json:"description,omitempty"`
	Amount           *float64                       `json:"amount,omitempty"`
	Currency         *string                        `json:"currency,omitempty"`
	ExchangeRate     *float64                       `json:"exchangeRate,omitempty"`
	DueDate          *string                        `json:"dueDate,omitempty"`
	IssueDate        *string                        `json:"issueDate,omitempty"`
	PaymentDate      *string                        `json:"paymentDate,omitempty"`
	PaymentMethod    *transaction.PaymentMethod     `json:"paymentMethod,omitempty"`
	Entity           *transaction.Entity            `json:"entity,omitempty"`
	RelatedDocuments *[]transaction.RelatedDocument `json:"relatedDocuments,omitempty"`
	Notes            *string                        `json:"notes,omitempty"`
	Attachments      *[]transaction.Attachment      `json:"attachments,omitempty"`
}

// HandleTransactions lists (GET) or creates (POST) transactions.
func (h *TransactionHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleTransactionByID reads, patches or deletes a single transaction.
func (h *TransactionHandler) HandleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Transaction ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, id)
	case http.MethodPatch:
		h.handleUpdate(w, r, id)
	case http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *TransactionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := transaction.ListFilter{
		Type:     transaction.Type(q.Get("type")),
		Status:   transaction.Status(q.Get("status")),
		EntityID: q.Get("entityId"),
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	if dueBefore := q.Get("dueBefore"); dueBefore != "" {
		t, err := parseDate("dueBefore", dueBefore)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.DueBefore = t
	}

	txs, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err, "list transactions")
		return
	}
	if txs == nil {
		txs = []*transaction.Transaction{}
	}

	writeJSON(w, http.StatusOK, txs)
}

func (h *TransactionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding create transaction request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params, err := req.toParams()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	params.CreatedBy = actorFromRequest(r)

	id, err := h.service.Create(r.Context(), params)
	if err != nil {
		writeDomainError(w, err, "create transaction")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *TransactionHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	tx, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "get transaction")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *TransactionHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var req UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding update transaction request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params, err := req.toParams()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Update(r.Context(), id, params); err != nil {
		writeDomainError(w, err, "update transaction")
		return
	}

	tx, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "get transaction")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *TransactionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err, "delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (req CreateTransactionRequest) toParams() (transaction.CreateParams, error) {
	dueDate, err := parseDate("dueDate", req.DueDate)
	if err != nil {
		return transaction.CreateParams{}, err
	}
	issueDate, err := parseDate("issueDate", req.IssueDate)
	if err != nil {
		return transaction.CreateParams{}, err
	}
	paymentDate, err := parseOptionalDate("paymentDate", req.PaymentDate)
	if err != nil {
		return transaction.CreateParams{}, err
	}

	status := req.Status
	if status == "" {
		status = transaction.StatusPending
	}

	return transaction.CreateParams{
		Type:             req.Type,
		Status:           status,
		ReferenceNumber:  req.ReferenceNumber,
		Description:      req.Description,
		Amount:           req.Amount,
		Currency:         req.Currency,
		ExchangeRate:     req.ExchangeRate,
		DueDate:          dueDate,
		IssueDate:        issueDate,
		PaymentDate:      paymentDate,
		PaymentMethod:    req.PaymentMethod,
		Entity:           req.Entity,
		RelatedDocuments: req.RelatedDocuments,
		Notes:            req.Notes,
		Attachments:      req.Attachments,
	}, nil
}

func (req UpdateTransactionRequest) toParams() (transaction.UpdateParams, error) {
	dueDate, err := parseOptionalDate("dueDate", req.DueDate)
	if err != nil {
		return transaction.UpdateParams{}, err
	}
	issueDate, err := parseOptionalDate("issueDate", req.IssueDate)
	if err != nil {
		return transaction.UpdateParams{}, err
	}
	paymentDate, err := parseOptionalDate("paymentDate", req.PaymentDate)
	if err != nil {
		return transaction.UpdateParams{}, err
	}

	return transaction.UpdateParams{
		Type:             req.Type,
		Status:           req.Status,
		ReferenceNumber:  req.ReferenceNumber,
		Description:      req.Description,
		Amount:           req.Amount,
		Currency:         req.Currency,
		ExchangeRate:     req.ExchangeRate,
		DueDate:          dueDate,
		IssueDate:        issueDate,
		PaymentDate:      paymentDate,
		PaymentMethod:    req.PaymentMethod,
		Entity:           req.Entity,
		RelatedDocuments: req.RelatedDocuments,
		Notes:            req.Notes,
		Attachments:      req.Attachments,
	}, nil
}

func actorFromRequest(r *http.Request) transaction.Actor {
	p := middleware.PrincipalFromContext(r.Context())
	if p == nil {
		return transaction.Actor{}
	}
	return transaction.Actor{ID: p.ID, Name: p.Name}
}
