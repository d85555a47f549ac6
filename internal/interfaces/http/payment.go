package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"finmgmt/internal/domain/payment"
	"finmgmt/internal/domain/transaction"
)

// PaymentService is implemented by payment.Service.
type PaymentService interface {
	Create(ctx context.Context, params payment.CreateParams) (string, error)
	Get(ctx context.Context, id string) (*payment.Record, error)
	List(ctx context.Context, transactionID string) ([]*payment.Record, error)
	Update(ctx context.Context, id string, params payment.UpdateParams) error
	Delete(ctx context.Context, id string) error
}

type PaymentHandler struct {
	service PaymentService
}

func NewPaymentHandler(service PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

type CreatePaymentRequest struct {
	TransactionID   string                    `json:"transactionId"`
	Amount          float64                   `json:"amount"`
	Currency        string                    `json:"currency"`
	ExchangeRate    *float64                  `json:"exchangeRate,omitempty"`
	PaymentDate     string                    `json:"paymentDate"`
	PaymentMethod   transaction.PaymentMethod `json:"paymentMethod"`
	ReferenceNumber string                    `json:"referenceNumber"`
	Notes           *string                   `json:"notes,omitempty"`
	Attachments     []transaction.Attachment  `json:"attachments,omitempty"`
}

type UpdatePaymentRequest struct {
	TransactionID   *string                    `json:"transactionId,omitempty"`
	Amount          *float64                   `json:"amount,omitempty"`
	Currency        *string                    `json:"currency,omitempty"`
	ExchangeRate    *float64                   `json:"exchangeRate,omitempty"`
	PaymentDate     *string                    `json:"paymentDate,omitempty"`
	PaymentMethod   *transaction.PaymentMethod `json:"paymentMethod,omitempty"`
	ReferenceNumber *string                    `json:"referenceNumber,omitempty"`
	Notes           *string                    `json:"notes,omitempty"`
	Attachments     *[]transaction.Attachment  `json:"attachments,omitempty"`
}

// HandlePayments lists (GET, optional ?transactionId=) or creates (POST) payments.
func (h *PaymentHandler) HandlePayments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		payments, err := h.service.List(r.Context(), r.URL.Query().Get("transactionId"))
		if err != nil {
			writeDomainError(w, err, "list payments")
			return
		}
		if payments == nil {
			payments = []*payment.Record{}
		}
		writeJSON(w, http.StatusOK, payments)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandlePaymentByID reads, patches or deletes a single payment record.
func (h *PaymentHandler) HandlePaymentByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Payment ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rec, err := h.service.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, err, "get payment")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	case http.MethodPatch:
		h.handleUpdate(w, r, id)
	case http.MethodDelete:
		if err := h.service.Delete(r.Context(), id); err != nil {
			writeDomainError(w, err, "delete payment")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PaymentHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding create payment request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	paymentDate, err := parseDate("paymentDate", req.PaymentDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.service.Create(r.Context(), payment.CreateParams{
		TransactionID:   req.TransactionID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		ExchangeRate:    req.ExchangeRate,
		PaymentDate:     paymentDate,
		PaymentMethod:   req.PaymentMethod,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		Attachments:     req.Attachments,
		CreatedBy:       actorFromRequest(r),
	})
	if err != nil {
		writeDomainError(w, err, "create payment")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *PaymentHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var req UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding update payment request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	paymentDate, err := parseOptionalDate("paymentDate", req.PaymentDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := payment.UpdateParams{
		TransactionID:   req.TransactionID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		ExchangeRate:    req.ExchangeRate,
		PaymentDate:     paymentDate,
		PaymentMethod:   req.PaymentMethod,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		Attachments:     req.Attachments,
	}
	if err := h.service.Update(r.Context(), id, params); err != nil {
		writeDomainError(w, err, "update payment")
		return
	}

	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "get payment")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
