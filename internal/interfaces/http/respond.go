package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"finmgmt/internal/domain/payment"
	"finmgmt/internal/domain/summary"
	"finmgmt/internal/domain/transaction"
)

var badRequestErrors = []error{
	transaction.ErrInvalidType,
	transaction.ErrInvalidStatus,
	transaction.ErrInvalidMethod,
	transaction.ErrInvalidEntity,
	transaction.ErrInvalidDocument,
	transaction.ErrInvalidCurrency,
	transaction.ErrInvalidAmount,
	transaction.ErrInvalidExchangeRate,
	transaction.ErrInvalidDates,
	transaction.ErrInvalidPaymentDate,
	transaction.ErrEmptyUpdate,
	payment.ErrInvalidTransaction,
	payment.ErrInvalidAmount,
	payment.ErrInvalidCurrency,
	payment.ErrInvalidMethod,
	payment.ErrInvalidExchangeRate,
	payment.ErrInvalidPaymentDate,
	payment.ErrEmptyUpdate,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeDomainError maps a service error to an HTTP status. Unexpected errors
// are logged with op and reported as a generic failure.
func writeDomainError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, transaction.ErrTransactionNotFound),
		errors.Is(err, payment.ErrPaymentNotFound),
		errors.Is(err, summary.ErrSummaryNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	log.Printf("Error %s: %v", op, err)
	http.Error(w, "Failed to "+op, http.StatusInternalServerError)
}

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format (use YYYY-MM-DD or RFC 3339)", field)
	}
	return t.UTC(), nil
}

// parseOptionalDate returns nil for an absent field. A present field must
// hold a date; clearing a date is not supported.
func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	if strings.TrimSpace(*value) == "" {
		return nil, fmt.Errorf("%s must not be empty", field)
	}
	t, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
