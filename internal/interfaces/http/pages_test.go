package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"finmgmt/internal/domain/payment"
	"finmgmt/internal/domain/summary"
	"finmgmt/internal/domain/transaction"
)

func TestHandleHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != `{"status":"ok"}` {
		t.Errorf("got %d %q", rr.Code, rr.Body.String())
	}
}

func newTestPageHandler(txs *MockTransactionService, pays *MockPaymentService, sums *MockSummaryService) *PageHandler {
	return NewPageHandler(txs, pays, sums, "USD")
}

func TestHandleFinancial_Dashboard(t *testing.T) {
	sums := &MockSummaryService{
		CurrentFunc: func(ctx context.Context) (*summary.Summary, error) {
			return &summary.Summary{
				Currency:         "USD",
				TotalReceivables: 1234.5,
				TopDebtors:       []summary.EntityBalance{{EntityID: "c1", EntityName: "ACME Freight", Amount: 1234.5, Currency: "USD"}},
				Cashflow:         []summary.CashflowEntry{{Date: "2026-05-01", Receivables: 1234.5, Balance: 1234.5}},
				GeneratedAt:      time.Date(2026, 5, 1, 6, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	handler := newTestPageHandler(&MockTransactionService{}, &MockPaymentService{}, sums)

	rr := httptest.NewRecorder()
	handler.HandleFinancial(rr, withManager(httptest.NewRequest(http.MethodGet, "/financial", nil)))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"$1,234.50", "ACME Freight", "2026-05-01", "Signed in as Maria"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestHandleFinancial_DashboardWithoutSummary(t *testing.T) {
	handler := newTestPageHandler(&MockTransactionService{}, &MockPaymentService{}, &MockSummaryService{})

	rr := httptest.NewRecorder()
	handler.HandleFinancial(rr, withManager(httptest.NewRequest(http.MethodGet, "/financial?tab=dashboard", nil)))

	if !strings.Contains(rr.Body.String(), "No financial summary has been generated yet.") {
		t.Error("expected empty-summary message")
	}
}

func TestHandleFinancial_Transactions(t *testing.T) {
	txs := &MockTransactionService{
		ListFunc: func(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
			return []*transaction.Transaction{{
				ID: "tx-1", ReferenceNumber: "INV-42", Type: transaction.TypePayable,
				Status: transaction.StatusOverdue, Amount: 99.9, Currency: "EUR",
				Entity: transaction.Entity{Name: "Ocean Lines"},
			}}, nil
		},
	}
	handler := newTestPageHandler(txs, &MockPaymentService{}, &MockSummaryService{})

	rr := httptest.NewRecorder()
	handler.HandleFinancial(rr, withManager(httptest.NewRequest(http.MethodGet, "/financial?tab=transactions", nil)))

	body := rr.Body.String()
	for _, want := range []string{"INV-42", "Ocean Lines", "€99.90", `action="/financial/transactions"`} {
		if !strings.Contains(body, want) {
			t.Errorf("transactions tab missing %q", want)
		}
	}
}

func TestHandleFinancial_PaymentsFilterAndError(t *testing.T) {
	var gotFilter string
	pays := &MockPaymentService{
		ListFunc: func(ctx context.Context, transactionID string) ([]*payment.Record, error) {
			gotFilter = transactionID
			return nil, errors.New("permission denied")
		},
	}
	handler := newTestPageHandler(&MockTransactionService{}, pays, &MockSummaryService{})

	rr := httptest.NewRecorder()
	handler.HandleFinancial(rr, withManager(httptest.NewRequest(http.MethodGet, "/financial?tab=payments&transactionId=tx-7", nil)))

	if gotFilter != "tx-7" {
		t.Errorf("filter = %q, want tx-7", gotFilter)
	}
	if !strings.Contains(rr.Body.String(), "permission denied") {
		t.Error("expected store error to be rendered")
	}
}

func TestHandleCreateTransactionForm(t *testing.T) {
	var created transaction.CreateParams
	txs := &MockTransactionService{
		CreateFunc: func(ctx context.Context, params transaction.CreateParams) (string, error) {
			if err := params.Validate(); err != nil {
				return "", err
			}
			created = params
			return "tx-new", nil
		},
	}
	handler := newTestPageHandler(txs, &MockPaymentService{}, &MockSummaryService{})

	form := url.Values{
		"type":            {"receivable"},
		"referenceNumber": {"INV-100"},
		"amount":          {"320.10"},
		"issueDate":       {"2026-05-01"},
		"dueDate":         {"2026-05-31"},
		"entityId":        {"cust-9"},
		"entityType":      {"customer"},
		"entityName":      {"Blue Cargo"},
	}

	t.Run("Valid form redirects", func(t *testing.T) {
		req := withManager(httptest.NewRequest(http.MethodPost, "/financial/transactions", strings.NewReader(form.Encode())))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()

		handler.HandleCreateTransaction(rr, req)

		if rr.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want 303 (%s)", rr.Code, rr.Body.String())
		}
		if created.Currency != "USD" || created.Status != transaction.StatusPending {
			t.Errorf("defaults not applied: currency=%q status=%q", created.Currency, created.Status)
		}
		if created.CreatedBy.ID != "user-1" {
			t.Errorf("CreatedBy.ID = %q, want user-1", created.CreatedBy.ID)
		}
	})

	t.Run("Invalid form re-renders with error", func(t *testing.T) {
		bad := url.Values{"type": {"receivable"}, "amount": {"ten"}}
		req := withManager(httptest.NewRequest(http.MethodPost, "/financial/transactions", strings.NewReader(bad.Encode())))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()

		handler.HandleCreateTransaction(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), transaction.ErrInvalidAmount.Error()) {
			t.Error("expected form error in page")
		}
	})
}
