package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"finmgmt/internal/domain/payment"
	"finmgmt/internal/domain/summary"
	"finmgmt/internal/domain/transaction"
	"finmgmt/internal/infrastructure/spreadsheet"
)

func TestHandleSummary(t *testing.T) {
	tests := []struct {
		name           string
		currentFunc    func(ctx context.Context) (*summary.Summary, error)
		expectedStatus int
	}{
		{
			name: "Materialized",
			currentFunc: func(ctx context.Context) (*summary.Summary, error) {
				return &summary.Summary{Currency: "USD", TotalReceivables: 100}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not materialized",
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Backend failure",
			currentFunc: func(ctx context.Context) (*summary.Summary, error) {
				return nil, errors.New("unavailable")
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewSummaryHandler(&MockSummaryService{CurrentFunc: tt.currentFunc})
			rr := httptest.NewRecorder()
			handler.HandleSummary(rr, withManager(httptest.NewRequest(http.MethodGet, "/api/financial/summary", nil)))

			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandleRebuild(t *testing.T) {
	calls := 0
	handler := NewSummaryHandler(&MockSummaryService{
		RebuildFunc: func(ctx context.Context) (*summary.Summary, error) {
			calls++
			return &summary.Summary{Currency: "USD", TotalPayables: 42}, nil
		},
	})

	rr := httptest.NewRecorder()
	handler.HandleRebuild(rr, withManager(httptest.NewRequest(http.MethodGet, "/api/financial/summary/rebuild", nil)))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.HandleRebuild(rr, withManager(httptest.NewRequest(http.MethodPost, "/api/financial/summary/rebuild", nil)))
	if rr.Code != http.StatusOK {
		t.Fatalf("POST status = %d, want 200", rr.Code)
	}

	var got summary.Summary
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalPayables != 42 || calls != 1 {
		t.Errorf("TotalPayables = %v, calls = %d", got.TotalPayables, calls)
	}
}

func TestHandleTransactionsReport(t *testing.T) {
	txs := &MockTransactionService{
		ListFunc: func(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
			return []*transaction.Transaction{{
				ID: "tx-1", Type: transaction.TypeReceivable, Status: transaction.StatusPending,
				ReferenceNumber: "INV-9", Amount: 10, Currency: "USD",
				DueDate: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			}}, nil
		},
	}
	payments := &MockPaymentService{}

	handler := NewReportHandler(txs, payments)
	handler.now = func() time.Time { return time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC) }

	rr := httptest.NewRecorder()
	handler.HandleTransactionsReport(rr, withManager(httptest.NewRequest(http.MethodGet, "/api/financial/reports/transactions.xlsx", nil)))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != spreadsheet.ContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="financial_transactions_20260105_093000.xlsx"` {
		t.Errorf("Content-Disposition = %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a workbook: %v", err)
	}
	defer f.Close()

	ref, err := f.GetCellValue(spreadsheet.TransactionsSheet, "A2")
	if err != nil || ref != "INV-9" {
		t.Errorf("A2 = %q (%v), want INV-9", ref, err)
	}
}

func TestHandleTransactionsReport_ListFailure(t *testing.T) {
	payments := &MockPaymentService{
		ListFunc: func(ctx context.Context, transactionID string) ([]*payment.Record, error) {
			return nil, errors.New("unavailable")
		},
	}
	handler := NewReportHandler(&MockTransactionService{}, payments)

	rr := httptest.NewRecorder()
	handler.HandleTransactionsReport(rr, withManager(httptest.NewRequest(http.MethodGet, "/api/financial/reports/transactions.xlsx", nil)))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}
