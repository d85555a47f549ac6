package http

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"time"

	"finmgmt/internal/domain/transaction"
	"finmgmt/internal/infrastructure/spreadsheet"
)

type ReportHandler struct {
	transactions TransactionService
	payments     PaymentService
	now          func() time.Time
}

func NewReportHandler(transactions TransactionService, payments PaymentService) *ReportHandler {
	return &ReportHandler{transactions: transactions, payments: payments, now: time.Now}
}

// HandleTransactionsReport streams every transaction (narrowed by ?type= and
// ?status=) and all payments as an xlsx workbook.
func (h *ReportHandler) HandleTransactionsReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter := transaction.ListFilter{
		Type:   transaction.Type(r.URL.Query().Get("type")),
		Status: transaction.Status(r.URL.Query().Get("status")),
	}
	txs, err := h.transactions.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err, "list transactions")
		return
	}

	payments, err := h.payments.List(r.Context(), "")
	if err != nil {
		writeDomainError(w, err, "list payments")
		return
	}

	var buf bytes.Buffer
	if err := spreadsheet.Write(&buf, txs, payments); err != nil {
		log.Printf("Error building transactions report: %v", err)
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", spreadsheet.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, spreadsheet.FileName(h.now())))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing transactions report: %v", err)
	}
}
