package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"finmgmt/internal/domain/payment"
	"finmgmt/internal/domain/transaction"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "zero and 00/100"},
		{12.5, "twelve and 50/100"},
		{1500.25, "one thousand five hundred and 25/100"},
		{-3, "minus three and 00/100"},
	}

	for _, tt := range tests {
		if got := AmountInWords(tt.amount); got != tt.want {
			t.Errorf("AmountInWords(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestWrite(t *testing.T) {
	due := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	txs := []*transaction.Transaction{
		{
			ID:              "tx-1",
			Type:            transaction.TypeReceivable,
			Status:          transaction.StatusPending,
			ReferenceNumber: "INV-100",
			Entity:          transaction.Entity{ID: "c1", Type: "customer", Name: "Acme"},
			Amount:          1200.5,
			Currency:        "USD",
			IssueDate:       due.AddDate(0, -1, 0),
			DueDate:         due,
		},
	}
	payments := []*payment.Record{
		{ID: "p-1", TransactionID: "tx-1", ReferenceNumber: "WIRE-1", PaymentMethod: transaction.MethodBankTransfer, Amount: 200, Currency: "USD", PaymentDate: due},
	}

	var buf bytes.Buffer
	if err := Write(&buf, txs, payments); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	checks := []struct {
		sheet, cell, want string
	}{
		{TransactionsSheet, "A1", "Reference"},
		{TransactionsSheet, "A2", "INV-100"},
		{TransactionsSheet, "D2", "Acme"},
		{TransactionsSheet, "H2", "$1,200.50"},
		{TransactionsSheet, "I2", "one thousand two hundred and 50/100"},
		{TransactionsSheet, "K2", "2024-04-30"},
		{PaymentsSheet, "B2", "WIRE-1"},
		{PaymentsSheet, "C2", "bank_transfer"},
	}
	for _, c := range checks {
		got, err := f.GetCellValue(c.sheet, c.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s, %s) error = %v", c.sheet, c.cell, err)
		}
		if got != c.want {
			t.Errorf("%s!%s = %q, want %q", c.sheet, c.cell, got, c.want)
		}
	}
}

func TestBuild_PaidUsesPaymentRate(t *testing.T) {
	due := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	rate := 5.0
	txs := []*transaction.Transaction{
		{ID: "tx-1", ReferenceNumber: "INV-200", Amount: 1000, Currency: "BRL", IssueDate: due, DueDate: due},
	}
	payments := []*payment.Record{
		{ID: "p-1", TransactionID: "tx-1", Amount: 20, Currency: "USD", ExchangeRate: &rate, PaymentDate: due},
		{ID: "p-2", TransactionID: "tx-1", Amount: 50, Currency: "BRL", PaymentDate: due},
	}

	f, err := Build(txs, payments)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue(TransactionsSheet, "L2")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if got != "150" {
		t.Errorf("Paid = %q, want 150", got)
	}
}

func TestFileName(t *testing.T) {
	got := FileName(time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC))
	if got != "financial_transactions_20240203_040506.xlsx" {
		t.Errorf("FileName() = %q", got)
	}
}
