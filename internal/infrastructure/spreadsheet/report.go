package spreadsheet

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/divan/num2words"
	"github.com/xuri/excelize/v2"

	"finmgmt/internal/domain/payment"
	"finmgmt/internal/domain/transaction"
	"finmgmt/internal/shared/money"
)

const (
	TransactionsSheet = "Transactions"
	PaymentsSheet     = "Payments"
	ContentType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout        = "2006-01-02"
)

var (
	transactionHeaders = []string{
		"Reference", "Type", "Status", "Entity", "Description", "Amount", "Currency",
		"Amount (formatted)", "Amount in words", "Issue date", "Due date", "Paid",
	}
	paymentHeaders = []string{
		"Transaction", "Reference", "Method", "Amount", "Currency", "Amount (formatted)", "Payment date",
	}
)

// FileName returns the download name for a report generated at now.
func FileName(now time.Time) string {
	return fmt.Sprintf("financial_transactions_%s.xlsx", now.Format("20060102_150405"))
}

// Build lays out transactions and payments on two sheets.
// The caller must Close the returned file.
func Build(txs []*transaction.Transaction, payments []*payment.Record) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", TransactionsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(PaymentsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create payments sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeHeaders(f, TransactionsSheet, transactionHeaders, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeHeaders(f, PaymentsSheet, paymentHeaders, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	// Paid is converted with each payment's rate, as the summary does.
	paidByTx := make(map[string]float64)
	for _, p := range payments {
		paidByTx[p.TransactionID] += p.Amount * p.Rate()
	}

	for i, t := range txs {
		row := []any{
			t.ReferenceNumber, string(t.Type), string(t.Status), t.Entity.Name, t.Description,
			t.Amount, t.Currency, money.Format(t.Amount, t.Currency), AmountInWords(t.Amount),
			t.IssueDate.Format(dateLayout), t.DueDate.Format(dateLayout), money.Round2(paidByTx[t.ID]),
		}
		if err := writeRow(f, TransactionsSheet, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	for i, p := range payments {
		row := []any{
			p.TransactionID, p.ReferenceNumber, string(p.PaymentMethod), p.Amount, p.Currency,
			money.Format(p.Amount, p.Currency), p.PaymentDate.Format(dateLayout),
		}
		if err := writeRow(f, PaymentsSheet, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the report and streams it to w.
func Write(w io.Writer, txs []*transaction.Transaction, payments []*payment.Record) error {
	f, err := Build(txs, payments)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}

// AmountInWords spells an amount the way it is written on a check,
// e.g. "one thousand five hundred and 25/100".
func AmountInWords(amount float64) string {
	cents := int64(math.Round(math.Abs(amount) * 100))
	whole := int(cents / 100)
	words := num2words.Convert(whole)
	if amount < 0 {
		words = "minus " + words
	}
	return fmt.Sprintf("%s and %02d/100", words, cents%100)
}

func writeHeaders(f *excelize.File, sheet string, headers []string, style int) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header %s: %w", header, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
