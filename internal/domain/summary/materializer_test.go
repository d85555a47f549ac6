package summary

import (
	"testing"
	"time"

	"finmgmt/internal/domain/payment"
	"finmgmt/internal/domain/transaction"
)

var now = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

func tx(id string, typ transaction.Type, status transaction.Status, amount float64, due time.Time, entityID string) *transaction.Transaction {
	return &transaction.Transaction{
		ID:       id,
		Type:     typ,
		Status:   status,
		Amount:   amount,
		Currency: "USD",
		DueDate:  due,
		Entity:   transaction.Entity{ID: entityID, Name: "Entity " + entityID, Type: "customer"},
	}
}

func TestBuild_Totals(t *testing.T) {
	yesterday := now.AddDate(0, 0, -1)
	nextWeek := now.AddDate(0, 0, 7)

	txs := []*transaction.Transaction{
		tx("r1", transaction.TypeReceivable, transaction.StatusPending, 1000, nextWeek, "c1"),
		tx("r2", transaction.TypeReceivable, transaction.StatusPending, 300, yesterday, "c2"),
		tx("r3", transaction.TypeReceivable, transaction.StatusPaid, 5000, yesterday, "c1"),
		tx("p1", transaction.TypePayable, transaction.StatusOverdue, 200, nextWeek, "v1"),
		tx("p2", transaction.TypePayable, transaction.StatusCancelled, 900, yesterday, "v2"),
	}
	payments := []*payment.Record{
		{TransactionID: "r1", Amount: 250},
		{TransactionID: "r3", Amount: 5000},
	}

	s := Build(txs, payments, "USD", now)

	if s.TotalReceivables != 1050 {
		t.Errorf("TotalReceivables = %v, want 1050", s.TotalReceivables)
	}
	if s.OverdueReceivables != 300 {
		t.Errorf("OverdueReceivables = %v, want 300", s.OverdueReceivables)
	}
	if s.TotalPayables != 200 {
		t.Errorf("TotalPayables = %v, want 200", s.TotalPayables)
	}
	if s.OverduePayables != 200 {
		t.Errorf("OverduePayables = %v, want 200", s.OverduePayables)
	}
	if s.ID != DocumentID || s.Currency != "USD" || !s.GeneratedAt.Equal(now) {
		t.Errorf("unexpected metadata: id=%q currency=%q generatedAt=%v", s.ID, s.Currency, s.GeneratedAt)
	}
}

func TestBuild_Cashflow(t *testing.T) {
	day1 := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 5, 21, 9, 0, 0, 0, time.UTC)

	txs := []*transaction.Transaction{
		tx("r1", transaction.TypeReceivable, transaction.StatusPending, 100, day2, "c1"),
		tx("p1", transaction.TypePayable, transaction.StatusPending, 40, day1, "v1"),
		tx("r2", transaction.TypeReceivable, transaction.StatusPending, 60, day1, "c2"),
	}

	s := Build(txs, nil, "USD", now)

	if len(s.Cashflow) != 2 {
		t.Fatalf("len(Cashflow) = %d, want 2", len(s.Cashflow))
	}
	first := s.Cashflow[0]
	if first.Date != "2024-05-20" || first.Receivables != 60 || first.Payables != 40 || first.Balance != 20 {
		t.Errorf("Cashflow[0] = %+v", first)
	}
	second := s.Cashflow[1]
	if second.Date != "2024-05-21" || second.Balance != 100 {
		t.Errorf("Cashflow[1] = %+v", second)
	}
}

func TestBuild_TopDebtorsLimitedAndSorted(t *testing.T) {
	due := now.AddDate(0, 1, 0)
	var txs []*transaction.Transaction
	for i, amount := range []float64{10, 70, 30, 50, 90, 20, 60} {
		id := string(rune('a' + i))
		txs = append(txs, tx("r"+id, transaction.TypeReceivable, transaction.StatusPending, amount, due, id))
	}

	s := Build(txs, nil, "BRL", now)

	if len(s.TopDebtors) != TopEntities {
		t.Fatalf("len(TopDebtors) = %d, want %d", len(s.TopDebtors), TopEntities)
	}
	want := []float64{90, 70, 60, 50, 30}
	for i, d := range s.TopDebtors {
		if d.Amount != want[i] {
			t.Errorf("TopDebtors[%d].Amount = %v, want %v", i, d.Amount, want[i])
		}
		if d.Currency != "BRL" {
			t.Errorf("TopDebtors[%d].Currency = %q, want BRL", i, d.Currency)
		}
	}
	if len(s.TopCreditors) != 0 {
		t.Errorf("len(TopCreditors) = %d, want 0", len(s.TopCreditors))
	}
}

func TestBuild_ExchangeRateAndOverpayment(t *testing.T) {
	rate := 5.0
	due := now.AddDate(0, 0, 3)
	withRate := tx("r1", transaction.TypeReceivable, transaction.StatusPending, 10, due, "c1")
	withRate.ExchangeRate = &rate
	overpaid := tx("r2", transaction.TypeReceivable, transaction.StatusPending, 10, due, "c2")

	payments := []*payment.Record{{TransactionID: "r2", Amount: 25}}

	s := Build([]*transaction.Transaction{withRate, overpaid}, payments, "BRL", now)

	if s.TotalReceivables != 50 {
		t.Errorf("TotalReceivables = %v, want 50", s.TotalReceivables)
	}
	if len(s.TopDebtors) != 1 || s.TopDebtors[0].EntityID != "c1" {
		t.Errorf("TopDebtors = %+v, want only c1", s.TopDebtors)
	}
}

func TestBuild_Empty(t *testing.T) {
	s := Build(nil, nil, "USD", now)
	if s.TotalReceivables != 0 || len(s.Cashflow) != 0 || s.TopDebtors == nil || s.Cashflow == nil {
		t.Errorf("unexpected empty summary: %+v", s)
	}
}

func TestBuild_DueTodayIsNotOverdue(t *testing.T) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	s := Build([]*transaction.Transaction{
		tx("r-today", transaction.TypeReceivable, transaction.StatusPending, 400, today, "c1"),
		tx("p-today", transaction.TypePayable, transaction.StatusPending, 150, today, "v1"),
	}, nil, "USD", now)

	if s.TotalReceivables != 400 || s.TotalPayables != 150 {
		t.Errorf("totals = %v/%v, want 400/150", s.TotalReceivables, s.TotalPayables)
	}
	if s.OverdueReceivables != 0 || s.OverduePayables != 0 {
		t.Errorf("overdue = %v/%v, want 0/0", s.OverdueReceivables, s.OverduePayables)
	}
}
