package summary

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finmgmt/internal/domain/payment"
	"finmgmt/internal/domain/transaction"
)

type entityTotal struct {
	id     string
	name   string
	amount decimal.Decimal
}

type dayTotal struct {
	receivables decimal.Decimal
	payables    decimal.Decimal
}

// Build aggregates open transactions into a summary expressed in currency.
//
// Outstanding is the transaction amount minus the payments recorded against
// it, floored at zero, multiplied by the stored exchange rate. Only pending
// and overdue transactions contribute.
func Build(txs []*transaction.Transaction, payments []*payment.Record, currency string, now time.Time) *Summary {
	paid := make(map[string]decimal.Decimal)
	for _, p := range payments {
		amount := decimal.NewFromFloat(p.Amount).Mul(decimal.NewFromFloat(p.Rate()))
		paid[p.TransactionID] = paid[p.TransactionID].Add(amount)
	}

	var totalRec, totalPay, overdueRec, overduePay decimal.Decimal
	debtors := make(map[string]*entityTotal)
	creditors := make(map[string]*entityTotal)
	days := make(map[string]*dayTotal)

	for _, tx := range txs {
		if !tx.IsOpen() {
			continue
		}

		outstanding := decimal.NewFromFloat(tx.Amount).Mul(decimal.NewFromFloat(tx.Rate())).Sub(paid[tx.ID])
		if !outstanding.IsPositive() {
			continue
		}
		overdue := tx.IsOverdue(now)

		day := tx.DueDate.UTC().Format("2006-01-02")
		dt, ok := days[day]
		if !ok {
			dt = &dayTotal{}
			days[day] = dt
		}

		switch tx.Type {
		case transaction.TypeReceivable:
			totalRec = totalRec.Add(outstanding)
			if overdue {
				overdueRec = overdueRec.Add(outstanding)
			}
			dt.receivables = dt.receivables.Add(outstanding)
			addEntity(debtors, tx.Entity, outstanding)
		case transaction.TypePayable:
			totalPay = totalPay.Add(outstanding)
			if overdue {
				overduePay = overduePay.Add(outstanding)
			}
			dt.payables = dt.payables.Add(outstanding)
			addEntity(creditors, tx.Entity, outstanding)
		}
	}

	return &Summary{
		ID:                 DocumentID,
		Currency:           currency,
		TotalReceivables:   toFloat(totalRec),
		TotalPayables:      toFloat(totalPay),
		OverdueReceivables: toFloat(overdueRec),
		OverduePayables:    toFloat(overduePay),
		Cashflow:           cashflow(days),
		TopDebtors:         top(debtors, currency),
		TopCreditors:       top(creditors, currency),
		GeneratedAt:        now.UTC(),
	}
}

func addEntity(m map[string]*entityTotal, e transaction.Entity, amount decimal.Decimal) {
	et, ok := m[e.ID]
	if !ok {
		et = &entityTotal{id: e.ID, name: e.Name}
		m[e.ID] = et
	}
	et.amount = et.amount.Add(amount)
}

func cashflow(days map[string]*dayTotal) []CashflowEntry {
	entries := make([]CashflowEntry, 0, len(days))
	for date, dt := range days {
		entries = append(entries, CashflowEntry{
			Date:        date,
			Receivables: toFloat(dt.receivables),
			Payables:    toFloat(dt.payables),
			Balance:     toFloat(dt.receivables.Sub(dt.payables)),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries
}

func top(m map[string]*entityTotal, currency string) []EntityBalance {
	totals := make([]*entityTotal, 0, len(m))
	for _, et := range m {
		totals = append(totals, et)
	}
	sort.Slice(totals, func(i, j int) bool {
		if c := totals[i].amount.Cmp(totals[j].amount); c != 0 {
			return c > 0
		}
		return totals[i].id < totals[j].id
	})
	if len(totals) > TopEntities {
		totals = totals[:TopEntities]
	}

	out := make([]EntityBalance, 0, len(totals))
	for _, et := range totals {
		out = append(out, EntityBalance{
			EntityID:   et.id,
			EntityName: et.name,
			Amount:     toFloat(et.amount),
			Currency:   currency,
		})
	}
	return out
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
