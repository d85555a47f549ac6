package summary

import (
	"errors"
	"slices"
	"time"
)

// DocumentID is the id of the materialized summary document.
const DocumentID = "current"

// TopEntities is how many debtors and creditors a summary lists.
const TopEntities = 5

var ErrSummaryNotFound = errors.New("financial summary not found")

// CashflowEntry is a dated net-balance record combining receivables and payables.
type CashflowEntry struct {
	Date        string  `json:"date" firestore:"date"`
	Receivables float64 `json:"receivables" firestore:"receivables"`
	Payables    float64 `json:"payables" firestore:"payables"`
	Balance     float64 `json:"balance" firestore:"balance"`
}

// EntityBalance is the outstanding amount owed by (or to) one counterparty.
type EntityBalance struct {
	EntityID   string  `json:"entityId" firestore:"entityId"`
	EntityName string  `json:"entityName" firestore:"entityName"`
	Amount     float64 `json:"amount" firestore:"amount"`
	Currency   string  `json:"currency" firestore:"currency"`
}

// Summary is the precomputed aggregate read by the dashboard.
type Summary struct {
	ID                 string          `json:"id,omitempty" firestore:"-"`
	Currency           string          `json:"currency" firestore:"currency"`
	TotalReceivables   float64         `json:"totalReceivables" firestore:"totalReceivables"`
	TotalPayables      float64         `json:"totalPayables" firestore:"totalPayables"`
	OverdueReceivables float64         `json:"overdueReceivables" firestore:"overdueReceivables"`
	OverduePayables    float64         `json:"overduePayables" firestore:"overduePayables"`
	Cashflow           []CashflowEntry `json:"cashflow" firestore:"cashflow"`
	TopDebtors         []EntityBalance `json:"topDebtors" firestore:"topDebtors"`
	TopCreditors       []EntityBalance `json:"topCreditors" firestore:"topCreditors"`
	GeneratedAt        time.Time       `json:"generatedAt" firestore:"generatedAt"`
}

// Clone returns a deep copy of s.
func (s *Summary) Clone() *Summary {
	c := *s
	c.Cashflow = slices.Clone(s.Cashflow)
	c.TopDebtors = slices.Clone(s.TopDebtors)
	c.TopCreditors = slices.Clone(s.TopCreditors)
	return &c
}
