package financial

import (
	"context"
	"errors"
	"log"
	"sync"

	"finmgmt/internal/domain/payment"
	"finmgmt/internal/domain/summary"
	"finmgmt/internal/domain/transaction"
)

// TransactionService is the subset of transaction.Service the store drives.
type TransactionService interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
	Create(ctx context.Context, params transaction.CreateParams) (string, error)
	Update(ctx context.Context, id string, params transaction.UpdateParams) error
	Delete(ctx context.Context, id string) error
}

// PaymentService is the subset of payment.Service the store drives.
type PaymentService interface {
	List(ctx context.Context, transactionID string) ([]*payment.Record, error)
	Create(ctx context.Context, params payment.CreateParams) (string, error)
	Update(ctx context.Context, id string, params payment.UpdateParams) error
	Delete(ctx context.Context, id string) error
}

// SummaryReader reads the materialized summary.
type SummaryReader interface {
	Current(ctx context.Context) (*summary.Summary, error)
}

// State is a snapshot of what the store last loaded.
type State struct {
	Transactions []*transaction.Transaction
	Payments     []*payment.Record
	Summary      *summary.Summary
	Loading      bool
	Error        string
}

// Store holds the transactions, payments and summary a view is working with.
// Every read replaces the corresponding slice of state; every write is
// followed by a refetch of the collection it touched. Failures are logged
// and recorded in State.Error; writes also return them.
type Store struct {
	transactions TransactionService
	payments     PaymentService
	summaries    SummaryReader

	mu            sync.RWMutex
	state         State
	paymentFilter string
}

func NewStore(transactions TransactionService, payments PaymentService, summaries SummaryReader) *Store {
	return &Store{
		transactions: transactions,
		payments:     payments,
		summaries:    summaries,
	}
}

// State returns a deep copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if s.state.Transactions != nil {
		st.Transactions = make([]*transaction.Transaction, len(s.state.Transactions))
		for i, t := range s.state.Transactions {
			st.Transactions[i] = t.Clone()
		}
	}
	if s.state.Payments != nil {
		st.Payments = make([]*payment.Record, len(s.state.Payments))
		for i, p := range s.state.Payments {
			st.Payments[i] = p.Clone()
		}
	}
	if s.state.Summary != nil {
		st.Summary = s.state.Summary.Clone()
	}
	return st
}

// FetchTransactions loads every transaction ordered by due date, newest first.
func (s *Store) FetchTransactions(ctx context.Context) error {
	s.begin()

	txs, err := s.transactions.List(ctx, transaction.ListFilter{})
	if err != nil {
		log.Printf("Error fetching transactions: %v", err)
		s.fail(err)
		return err
	}

	s.mu.Lock()
	s.state.Transactions = txs
	s.state.Loading = false
	s.mu.Unlock()
	return nil
}

// FetchPayments loads payments for transactionID, or all payments when it is
// empty, ordered by payment date, newest first. The filter is reused by the
// refetch that follows each payment write.
func (s *Store) FetchPayments(ctx context.Context, transactionID string) error {
	s.begin()

	s.mu.Lock()
	s.paymentFilter = transactionID
	s.mu.Unlock()

	records, err := s.payments.List(ctx, transactionID)
	if err != nil {
		log.Printf("Error fetching payments: %v", err)
		s.fail(err)
		return err
	}

	s.mu.Lock()
	s.state.Payments = records
	s.state.Loading = false
	s.mu.Unlock()
	return nil
}

// FetchSummary loads the materialized summary. A missing summary document
// clears the summary without recording an error.
func (s *Store) FetchSummary(ctx context.Context) error {
	s.begin()

	sum, err := s.summaries.Current(ctx)
	if err != nil && !errors.Is(err, summary.ErrSummaryNotFound) {
		log.Printf("Error fetching financial summary: %v", err)
		s.fail(err)
		return err
	}

	s.mu.Lock()
	s.state.Summary = sum
	s.state.Loading = false
	s.mu.Unlock()
	return nil
}

// AddTransaction creates a transaction, refetches the list and returns the new id.
func (s *Store) AddTransaction(ctx context.Context, params transaction.CreateParams) (string, error) {
	s.begin()
	defer s.done()

	id, err := s.transactions.Create(ctx, params)
	if err != nil {
		log.Printf("Error adding transaction: %v", err)
		s.fail(err)
		return "", err
	}

	// A refetch failure is already in State.Error; the write succeeded.
	_ = s.FetchTransactions(ctx)
	return id, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, id string, params transaction.UpdateParams) error {
	s.begin()
	defer s.done()

	if err := s.transactions.Update(ctx, id, params); err != nil {
		log.Printf("Error updating transaction %s: %v", id, err)
		s.fail(err)
		return err
	}

	// A refetch failure is already in State.Error; the write succeeded.
	_ = s.FetchTransactions(ctx)
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.begin()
	defer s.done()

	if err := s.transactions.Delete(ctx, id); err != nil {
		log.Printf("Error deleting transaction %s: %v", id, err)
		s.fail(err)
		return err
	}

	// A refetch failure is already in State.Error; the write succeeded.
	_ = s.FetchTransactions(ctx)
	return nil
}

// AddPayment records a payment, refetches payments and returns the new id.
func (s *Store) AddPayment(ctx context.Context, params payment.CreateParams) (string, error) {
	s.begin()
	defer s.done()

	id, err := s.payments.Create(ctx, params)
	if err != nil {
		log.Printf("Error adding payment: %v", err)
		s.fail(err)
		return "", err
	}

	// A refetch failure is already in State.Error; the write succeeded.
	_ = s.FetchPayments(ctx, s.currentPaymentFilter())
	return id, nil
}

func (s *Store) UpdatePayment(ctx context.Context, id string, params payment.UpdateParams) error {
	s.begin()
	defer s.done()

	if err := s.payments.Update(ctx, id, params); err != nil {
		log.Printf("Error updating payment %s: %v", id, err)
		s.fail(err)
		return err
	}

	// A refetch failure is already in State.Error; the write succeeded.
	_ = s.FetchPayments(ctx, s.currentPaymentFilter())
	return nil
}

func (s *Store) DeletePayment(ctx context.Context, id string) error {
	s.begin()
	defer s.done()

	if err := s.payments.Delete(ctx, id); err != nil {
		log.Printf("Error deleting payment %s: %v", id, err)
		s.fail(err)
		return err
	}

	// A refetch failure is already in State.Error; the write succeeded.
	_ = s.FetchPayments(ctx, s.currentPaymentFilter())
	return nil
}

func (s *Store) begin() {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Error = ""
	s.mu.Unlock()
}

func (s *Store) done() {
	s.mu.Lock()
	s.state.Loading = false
	s.mu.Unlock()
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	s.state.Error = err.Error()
	s.state.Loading = false
	s.mu.Unlock()
}

func (s *Store) currentPaymentFilter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paymentFilter
}
