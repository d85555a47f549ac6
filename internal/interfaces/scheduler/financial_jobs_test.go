package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"finmgmt/internal/domain/summary"
	"finmgmt/internal/domain/transaction"
)

type MockSweeper struct {
	MarkOverdueFunc func(ctx context.Context) ([]*transaction.Transaction, error)
	order           *[]string
}

func (m *MockSweeper) MarkOverdue(ctx context.Context) ([]*transaction.Transaction, error) {
	if m.order != nil {
		*m.order = append(*m.order, "sweep")
	}
	return m.MarkOverdueFunc(ctx)
}

type MockRebuilder struct {
	RebuildFunc func(ctx context.Context) (*summary.Summary, error)
	order       *[]string
}

func (m *MockRebuilder) Rebuild(ctx context.Context) (*summary.Summary, error) {
	if m.order != nil {
		*m.order = append(*m.order, "summary")
	}
	return m.RebuildFunc(ctx)
}

type MockNotifier struct {
	NotifyFunc func(ctx context.Context, title, body string, data map[string]string) error
	calls      int
	lastBody   string
	lastData   map[string]string
}

func (m *MockNotifier) Notify(ctx context.Context, title, body string, data map[string]string) error {
	m.calls++
	m.lastBody = body
	m.lastData = data
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, title, body, data)
	}
	return nil
}

func rebuildOK(ctx context.Context) (*summary.Summary, error) {
	return &summary.Summary{TotalReceivables: 10}, nil
}

func TestOverdueSweepJob_AlertsWhenTransactionsSwept(t *testing.T) {
	rate := 2.0
	sweeper := &MockSweeper{MarkOverdueFunc: func(ctx context.Context) ([]*transaction.Transaction, error) {
		return []*transaction.Transaction{
			{ID: "tx-1", Amount: 100},
			{ID: "tx-2", Amount: 10, ExchangeRate: &rate},
		}, nil
	}}
	notifier := &MockNotifier{}

	job := NewOverdueSweepJob(sweeper, notifier, nil, "USD")
	if err := job.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(job.Swept) != 2 {
		t.Errorf("Swept = %d, want 2", len(job.Swept))
	}
	if notifier.calls != 1 {
		t.Fatalf("Notify called %d times, want 1", notifier.calls)
	}
	if !strings.Contains(notifier.lastBody, "2 transaction(s)") || !strings.Contains(notifier.lastBody, "$120.00") {
		t.Errorf("unexpected alert body %q", notifier.lastBody)
	}
	if notifier.lastData["count"] != "2" {
		t.Errorf("data[count] = %q, want 2", notifier.lastData["count"])
	}
}

func TestOverdueSweepJob_NoAlertWhenNothingSwept(t *testing.T) {
	sweeper := &MockSweeper{MarkOverdueFunc: func(ctx context.Context) ([]*transaction.Transaction, error) {
		return nil, nil
	}}
	notifier := &MockNotifier{}

	if err := NewOverdueSweepJob(sweeper, notifier, nil, "USD").Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if notifier.calls != 0 {
		t.Errorf("Notify called %d times, want 0", notifier.calls)
	}
}

func TestOverdueSweepJob_NotifyFailureIsNotAJobFailure(t *testing.T) {
	sweeper := &MockSweeper{MarkOverdueFunc: func(ctx context.Context) ([]*transaction.Transaction, error) {
		return []*transaction.Transaction{{ID: "tx-1", Amount: 5}}, nil
	}}
	notifier := &MockNotifier{NotifyFunc: func(ctx context.Context, title, body string, data map[string]string) error {
		return errors.New("fcm unavailable")
	}}

	if err := NewOverdueSweepJob(sweeper, notifier, nil, "USD").Execute(context.Background()); err != nil {
		t.Errorf("Execute() error = %v, want nil", err)
	}
}

func TestOverdueSweepJob_SweepError(t *testing.T) {
	sweeper := &MockSweeper{MarkOverdueFunc: func(ctx context.Context) ([]*transaction.Transaction, error) {
		return nil, errors.New("firestore down")
	}}

	if err := NewOverdueSweepJob(sweeper, nil, nil, "USD").Execute(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestSummaryJob(t *testing.T) {
	job := NewSummaryJob(&MockRebuilder{RebuildFunc: rebuildOK}, "manual")
	if err := job.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if job.Description() != "Summary rebuild (manual)" {
		t.Errorf("Description() = %q", job.Description())
	}

	failing := NewSummaryJob(&MockRebuilder{RebuildFunc: func(ctx context.Context) (*summary.Summary, error) {
		return nil, errors.New("boom")
	}}, "manual")
	if err := failing.Execute(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestDailyCloseJob_SweepsBeforeRebuilding(t *testing.T) {
	tests := []struct {
		name     string
		sweepErr error
		wantErr  bool
	}{
		{"sweep succeeds", nil, false},
		{"sweep fails but summary still rebuilt", errors.New("sweep failed"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var order []string
			sweeper := &MockSweeper{order: &order, MarkOverdueFunc: func(ctx context.Context) ([]*transaction.Transaction, error) {
				return nil, tt.sweepErr
			}}
			rebuilder := &MockRebuilder{order: &order, RebuildFunc: rebuildOK}

			job := NewDailyCloseJob(
				NewOverdueSweepJob(sweeper, nil, nil, "USD"),
				NewSummaryJob(rebuilder, "schedule"),
			)
			err := job.Execute(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if strings.Join(order, ",") != "sweep,summary" {
				t.Errorf("order = %v, want [sweep summary]", order)
			}
		})
	}
}
