package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"finmgmt/internal/domain/summary"
	"finmgmt/internal/domain/transaction"
	"finmgmt/internal/shared/messages"
	"finmgmt/internal/shared/money"
)

// OverdueSweeper is satisfied by transaction.Service.
type OverdueSweeper interface {
	MarkOverdue(ctx context.Context) ([]*transaction.Transaction, error)
}

// SummaryRebuilder is satisfied by summary.Service.
type SummaryRebuilder interface {
	Rebuild(ctx context.Context) (*summary.Summary, error)
}

// Notifier pushes an alert to finance managers.
type Notifier interface {
	Notify(ctx context.Context, title, body string, data map[string]string) error
}

// SummaryJob rematerializes the financial summary document.
type SummaryJob struct {
	rebuilder SummaryRebuilder
	reason    string
}

func NewSummaryJob(rebuilder SummaryRebuilder, reason string) *SummaryJob {
	return &SummaryJob{rebuilder: rebuilder, reason: reason}
}

func (j *SummaryJob) Execute(ctx context.Context) error {
	sum, err := j.rebuilder.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("summary rebuild failed: %w", err)
	}
	log.Printf("Summary rebuilt (%s): receivables=%.2f payables=%.2f", j.reason, sum.TotalReceivables, sum.TotalPayables)
	return nil
}

func (j *SummaryJob) Name() string { return "summary" }

func (j *SummaryJob) Description() string {
	return fmt.Sprintf("Summary rebuild (%s)", j.reason)
}

// OverdueSweepJob marks past-due pending transactions overdue and alerts
// finance managers when anything changed. notifier may be nil.
type OverdueSweepJob struct {
	sweeper  OverdueSweeper
	notifier Notifier
	messages *messages.Messages
	currency string

	// Swept holds the transactions changed by the last Execute.
	Swept []*transaction.Transaction
}

func NewOverdueSweepJob(sweeper OverdueSweeper, notifier Notifier, msgs *messages.Messages, currency string) *OverdueSweepJob {
	if msgs == nil {
		msgs = messages.Default()
	}
	return &OverdueSweepJob{
		sweeper:  sweeper,
		notifier: notifier,
		messages: msgs,
		currency: currency,
	}
}

func (j *OverdueSweepJob) Execute(ctx context.Context) error {
	swept, err := j.sweeper.MarkOverdue(ctx)
	if err != nil {
		return fmt.Errorf("overdue sweep failed: %w", err)
	}
	j.Swept = swept

	log.Printf("Overdue sweep marked %d transaction(s) overdue", len(swept))
	if len(swept) == 0 || j.notifier == nil {
		return nil
	}

	var outstanding float64
	for _, tx := range swept {
		outstanding += tx.Amount * tx.Rate()
	}

	msg := j.messages.OverdueAlert.Format(len(swept), money.Format(outstanding, j.currency))
	data := map[string]string{
		"type":  "overdue_sweep",
		"count": strconv.Itoa(len(swept)),
	}
	if err := j.notifier.Notify(ctx, msg.Title, msg.Body, data); err != nil {
		log.Printf("Error sending overdue alert: %v", err)
	}
	return nil
}

func (j *OverdueSweepJob) Name() string { return "overdue_sweep" }

func (j *OverdueSweepJob) Description() string { return "Overdue sweep" }

// DailyCloseJob runs the overdue sweep and then rebuilds the summary, so the
// rebuilt summary sees the new statuses.
type DailyCloseJob struct {
	sweep   *OverdueSweepJob
	summary *SummaryJob
}

func NewDailyCloseJob(sweep *OverdueSweepJob, summary *SummaryJob) *DailyCloseJob {
	return &DailyCloseJob{sweep: sweep, summary: summary}
}

// Execute rebuilds the summary even when the sweep fails.
func (j *DailyCloseJob) Execute(ctx context.Context) error {
	sweepErr := j.sweep.Execute(ctx)
	if sweepErr != nil {
		log.Printf("Daily close: %v", sweepErr)
	}

	if err := j.summary.Execute(ctx); err != nil {
		return err
	}
	return sweepErr
}

func (j *DailyCloseJob) Name() string { return "daily_close" }

func (j *DailyCloseJob) Description() string {
	return "Daily close (overdue sweep + summary rebuild)"
}
