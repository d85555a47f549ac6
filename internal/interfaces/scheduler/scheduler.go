package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"
)

// ScheduleTime is a wall-clock time of day in the scheduler's location.
type ScheduleTime struct {
	Hour   int
	Minute int
}

func (st ScheduleTime) String() string {
	return fmt.Sprintf("%02d:%02d", st.Hour, st.Minute)
}

// on returns st on the calendar day of day.
func (st ScheduleTime) on(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, st.Hour, st.Minute, 0, 0, day.Location())
}

// ParseScheduleTime accepts "H:MM" or "HH:MM" on a 24 hour clock.
func ParseScheduleTime(s string) (ScheduleTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return ScheduleTime{}, fmt.Errorf("invalid time %q (expected HH:MM): %w", s, err)
	}
	return ScheduleTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// JobProvider returns the jobs for one scheduled run.
type JobProvider func(context.Context) ([]Job, error)

type Config struct {
	ScheduleTimes []string
	WorkerCount   int
	JobDelay      time.Duration
	QueueSize     int
	RunOnStartup  bool
	JobProvider   JobProvider
}

// Scheduler submits the provider's jobs at each configured time of day and
// accepts ad-hoc jobs through Submit.
type Scheduler struct {
	pool         *WorkerPool
	slots        []ScheduleTime
	runOnStartup bool
	provider     JobProvider
	now          func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	lastSlot time.Time
}

func NewScheduler(cfg Config) (*Scheduler, error) {
	if len(cfg.ScheduleTimes) == 0 {
		return nil, errors.New("at least one schedule time is required")
	}

	slots := make([]ScheduleTime, 0, len(cfg.ScheduleTimes))
	for _, raw := range cfg.ScheduleTimes {
		st, err := ParseScheduleTime(raw)
		if err != nil {
			return nil, err
		}
		slots = append(slots, st)
	}
	slices.SortFunc(slots, func(a, b ScheduleTime) int {
		return (a.Hour*60 + a.Minute) - (b.Hour*60 + b.Minute)
	})
	slots = slices.Compact(slots)

	workers := max(cfg.WorkerCount, 1)
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = 16
	}

	ctx, cancel := context.WithCancel(context.Background())
	log.Printf("Scheduler: slots %v, %d workers, %v between jobs", slots, workers, cfg.JobDelay)

	return &Scheduler{
		pool:         NewWorkerPool(workers, cfg.JobDelay, queue),
		slots:        slots,
		runOnStartup: cfg.RunOnStartup,
		provider:     cfg.JobProvider,
		now:          time.Now,
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

func (s *Scheduler) Start() {
	s.pool.Start()

	if s.runOnStartup {
		s.TriggerNow()
	}

	s.wg.Add(1)
	go s.loop()
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	for {
		next := s.NextRun(s.now())
		log.Printf("Scheduler: next run at %s", next.Format(time.DateTime))

		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if s.claim(next) {
				s.runJobs()
			}
		}
	}
}

// claim marks slot as taken and reports whether it had not run yet.
func (s *Scheduler) claim(slot time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slot.After(s.lastSlot) {
		return false
	}
	s.lastSlot = slot
	return true
}

// NextRun returns the first slot strictly after now, rolling over to the
// next day after the last slot.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	for _, st := range s.slots {
		if t := st.on(now); t.After(now) {
			return t
		}
	}
	return s.slots[0].on(now.AddDate(0, 0, 1))
}

// Slots returns the configured times of day in ascending order.
func (s *Scheduler) Slots() []ScheduleTime {
	return slices.Clone(s.slots)
}

func (s *Scheduler) runJobs() {
	if s.provider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	jobs, err := s.provider(ctx)
	if err != nil {
		log.Printf("Scheduler: job provider failed: %v", err)
		return
	}
	if len(jobs) == 0 {
		log.Println("Scheduler: nothing to run")
		return
	}
	s.pool.SubmitBatch(jobs)
}

// TriggerNow runs the provider immediately, outside the schedule.
func (s *Scheduler) TriggerNow() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runJobs()
	}()
}

// Submit queues a single job outside the schedule.
func (s *Scheduler) Submit(job Job) error {
	return s.pool.Submit(job)
}

// Shutdown stops the schedule loop, then drains the worker pool. Each phase
// gets up to timeout.
func (s *Scheduler) Shutdown(timeout time.Duration) {
	s.cancel()

	stopped := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(timeout):
		log.Println("Scheduler: loop did not stop in time")
	}

	s.pool.ShutdownWithTimeout(timeout)
	log.Println("Scheduler: stopped")
}
