package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const defaultJobTimeout = 2 * time.Minute

var (
	jobTracer = otel.Tracer("finmgmt/scheduler")
	jobMeter  = otel.Meter("finmgmt/scheduler")
)

var (
	// ErrQueueFull is returned by Submit when the job would block.
	ErrQueueFull = errors.New("job queue full")
	// ErrPoolClosed is returned by Submit after shutdown has begun.
	ErrPoolClosed = errors.New("worker pool is shut down")
)

type poolMetrics struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	dropped  metric.Int64Counter
}

func newPoolMetrics(queue chan Job) poolMetrics {
	var m poolMetrics
	var err error
	if m.duration, err = jobMeter.Float64Histogram("scheduler.job.duration",
		metric.WithDescription("Job execution duration in seconds"), metric.WithUnit("s")); err != nil {
		log.Printf("Warning: scheduler.job.duration: %v", err)
	}
	if m.total, err = jobMeter.Int64Counter("scheduler.job.total",
		metric.WithDescription("Jobs executed by outcome")); err != nil {
		log.Printf("Warning: scheduler.job.total: %v", err)
	}
	if m.dropped, err = jobMeter.Int64Counter("scheduler.job.queue_dropped",
		metric.WithDescription("Jobs rejected because the queue was full")); err != nil {
		log.Printf("Warning: scheduler.job.queue_dropped: %v", err)
	}
	if _, err = jobMeter.Int64ObservableGauge("scheduler.queue.depth",
		metric.WithDescription("Jobs waiting for a worker"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(len(queue)))
			return nil
		})); err != nil {
		log.Printf("Warning: scheduler.queue.depth: %v", err)
	}
	return m
}

func (m poolMetrics) finished(ctx context.Context, name string, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	job := attribute.String("job", name)
	if m.total != nil {
		m.total.Add(ctx, 1, metric.WithAttributes(job, attribute.String("status", outcome)))
	}
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(job))
	}
}

// WorkerPool runs submitted jobs on a fixed set of goroutines. Jobs are
// taken in submission order; a failing or panicking job is logged and the
// worker moves on.
type WorkerPool struct {
	workerCount int
	jobDelay    time.Duration
	jobTimeout  time.Duration
	jobs        chan Job
	metrics     poolMetrics

	wg   sync.WaitGroup
	ctx  context.Context
	stop context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool creates a pool of workerCount goroutines that pause jobDelay
// between jobs and buffer up to queueSize pending jobs.
func NewWorkerPool(workerCount int, jobDelay time.Duration, queueSize int) *WorkerPool {
	ctx, stop := context.WithCancel(context.Background())
	jobs := make(chan Job, queueSize)
	return &WorkerPool{
		workerCount: workerCount,
		jobDelay:    jobDelay,
		jobTimeout:  defaultJobTimeout,
		jobs:        jobs,
		metrics:     newPoolMetrics(jobs),
		ctx:         ctx,
		stop:        stop,
	}
}

func (wp *WorkerPool) Start() {
	log.Printf("Starting worker pool with %d workers", wp.workerCount)
	for id := 1; id <= wp.workerCount; id++ {
		wp.wg.Add(1)
		go wp.work(id)
	}
}

func (wp *WorkerPool) work(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		if wp.ctx.Err() != nil {
			log.Printf("Worker %d: cancelled, leaving %s unprocessed", id, job.Description())
			return
		}
		wp.run(id, job)
		if !wp.pause() {
			return
		}
	}
	log.Printf("Worker %d: queue drained", id)
}

// pause waits jobDelay and reports false if the pool was cancelled meanwhile.
func (wp *WorkerPool) pause() bool {
	if wp.jobDelay <= 0 {
		return true
	}
	t := time.NewTimer(wp.jobDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

func (wp *WorkerPool) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(wp.ctx, wp.jobTimeout)
	defer cancel()

	ctx, span := jobTracer.Start(ctx, "job "+job.Name(), trace.WithAttributes(
		attribute.Int("worker.id", workerID),
		attribute.String("job.name", job.Name()),
		attribute.String("job.description", job.Description()),
	))
	defer span.End()

	started := time.Now()
	err := execute(ctx, job)
	wp.metrics.finished(ctx, job.Name(), time.Since(started), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Printf("Worker %d: %s failed after %v: %v", workerID, job.Description(), time.Since(started).Round(time.Millisecond), err)
		return
	}
	log.Printf("Worker %d: %s done in %v", workerID, job.Description(), time.Since(started).Round(time.Millisecond))
}

// execute runs job and turns a panic into an error.
func execute(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Execute(ctx)
}

// Submit queues job without blocking.
func (wp *WorkerPool) Submit(job Job) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return ErrPoolClosed
	}
	select {
	case wp.jobs <- job:
		return nil
	default:
		if wp.metrics.dropped != nil {
			wp.metrics.dropped.Add(context.Background(), 1, metric.WithAttributes(attribute.String("job", job.Name())))
		}
		return fmt.Errorf("%w: dropping %s", ErrQueueFull, job.Description())
	}
}

// SubmitBatch queues each job and returns how many were accepted.
func (wp *WorkerPool) SubmitBatch(jobs []Job) int {
	accepted := 0
	for _, job := range jobs {
		if err := wp.Submit(job); err != nil {
			log.Printf("Worker pool: %v", err)
			continue
		}
		accepted++
	}
	log.Printf("Worker pool: accepted %d/%d jobs", accepted, len(jobs))
	return accepted
}

// Shutdown stops intake and waits for every queued job to finish.
func (wp *WorkerPool) Shutdown() {
	wp.ShutdownWithTimeout(0)
}

// ShutdownWithTimeout stops intake and waits for queued jobs. After timeout
// the pool context is cancelled so running jobs see ctx.Done. A zero timeout
// waits indefinitely.
func (wp *WorkerPool) ShutdownWithTimeout(timeout time.Duration) {
	wp.mu.Lock()
	if !wp.closed {
		wp.closed = true
		close(wp.jobs)
	}
	wp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case <-done:
		log.Println("Worker pool: drained")
	case <-expired:
		log.Printf("Worker pool: still busy after %v, cancelling running jobs", timeout)
	}
	wp.stop()
}
