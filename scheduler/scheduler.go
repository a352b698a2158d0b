// Package scheduler provides an in-process job scheduler for servicekit
// applications. Jobs are arbitrary functions tracked by a record with
// status transitions pending -> running -> completed/failed/canceled.
// Concurrency is bounded by a weighted semaphore, and recurring jobs can
// be registered with cron expressions.
package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/semaphore"

	"github.com/winterop-com/servicekit-sub001/domain"
)

// Status of a scheduled job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCanceled
}

// Record is the full state of a scheduled job.
type Record struct {
	ID          uuid.UUID  `json:"id"`
	Status      Status     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Task is the unit of work executed by the scheduler.
type Task func(ctx context.Context) (any, error)

// Scheduler runs tasks in goroutines with bounded concurrency.
type Scheduler struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Record
	results map[uuid.UUID]any
	cancels map[uuid.UUID]context.CancelFunc
	done    map[uuid.UUID]chan struct{}

	sem     *semaphore.Weighted
	wg      sync.WaitGroup
	baseCtx context.Context
	stop    context.CancelFunc
	stopped bool

	cron    *cron.Cron
	history *History
	logger  *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithHistory persists terminal job records through the given store.
func WithHistory(h *History) Option {
	return func(s *Scheduler) { s.history = h }
}

// WithLogger sets the scheduler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// New creates a scheduler. maxConcurrency <= 0 means unbounded.
func New(maxConcurrency int64, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		records: make(map[uuid.UUID]*Record),
		results: make(map[uuid.UUID]any),
		cancels: make(map[uuid.UUID]context.CancelFunc),
		done:    make(map[uuid.UUID]chan struct{}),
		baseCtx: ctx,
		stop:    cancel,
		cron:    cron.New(),
		logger:  slog.Default(),
	}
	if maxConcurrency > 0 {
		s.sem = semaphore.NewWeighted(maxConcurrency)
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron.Start()
	return s
}

// Submit queues a task and returns its job ID immediately.
func (s *Scheduler) Submit(task Task) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return uuid.Nil, domain.ErrConflict("scheduler is stopped")
	}

	id := uuid.New()
	now := time.Now().UTC()
	record := &Record{ID: id, Status: StatusPending, SubmittedAt: now}

	jobCtx, cancel := context.WithCancel(s.baseCtx)
	s.records[id] = record
	s.cancels[id] = cancel
	s.done[id] = make(chan struct{})

	s.wg.Add(1)
	go s.run(jobCtx, id, task)

	return id, nil
}

func (s *Scheduler) run(ctx context.Context, id uuid.UUID, task Task) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		close(s.done[id])
		s.mu.Unlock()
	}()

	if s.sem != nil {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			s.finish(id, StatusCanceled, nil, err)
			return
		}
		defer s.sem.Release(1)
	}

	if ctx.Err() != nil {
		s.finish(id, StatusCanceled, nil, ctx.Err())
		return
	}

	now := time.Now().UTC()
	s.mu.Lock()
	s.records[id].Status = StatusRunning
	s.records[id].StartedAt = &now
	s.mu.Unlock()

	result, err := task(ctx)
	switch {
	case ctx.Err() != nil:
		s.finish(id, StatusCanceled, nil, ctx.Err())
	case err != nil:
		s.finish(id, StatusFailed, nil, err)
	default:
		s.finish(id, StatusCompleted, result, nil)
	}
}

func (s *Scheduler) finish(id uuid.UUID, status Status, result any, err error) {
	s.mu.Lock()
	record := s.records[id]
	now := time.Now().UTC()
	record.Status = status
	record.FinishedAt = &now
	if err != nil {
		record.Error = err.Error()
	}
	if result != nil {
		s.results[id] = result
	}
	saved := *record
	history := s.history
	s.mu.Unlock()

	s.logger.Debug("scheduler.job_finished", "job_id", id, "status", status)

	if history != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := history.Save(ctx, saved); err != nil {
			s.logger.Warn("scheduler.history_save_failed", "job_id", id, "error", err)
		}
	}
}

// Record returns a copy of the job record.
func (s *Scheduler) Record(id uuid.UUID) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return Record{}, domain.ErrNotFound("job %s not found", id)
	}
	return *record, nil
}

// Status returns the current status of a job.
func (s *Scheduler) Status(id uuid.UUID) (Status, error) {
	record, err := s.Record(id)
	if err != nil {
		return "", err
	}
	return record.Status, nil
}

// Records returns all job records ordered by submission time.
func (s *Scheduler) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, *record)
	}
	sortRecords(out)
	return out
}

// Result returns the value produced by a completed job.
func (s *Scheduler) Result(id uuid.UUID) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound("job %s not found", id)
	}
	if record.Status != StatusCompleted {
		return nil, domain.ErrValidation("job %s is %s, not completed", id, record.Status)
	}
	return s.results[id], nil
}

// Cancel requests cancellation of a job. Returns false when the job is
// unknown or already finished.
func (s *Scheduler) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	record, ok := s.records[id]
	cancel := s.cancels[id]
	s.mu.Unlock()
	if !ok || record.Status.Terminal() {
		return false
	}
	cancel()
	return true
}

// Delete removes a job record. Running jobs are canceled first.
func (s *Scheduler) Delete(id uuid.UUID) error {
	s.mu.Lock()
	record, ok := s.records[id]
	s.mu.Unlock()
	if !ok {
		return domain.ErrNotFound("job %s not found", id)
	}
	if !record.Status.Terminal() {
		s.Cancel(id)
		_ = s.Wait(context.Background(), id)
	}
	s.mu.Lock()
	delete(s.records, id)
	delete(s.results, id)
	delete(s.cancels, id)
	delete(s.done, id)
	s.mu.Unlock()
	return nil
}

// Wait blocks until the job reaches a terminal state or ctx is done.
func (s *Scheduler) Wait(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	done, ok := s.done[id]
	s.mu.Unlock()
	if !ok {
		return domain.ErrNotFound("job %s not found", id)
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Schedule registers a recurring task with a cron expression. Each firing
// submits a regular job.
func (s *Scheduler) Schedule(spec string, task Task) (cron.EntryID, error) {
	entry, err := s.cron.AddFunc(spec, func() {
		if _, err := s.Submit(task); err != nil {
			s.logger.Warn("scheduler.cron_submit_failed", "error", err)
		}
	})
	if err != nil {
		return 0, domain.ErrValidation("invalid cron spec %q: %v", spec, err)
	}
	return entry, nil
}

// Unschedule removes a recurring task.
func (s *Scheduler) Unschedule(id cron.EntryID) {
	s.cron.Remove(id)
}

// Stop cancels all running jobs, stops the cron runner, and waits for
// everything to wind down or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	cronCtx := s.cron.Stop()
	s.stop()

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-cronCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func sortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].SubmittedAt.Before(records[j].SubmittedAt)
	})
}
