package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one recurring maintenance task. Interval is the spacing
// between runs; Timeout bounds a single run so a slow blob store or a
// stuck query cannot wedge the job's goroutine until the next tick.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration // zero means no per-run deadline
	Run      func(ctx context.Context) error
}

// Scheduler drives the service's background jobs. It is interval-based
// on purpose: the jobs here are idempotent sweeps over the shifts
// table, so exact calendar times and distributed locking buy nothing.
type Scheduler struct {
	jobs   []Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{ctx: ctx, cancel: cancel}
}

// AddJob registers a job. Register everything before calling Start.
func (s *Scheduler) AddJob(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job)
	slog.Info("Background job registered", "name", job.Name, "interval", job.Interval)
}

// Start launches one goroutine per job. Each job runs once immediately
// so a freshly deployed instance sweeps its backlog without waiting a
// full interval, then on every tick until Stop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(job)
	}
	slog.Info("Background scheduler started", "job_count", len(s.jobs))
}

// Stop cancels in-flight runs and waits for all job goroutines.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("Background scheduler stopped")
}

func (s *Scheduler) loop(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.execute(s.ctx, job)
	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Background job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.execute(s.ctx, job)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job Job) {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		slog.Error("Background job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("Background job completed", "name", job.Name, "duration", time.Since(start))
}

// RunOnce executes every registered job a single time on the caller's
// context. Used by tests and one-shot maintenance tooling.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	jobs := make([]Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	for _, job := range jobs {
		s.execute(ctx, job)
	}
}
