package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// RunnerConfig holds configuration for the job runner
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory queue
	QueueSize int

	// MaxAttempts caps how many times a job is executed before it fails
	MaxAttempts int

	// RetryBaseDelay is the first backoff interval; later ones double
	RetryBaseDelay time.Duration

	// StuckJobAge defines how long a job can stay in processing before it
	// is reset to pending and requeued
	StuckJobAge time.Duration

	// StuckJobCheckInterval defines how often to look for stuck jobs and
	// unqueued pending jobs. If zero, defaults to 5 minutes
	StuckJobCheckInterval time.Duration

	// PendingJobAge defines how long a pending job that is not in the queue
	// waits before the monitor queues it again
	PendingJobAge time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:           2,
		QueueSize:             100,
		MaxAttempts:           3,
		RetryBaseDelay:        500 * time.Millisecond,
		StuckJobAge:           30 * time.Minute,
		StuckJobCheckInterval: 5 * time.Minute,
		PendingJobAge:         time.Minute,
	}
}

// Runner executes jobs on a pool of workers. Jobs are persisted before they
// are queued, so a crash loses nothing: Recover picks them up again on the
// next start.
type Runner struct {
	store    Store
	registry *Registry
	jobs     chan Job
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	config   RunnerConfig
	logger   *slog.Logger
	onFail   func(job Job, err error)

	// queued holds the IDs of jobs sitting in the channel or being
	// processed, so the pending sweep never queues a job twice.
	mu     sync.Mutex
	queued map[uuid.UUID]struct{}
}

// NewRunner creates a Runner. The registry is used to rebuild jobs loaded
// from the store.
func NewRunner(store Store, registry *Registry, config RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultRunnerConfig()
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", config.WorkerCount),
			slog.Int("default_count", defaults.WorkerCount))
		config.WorkerCount = defaults.WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = defaults.RetryBaseDelay
	}
	if config.StuckJobAge <= 0 {
		config.StuckJobAge = defaults.StuckJobAge
	}
	if config.StuckJobCheckInterval <= 0 {
		config.StuckJobCheckInterval = defaults.StuckJobCheckInterval
	}
	if config.PendingJobAge <= 0 {
		config.PendingJobAge = defaults.PendingJobAge
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger = logger.With(slog.String("component", "job_runner"))

	return &Runner{
		store:    store,
		registry: registry,
		jobs:     make(chan Job, config.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		config:   config,
		logger:   logger,
		queued:   make(map[uuid.UUID]struct{}),
		onFail: func(job Job, err error) {
			logger.Error("job failed permanently",
				slog.String("job_id", job.ID().String()),
				slog.String("job_type", job.Type()),
				slog.String("error", err.Error()))
		},
	}
}

// SetFailureHandler replaces the callback invoked when a job fails for good.
func (r *Runner) SetFailureHandler(handler func(job Job, err error)) {
	r.onFail = handler
}

// Submit persists the job and then queues it. When the queue is full the
// job stays pending in the store and ErrQueueFull is returned; the monitor
// queues it once it has been pending for PendingJobAge.
func (r *Runner) Submit(ctx context.Context, job Job) error {
	if err := r.store.Save(ctx, job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	if !r.enqueue(job) {
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(r.jobs))
	}
	r.logger.Debug("job enqueued",
		slog.String("job_id", job.ID().String()),
		slog.String("job_type", job.Type()),
		slog.Int("queue_len", len(r.jobs)))
	return nil
}

// enqueue puts the job on the channel without blocking. It reports false
// when the queue is full or the job is already queued.
func (r *Runner) enqueue(job Job) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.queued[job.ID()]; ok {
		return false
	}
	select {
	case r.jobs <- job:
		r.queued[job.ID()] = struct{}{}
		return true
	default:
		return false
	}
}

func (r *Runner) isQueued(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.queued[id]
	return ok
}

func (r *Runner) done(id uuid.UUID) {
	r.mu.Lock()
	delete(r.queued, id)
	r.mu.Unlock()
}

// Start recovers unfinished jobs and launches the workers and the stuck
// job monitor.
func (r *Runner) Start() error {
	if err := r.Recover(r.ctx); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckJobMonitor()

	r.logger.Info("job runner started", slog.Int("worker_count", r.config.WorkerCount))
	return nil
}

// Stop signals workers to finish and waits for them. Jobs still queued
// remain pending in the store.
func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
	r.logger.Info("job runner stopped")
}

// Recover requeues pending jobs and resets processing jobs, which were
// interrupted by a shutdown or crash, back to pending.
func (r *Runner) Recover(ctx context.Context) error {
	pending, err := r.store.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending jobs: %w", err)
	}

	processing, err := r.store.ListProcessing(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing jobs: %w", err)
	}

	r.logger.Info("recovering unfinished jobs",
		slog.Int("pending_count", len(pending)),
		slog.Int("processing_count", len(processing)))

	for _, rec := range pending {
		r.requeue(rec)
	}

	for _, rec := range processing {
		if err := r.store.UpdateStatus(ctx, rec.ID, StatusPending, "reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing job status",
				slog.String("job_id", rec.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		r.requeue(rec)
	}

	return nil
}

func (r *Runner) requeue(rec *Record) {
	log := r.logger.With(
		slog.String("job_id", rec.ID.String()),
		slog.String("job_type", rec.Type))

	job, err := r.registry.Build(rec)
	if err != nil {
		log.Error("failed to rebuild job", slog.String("error", err.Error()))
		if updateErr := r.store.UpdateStatus(r.ctx, rec.ID, StatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to mark job as failed", slog.String("error", updateErr.Error()))
		}
		return
	}

	if !r.enqueue(job) {
		log.Warn("failed to requeue job, queue is full or job already queued")
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", slog.Int("worker_id", id))

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", slog.Int("worker_id", id))
			return
		case job := <-r.jobs:
			r.process(job, id)
			r.done(job.ID())
		}
	}
}

// process runs a job under exponential backoff. Every attempt is recorded;
// permanent errors stop retrying immediately.
func (r *Runner) process(job Job, workerID int) {
	ctx := r.ctx
	log := r.logger.With(
		slog.String("job_id", job.ID().String()),
		slog.String("job_type", job.Type()),
		slog.Int("worker_id", workerID))

	if err := r.store.UpdateStatus(ctx, job.ID(), StatusProcessing, ""); err != nil {
		log.Error("failed to update job status to processing", slog.String("error", err.Error()))
		return
	}

	log.Info("processing job")

	backoff := retry.WithMaxRetries(uint64(r.config.MaxAttempts-1), retry.NewExponential(r.config.RetryBaseDelay))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		execErr := job.Execute(ctx)

		msg := ""
		if execErr != nil {
			msg = execErr.Error()
		}
		if recErr := r.store.RecordAttempt(ctx, job.ID(), msg); recErr != nil {
			log.Warn("failed to record job attempt", slog.String("error", recErr.Error()))
		}

		if execErr == nil {
			return nil
		}
		if IsPermanent(execErr) {
			return execErr
		}
		log.Warn("job attempt failed",
			slog.Int("attempt", attempt),
			slog.String("error", execErr.Error()))
		return retry.RetryableError(execErr)
	})

	if err != nil {
		if errors.Is(err, context.Canceled) && r.ctx.Err() != nil {
			// Shutdown interrupted the job; leave it for recovery.
			log.Info("job interrupted by shutdown")
			return
		}
		if updateErr := r.store.UpdateStatus(context.Background(), job.ID(), StatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to update job status to failed", slog.String("error", updateErr.Error()))
		}
		r.onFail(job, err)
		return
	}

	if res, ok := job.(Resulter); ok {
		out, resErr := res.Result()
		if resErr != nil {
			log.Warn("failed to encode job result", slog.String("error", resErr.Error()))
		} else if err := r.store.SaveResult(ctx, job.ID(), out); err != nil {
			log.Warn("failed to save job result", slog.String("error", err.Error()))
		}
	}

	if err := r.store.UpdateStatus(ctx, job.ID(), StatusCompleted, ""); err != nil {
		log.Error("failed to update job status to completed", slog.String("error", err.Error()))
		return
	}
	log.Info("job completed", slog.Int("attempts", attempt))
}

func (r *Runner) stuckJobMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckJobCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.resetStuckJobs(r.ctx)
			r.requeuePending(r.ctx)
		}
	}
}

func (r *Runner) resetStuckJobs(ctx context.Context) {
	stuck, err := r.store.ListProcessing(ctx, r.config.StuckJobAge)
	if err != nil {
		r.logger.Error("failed to check for stuck jobs", slog.String("error", err.Error()))
		return
	}
	if len(stuck) == 0 {
		return
	}

	r.logger.Info("found stuck jobs", slog.Int("count", len(stuck)))
	for _, rec := range stuck {
		if err := r.store.UpdateStatus(ctx, rec.ID, StatusPending,
			"reset after being stuck in processing state"); err != nil {
			r.logger.Error("failed to reset stuck job status",
				slog.String("job_id", rec.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		r.requeue(rec)
	}
}

// requeuePending queues pending jobs that missed the queue, either because
// Submit found it full or because recovery could not fit them.
func (r *Runner) requeuePending(ctx context.Context) {
	pending, err := r.store.ListPending(ctx)
	if err != nil {
		r.logger.Error("failed to check for pending jobs", slog.String("error", err.Error()))
		return
	}

	cutoff := time.Now().Add(-r.config.PendingJobAge)
	requeued := 0
	for _, rec := range pending {
		if rec.UpdatedAt.After(cutoff) || r.isQueued(rec.ID) {
			continue
		}
		r.requeue(rec)
		requeued++
	}
	if requeued > 0 {
		r.logger.Info("requeued pending jobs", slog.Int("count", requeued))
	}
}

// Status returns the stored record for a job.
func (r *Runner) Status(ctx context.Context, id uuid.UUID) (*Record, error) {
	return r.store.Get(ctx, id)
}
