package job

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/events"
)

const fakeType = "fake"

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeJob runs fn on every attempt.
type fakeJob struct {
	base
	calls atomic.Int32
	fn    func(attempt int) error
}

func (j *fakeJob) Execute(context.Context) error {
	n := int(j.calls.Add(1))
	if j.fn == nil {
		return nil
	}
	return j.fn(n)
}

func (j *fakeJob) Result() ([]byte, error) {
	return json.Marshal(map[string]int{"calls": int(j.calls.Load())})
}

func newFakeJob(fn func(int) error) *fakeJob {
	return &fakeJob{
		base: base{id: uuid.New(), userID: uuid.New(), jobType: fakeType, payload: []byte(`{}`)},
		fn:   fn,
	}
}

func testConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:           2,
		QueueSize:             10,
		MaxAttempts:           3,
		RetryBaseDelay:        time.Millisecond,
		StuckJobAge:           time.Hour,
		StuckJobCheckInterval: time.Hour,
	}
}

func startRunner(t *testing.T, st Store, reg *Registry, cfg RunnerConfig) *Runner {
	t.Helper()
	r := NewRunner(st, reg, cfg, discardLogger)
	require.NoError(t, r.Start())
	t.Cleanup(r.Stop)
	return r
}

func waitForStatus(t *testing.T, st *memStore, id uuid.UUID, want Status) {
	t.Helper()
	require.Eventually(t, func() bool { return st.status(id) == want },
		2*time.Second, 5*time.Millisecond, "job %s never reached %s", id, want)
}

func TestRunnerCompletesJob(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	r := startRunner(t, st, NewRegistry(), testConfig())

	job := newFakeJob(nil)
	require.NoError(t, r.Submit(context.Background(), job))
	waitForStatus(t, st, job.ID(), StatusCompleted)

	rec, err := r.Status(context.Background(), job.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Attempts)
	assert.JSONEq(t, `{"calls":1}`, string(rec.Result))
	assert.Equal(t, []Status{StatusProcessing, StatusCompleted}, st.statuses(job.ID()))
}

func TestRunnerRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	r := startRunner(t, st, NewRegistry(), testConfig())

	job := newFakeJob(func(attempt int) error {
		if attempt < 3 {
			return errors.New("temporary")
		}
		return nil
	})
	require.NoError(t, r.Submit(context.Background(), job))
	waitForStatus(t, st, job.ID(), StatusCompleted)

	rec, err := st.Get(context.Background(), job.ID())
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Attempts)
	assert.Empty(t, rec.LastError)
}

func TestRunnerFailsAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	r := startRunner(t, st, NewRegistry(), testConfig())

	var failed atomic.Bool
	r.SetFailureHandler(func(Job, error) { failed.Store(true) })

	job := newFakeJob(func(int) error { return errors.New("still broken") })
	require.NoError(t, r.Submit(context.Background(), job))
	waitForStatus(t, st, job.ID(), StatusFailed)

	rec, err := st.Get(context.Background(), job.ID())
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Attempts)
	assert.Equal(t, "still broken", rec.LastError)
	assert.Eventually(t, failed.Load, time.Second, 5*time.Millisecond)
}

func TestRunnerStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	r := startRunner(t, st, NewRegistry(), testConfig())

	job := newFakeJob(func(int) error { return Permanent(errors.New("bad input")) })
	require.NoError(t, r.Submit(context.Background(), job))
	waitForStatus(t, st, job.ID(), StatusFailed)

	assert.Equal(t, int32(1), job.calls.Load())
}

func TestRunnerRecover(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	reg := NewRegistry()
	var built atomic.Int32
	reg.Register(fakeType, func(rec *Record) (Job, error) {
		built.Add(1)
		return &fakeJob{base: newBase(rec)}, nil
	})

	now := time.Now().UTC()
	pending := &Record{ID: uuid.New(), Type: fakeType, Status: StatusPending, CreatedAt: now, UpdatedAt: now}
	interrupted := &Record{ID: uuid.New(), Type: fakeType, Status: StatusProcessing, CreatedAt: now, UpdatedAt: now}
	orphan := &Record{ID: uuid.New(), Type: "retired", Status: StatusPending, CreatedAt: now, UpdatedAt: now}
	st.put(pending)
	st.put(interrupted)
	st.put(orphan)

	startRunner(t, st, reg, testConfig())

	waitForStatus(t, st, pending.ID, StatusCompleted)
	waitForStatus(t, st, interrupted.ID, StatusCompleted)
	waitForStatus(t, st, orphan.ID, StatusFailed)
	assert.Equal(t, int32(2), built.Load())
	assert.Equal(t, StatusPending, st.statuses(interrupted.ID)[0])
}

func TestRunnerResetsStuckJobs(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	reg := NewRegistry()
	reg.Register(fakeType, func(rec *Record) (Job, error) { return &fakeJob{base: newBase(rec)}, nil })

	r := NewRunner(st, reg, testConfig(), discardLogger)

	old := time.Now().Add(-2 * time.Hour)
	stuck := &Record{ID: uuid.New(), Type: fakeType, Status: StatusProcessing, CreatedAt: old, UpdatedAt: old}
	st.put(stuck)

	r.resetStuckJobs(context.Background())
	assert.Equal(t, StatusPending, st.status(stuck.ID))
	assert.Len(t, r.jobs, 1)
}

func TestRunnerSubmitQueueFull(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	cfg := testConfig()
	cfg.QueueSize = 1
	r := NewRunner(st, NewRegistry(), cfg, discardLogger)

	require.NoError(t, r.Submit(context.Background(), newFakeJob(nil)))

	overflow := newFakeJob(nil)
	err := r.Submit(context.Background(), overflow)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, StatusPending, st.status(overflow.ID()), "overflow job stays persisted")
}

func TestRunnerRunsJobRejectedByFullQueue(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	reg := NewRegistry()
	var rebuiltRuns atomic.Int32
	reg.Register(fakeType, func(rec *Record) (Job, error) {
		return &fakeJob{base: newBase(rec), fn: func(int) error {
			rebuiltRuns.Add(1)
			return nil
		}}, nil
	})

	cfg := testConfig()
	cfg.WorkerCount = 1
	cfg.QueueSize = 1
	cfg.StuckJobCheckInterval = 20 * time.Millisecond
	cfg.PendingJobAge = 10 * time.Millisecond
	r := startRunner(t, st, reg, cfg)

	release := make(chan struct{})
	blocker := newFakeJob(func(int) error {
		<-release
		return nil
	})
	require.NoError(t, r.Submit(context.Background(), blocker))
	waitForStatus(t, st, blocker.ID(), StatusProcessing)

	filler := newFakeJob(nil)
	require.NoError(t, r.Submit(context.Background(), filler))

	overflow := newFakeJob(nil)
	require.ErrorIs(t, r.Submit(context.Background(), overflow), ErrQueueFull)
	close(release)

	waitForStatus(t, st, filler.ID(), StatusCompleted)
	waitForStatus(t, st, overflow.ID(), StatusCompleted)
	assert.Equal(t, int32(1), rebuiltRuns.Load(), "overflow job runs exactly once")
}

func TestRunnerPendingSweepSkipsQueuedJobs(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	reg := NewRegistry()
	reg.Register(fakeType, func(rec *Record) (Job, error) { return &fakeJob{base: newBase(rec)}, nil })

	cfg := testConfig()
	cfg.PendingJobAge = time.Millisecond
	r := NewRunner(st, reg, cfg, discardLogger)

	queued := newFakeJob(nil)
	require.NoError(t, r.Submit(context.Background(), queued))

	old := time.Now().Add(-time.Hour)
	missed := &Record{ID: uuid.New(), Type: fakeType, Status: StatusPending, CreatedAt: old, UpdatedAt: old}
	fresh := &Record{ID: uuid.New(), Type: fakeType, Status: StatusPending, CreatedAt: time.Now(), UpdatedAt: time.Now().Add(time.Hour)}
	st.put(missed)
	st.put(fresh)

	time.Sleep(5 * time.Millisecond)
	r.requeuePending(context.Background())

	require.Len(t, r.jobs, 2)
	assert.Equal(t, queued.ID(), (<-r.jobs).ID())
	assert.Equal(t, missed.ID, (<-r.jobs).ID())
}

func TestRunnerSubmitSaveError(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	st.saveErr = errors.New("db down")
	r := NewRunner(st, NewRegistry(), testConfig(), discardLogger)

	err := r.Submit(context.Background(), newFakeJob(nil))
	assert.ErrorContains(t, err, "db down")
	assert.Empty(t, r.jobs)
}

func TestEventHandlerSubmitsJob(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	reg := NewRegistry()
	reg.Register(fakeType, func(rec *Record) (Job, error) { return &fakeJob{base: newBase(rec)}, nil })
	r := startRunner(t, st, reg, testConfig())

	emitter := events.NewInMemoryEventEmitter(discardLogger)
	emitter.RegisterHandler(NewEventHandler(reg, r, discardLogger))

	event, err := events.NewJobRequestEvent(fakeType, uuid.New(), map[string]string{})
	require.NoError(t, err)
	require.NoError(t, emitter.EmitEvent(context.Background(), event))

	waitForStatus(t, st, event.ID, StatusCompleted)
	rec, err := st.Get(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.UserID, rec.UserID)

	unknown, err := events.NewJobRequestEvent("nope", uuid.New(), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, emitter.EmitEvent(context.Background(), unknown), ErrUnknownType)
}

func TestPermanent(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	assert.Nil(t, Permanent(nil))
	assert.True(t, IsPermanent(Permanent(cause)))
	assert.ErrorIs(t, Permanent(cause), cause)
	assert.False(t, IsPermanent(cause))
}
