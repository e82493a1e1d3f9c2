package job

import "errors"

// ErrQueueFull is returned by Submit when the in-memory queue has no room.
// The job is already persisted; the runner queues it once it has been
// pending for RunnerConfig.PendingJobAge, or on the next start.
var ErrQueueFull = errors.New("job queue is full")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. The runner fails the job on
// the first permanent error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
