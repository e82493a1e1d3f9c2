package job

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/store"
)

// memStore is an in-memory Store for runner tests.
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Record
	history map[uuid.UUID][]Status
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{
		records: make(map[uuid.UUID]*Record),
		history: make(map[uuid.UUID][]Status),
	}
}

func (s *memStore) put(rec *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
}

func (s *memStore) Save(_ context.Context, job Job) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	now := time.Now().UTC()
	s.put(&Record{
		ID:        job.ID(),
		UserID:    job.UserID(),
		Type:      job.Type(),
		Payload:   job.Payload(),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return nil
}

func (s *memStore) Get(_ context.Context, id uuid.UUID) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *memStore) UpdateStatus(_ context.Context, id uuid.UUID, status Status, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return store.ErrNotFound
	}
	rec.Status = status
	rec.LastError = errMsg
	rec.UpdatedAt = time.Now().UTC()
	s.history[id] = append(s.history[id], status)
	return nil
}

func (s *memStore) RecordAttempt(_ context.Context, id uuid.UUID, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return store.ErrNotFound
	}
	rec.Attempts++
	rec.LastError = errMsg
	return nil
}

func (s *memStore) SaveResult(_ context.Context, id uuid.UUID, result []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return store.ErrNotFound
	}
	rec.Result = result
	return nil
}

func (s *memStore) list(status Status, olderThan time.Duration) []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var out []*Record
	for _, rec := range s.records {
		if rec.Status != status {
			continue
		}
		if olderThan > 0 && rec.UpdatedAt.After(cutoff) {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *memStore) ListPending(context.Context) ([]*Record, error) {
	return s.list(StatusPending, 0), nil
}

func (s *memStore) ListProcessing(_ context.Context, olderThan time.Duration) ([]*Record, error) {
	return s.list(StatusProcessing, olderThan), nil
}

func (s *memStore) WithTx(*sql.Tx) Store { return s }

func (s *memStore) status(id uuid.UUID) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		return rec.Status
	}
	return ""
}

func (s *memStore) statuses(id uuid.UUID) []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Status(nil), s.history[id]...)
}
