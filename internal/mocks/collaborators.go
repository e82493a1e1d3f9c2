package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/taskboard-api/internal/domain/analytics"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/job"
	"github.com/phrazzld/taskboard-api/internal/platform/cache"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

// PasswordVerifier is a testify mock of auth.PasswordVerifier.
type PasswordVerifier struct {
	mock.Mock
}

var _ auth.PasswordVerifier = (*PasswordVerifier)(nil)

func (m *PasswordVerifier) Compare(hashedPassword, password string) error {
	return m.Called(hashedPassword, password).Error(0)
}

// JWTService is a testify mock of auth.JWTService.
type JWTService struct {
	mock.Mock
}

var _ auth.JWTService = (*JWTService)(nil)

func (m *JWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *JWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*auth.Claims)
	return claims, args.Error(1)
}

func (m *JWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *JWTService) ValidateRefreshToken(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*auth.Claims)
	return claims, args.Error(1)
}

// Suggester is a testify mock of a subtask suggester.
type Suggester struct {
	mock.Mock
}

func (m *Suggester) Suggest(ctx context.Context, title, description string, limit int) ([]string, error) {
	args := m.Called(ctx, title, description, limit)
	titles, _ := args.Get(0).([]string)
	return titles, args.Error(1)
}

// StatsCache is a testify mock of cache.StatsCache.
type StatsCache struct {
	mock.Mock
}

var _ cache.StatsCache = (*StatsCache)(nil)

func (m *StatsCache) Get(ctx context.Context, userID uuid.UUID) (*analytics.Stats, bool, error) {
	args := m.Called(ctx, userID)
	stats, _ := args.Get(0).(*analytics.Stats)
	return stats, args.Bool(1), args.Error(2)
}

func (m *StatsCache) Version(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	v, _ := args.Get(0).(int64)
	return v, args.Error(1)
}

func (m *StatsCache) Set(ctx context.Context, userID uuid.UUID, version int64, stats analytics.Stats) error {
	return m.Called(ctx, userID, version, stats).Error(0)
}

func (m *StatsCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

// EventEmitter is a testify mock of events.EventEmitter.
type EventEmitter struct {
	mock.Mock
}

var _ events.EventEmitter = (*EventEmitter)(nil)

func (m *EventEmitter) EmitEvent(ctx context.Context, event *events.JobRequestEvent) error {
	return m.Called(ctx, event).Error(0)
}

// JobStatusReader is a testify mock of the job record lookup.
type JobStatusReader struct {
	mock.Mock
}

func (m *JobStatusReader) Status(ctx context.Context, id uuid.UUID) (*job.Record, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(*job.Record)
	return rec, args.Error(1)
}
