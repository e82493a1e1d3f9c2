// Package service holds the application use cases. Services coordinate the
// stores in internal/store, the domain rules in internal/domain and the
// background job machinery, and are the only layer the HTTP handlers call.
//
// Every operation is scoped to the calling user: resources owned by someone
// else yield ErrNotOwned. Failures are wrapped in ServiceError so callers can
// still match the underlying sentinel with errors.Is.
package service
