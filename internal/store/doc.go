// Package store defines the persistence contracts for users, tasks,
// categories and tags. Implementations live under internal/platform; services
// depend only on these interfaces.
//
// Every store can be rebound to a transaction with WithTx so that a service
// can compose several writes atomically via RunInTransaction.
package store
