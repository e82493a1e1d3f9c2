// Package mocks provides testify mocks for the store, service and platform
// interfaces, shared by the test suites of several packages.
//
// Store mocks return themselves from WithTx, so expectations set on a mock
// also apply inside transactions.
package mocks
