// Package mocks provides hand-written test doubles: in-memory store
// implementations, function-override mocks for the auth services, and a
// no-op database driver for transaction-scoped service tests.
package mocks
