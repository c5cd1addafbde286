// Package store defines the persistence interfaces for users and cards,
// the shared error taxonomy, and the transaction helper that scopes every
// public trade operation to a single atomic unit of work.
package store
