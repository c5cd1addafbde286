// Package postgres contains the PostgreSQL implementations of the store
// interfaces, backed by pgx through database/sql.
package postgres
