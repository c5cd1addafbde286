package mocks

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
)

// noopDriver backs NewDB. It supports only Begin/Commit/Rollback; any
// query reaching it is a test bug, because the in-memory stores never
// touch the transaction they are handed.
type noopDriver struct{}

func (noopDriver) Open(name string) (driver.Conn, error) {
	return &noopConn{}, nil
}

type noopConn struct{}

func (*noopConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("mocks: queries are not supported")
}

func (*noopConn) Close() error {
	return nil
}

func (*noopConn) Begin() (driver.Tx, error) {
	return noopTx{}, nil
}

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

var registerNoopDriver sync.Once

// NewDB returns a *sql.DB whose transactions begin, commit, and roll
// back without a database. Services that wrap store calls in
// transactions can run against the in-memory stores with it.
func NewDB() *sql.DB {
	registerNoopDriver.Do(func() {
		sql.Register("mocks-noop", noopDriver{})
	})

	db, err := sql.Open("mocks-noop", "")
	if err != nil {
		// sql.Open only fails for unknown drivers.
		panic(err)
	}
	return db
}
