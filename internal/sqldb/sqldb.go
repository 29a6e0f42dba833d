// Package sqldb is the thin SQL surface the relational backend is written
// against: raw script execution, pragmas, single statements that write,
// fetch one row or fetch many rows, and transactions that commit only when
// the wrapped function succeeds.
//
// Two database/sql drivers are registered: "sqlite" (modernc.org/sqlite,
// pure Go) and "sqlite3" (github.com/mattn/go-sqlite3, requires cgo).
package sqldb

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("sqldb: database is closed")

// Result reports the effect of a write statement.
type Result struct {
	LastInsertID int64
	Changes      int64
}

// Executor runs single statements. It is implemented by DB and by the
// transaction handle passed to DB.Transaction.
type Executor interface {
	// Run executes a statement that returns no rows.
	Run(query string, args ...any) (Result, error)

	// Get executes a query expected to return at most one row. Scan returns
	// sql.ErrNoRows when there is none.
	Get(query string, args ...any) *sql.Row

	// All executes a query and returns its rows. The caller closes them.
	All(query string, args ...any) (*sql.Rows, error)

	// Prepare compiles a statement for repeated execution. The caller
	// closes it.
	Prepare(query string) (*Stmt, error)
}

// querier is the subset of *sql.DB and *sql.Tx that Executor needs.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
	Prepare(query string) (*sql.Stmt, error)
}

type executor struct {
	q querier
}

func (e executor) Run(query string, args ...any) (Result, error) {
	return result(e.q.Exec(query, args...))
}

func (e executor) Get(query string, args ...any) *sql.Row {
	return e.q.QueryRow(query, args...)
}

func (e executor) All(query string, args ...any) (*sql.Rows, error) {
	return e.q.Query(query, args...)
}

func (e executor) Prepare(query string) (*Stmt, error) {
	stmt, err := e.q.Prepare(query)
	if err != nil {
		return nil, err
	}
	return &Stmt{stmt: stmt}, nil
}

// Stmt is a prepared statement with the same three ways to run as Executor.
type Stmt struct {
	stmt *sql.Stmt
}

// Run executes the statement for a write.
func (s *Stmt) Run(args ...any) (Result, error) {
	return result(s.stmt.Exec(args...))
}

// Get executes the statement expecting at most one row.
func (s *Stmt) Get(args ...any) *sql.Row {
	return s.stmt.QueryRow(args...)
}

// All executes the statement and returns its rows. The caller closes them.
func (s *Stmt) All(args ...any) (*sql.Rows, error) {
	return s.stmt.Query(args...)
}

// Close releases the statement.
func (s *Stmt) Close() error {
	return s.stmt.Close()
}

func result(res sql.Result, err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	var r Result
	// Neither driver fails these calls, but database/sql allows it.
	if r.LastInsertID, err = res.LastInsertId(); err != nil {
		return Result{}, fmt.Errorf("last insert id: %w", err)
	}
	if r.Changes, err = res.RowsAffected(); err != nil {
		return Result{}, fmt.Errorf("rows affected: %w", err)
	}
	return r, nil
}

// DB is an open SQLite database.
type DB struct {
	executor
	db     *sql.DB
	driver string
	closed bool
}

// Open connects to dsn with the named driver and verifies the connection.
// The pool is limited to one connection: SQLite allows a single writer, and
// each connection to ":memory:" would otherwise see its own database.
func Open(driver, dsn string) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s database: %w", driver, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &DB{executor: executor{q: db}, db: db, driver: driver}, nil
}

// Driver returns the driver name the database was opened with.
func (d *DB) Driver() string {
	return d.driver
}

// Exec runs a script of one or more statements.
func (d *DB) Exec(script string) error {
	if d.closed {
		return ErrClosed
	}
	if _, err := d.db.Exec(script); err != nil {
		return err
	}
	return nil
}

// Pragma sets a connection option, e.g. Pragma("foreign_keys = ON").
func (d *DB) Pragma(opt string) error {
	if err := d.Exec("PRAGMA " + opt); err != nil {
		return fmt.Errorf("pragma %q: %w", opt, err)
	}
	return nil
}

// Transaction runs fn inside a transaction. It commits when fn returns nil
// and rolls back otherwise, returning fn's error unchanged so callers can
// match sentinels with errors.Is.
func (d *DB) Transaction(fn func(tx Executor) error) error {
	if d.closed {
		return ErrClosed
	}
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(executor{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close closes the database. Idempotent. Statements issued afterwards fail
// with the database/sql "database is closed" error.
func (d *DB) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.db.Close()
}

// Closed reports whether Close has been called.
func (d *DB) Closed() bool {
	return d.closed
}
