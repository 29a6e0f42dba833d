// Package sqlite implements the relational dwitlit backend. Records, links,
// interned labels and interned payloads live in normalized SQLite tables;
// every public operation runs in exactly one transaction.
package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/dwitlit/internal/changefeed"
	"github.com/mesh-intelligence/dwitlit/internal/sqldb"
	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

var _ types.Store = (*Backend)(nil)

// DatabaseFile is the file name used inside Config.DataDir.
const DatabaseFile = "dwitlit.db"

// Backend implements types.Store on SQLite.
type Backend struct {
	mu   sync.RWMutex
	db   *sqldb.DB
	feed *changefeed.Feed
	log  *logrus.Entry
}

// Open connects to the database described by config and applies the schema.
// An empty DataDir selects a private in-memory database; otherwise the
// directory is created if needed and DatabaseFile inside it is opened.
func Open(config types.Config) (*Backend, error) {
	if config.Backend == "" {
		config.Backend = types.BackendSQLite
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Backend != types.BackendSQLite {
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, config.Backend)
	}

	dsn := sqldb.MemoryDSN
	if config.DataDir != "" {
		if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = filepath.Join(config.DataDir, DatabaseFile)
	}

	driver := config.SQLite.GetDriver()
	db, err := sqldb.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := applyPragmas(db, dsn, config.SQLite.GetBusyTimeoutMS()); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Exec(schemaScript()); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger := config.GetLogger()
	log := logger.WithFields(logrus.Fields{
		"backend": types.BackendSQLite,
		"driver":  db.Driver(),
		"dsn":     dsn,
	})
	log.Debug("store opened")

	return &Backend{
		db:   db,
		feed: changefeed.New(logger),
		log:  log,
	}, nil
}

// applyPragmas sets required SQLite configuration. WAL only applies to
// file-backed databases.
func applyPragmas(db *sqldb.DB, dsn string, busyTimeoutMS int) error {
	pragmas := []string{
		"foreign_keys = ON",
		fmt.Sprintf("busy_timeout = %d", busyTimeoutMS),
	}
	if dsn != sqldb.MemoryDSN {
		pragmas = append(pragmas, "journal_mode = WAL", "synchronous = NORMAL")
	}
	for _, p := range pragmas {
		if err := db.Pragma(p); err != nil {
			return err
		}
	}
	return nil
}

// read runs fn in a transaction under the read lock.
func (b *Backend) read(fn func(tx sqldb.Executor) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db.Closed() {
		return types.ErrClosed
	}
	return b.db.Transaction(fn)
}

// write runs fn in a transaction under the write lock. When fn reports a
// change and the transaction commits, the version is bumped before the lock
// is released and listeners are notified after.
func (b *Backend) write(fn func(tx sqldb.Executor) (bool, error)) error {
	b.mu.Lock()
	if b.db.Closed() {
		b.mu.Unlock()
		return types.ErrClosed
	}

	var changed bool
	err := b.db.Transaction(func(tx sqldb.Executor) error {
		var err error
		changed, err = fn(tx)
		return err
	})
	commit := err == nil && changed
	if commit {
		b.feed.Bump()
	}
	b.mu.Unlock()

	if commit {
		b.feed.Notify()
	}
	return err
}

// AddChangeListener registers l.
func (b *Backend) AddChangeListener(l types.ChangeListener) types.ListenerID {
	return b.feed.Add(l)
}

// RemoveChangeListener unregisters a listener by handle.
func (b *Backend) RemoveChangeListener(id types.ListenerID) bool {
	return b.feed.Remove(id)
}

// Version returns the modification counter.
func (b *Backend) Version() uint64 {
	return b.feed.Version()
}

// Close releases the database connection. Idempotent. After Close every
// operation returns types.ErrClosed.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db.Closed() {
		return nil
	}
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	b.log.WithField("listeners", b.feed.Len()).Debug("store closed")
	return nil
}
