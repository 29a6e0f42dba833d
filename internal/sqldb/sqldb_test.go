package sqldb

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE items (
    item_id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);`

func openTestDB(t *testing.T, driver, dsn string) *DB {
	t.Helper()
	db, err := Open(driver, dsn)
	if err != nil {
		if driver == "sqlite3" {
			t.Skipf("mattn driver unavailable (cgo disabled?): %v", err)
		}
		t.Fatalf("Open(%q) failed: %v", driver, err)
	}
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Exec(testSchema))
	return db
}

func TestDB_Drivers(t *testing.T) {
	for _, driver := range []string{"sqlite", "sqlite3"} {
		t.Run(driver, func(t *testing.T) {
			db := openTestDB(t, driver, MemoryDSN)
			assert.Equal(t, driver, db.Driver())

			res, err := db.Run("INSERT INTO items (name) VALUES (?)", "a")
			require.NoError(t, err)
			assert.Equal(t, int64(1), res.Changes)
			assert.Equal(t, int64(1), res.LastInsertID)

			var name string
			require.NoError(t, db.Get("SELECT name FROM items WHERE item_id = ?", 1).Scan(&name))
			assert.Equal(t, "a", name)

			err = db.Get("SELECT name FROM items WHERE item_id = ?", 42).Scan(&name)
			assert.True(t, errors.Is(err, sql.ErrNoRows))
		})
	}
}

func TestDB_TransactionCommits(t *testing.T) {
	db := openTestDB(t, "sqlite", MemoryDSN)

	err := db.Transaction(func(tx Executor) error {
		if _, err := tx.Run("INSERT INTO items (name) VALUES (?)", "a"); err != nil {
			return err
		}
		_, err := tx.Run("INSERT INTO items (name) VALUES (?)", "b")
		return err
	})
	require.NoError(t, err)

	rows, err := db.All("SELECT name FROM items ORDER BY item_id")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestDB_PreparedStatement(t *testing.T) {
	db := openTestDB(t, "sqlite", MemoryDSN)

	err := db.Transaction(func(tx Executor) error {
		insert, err := tx.Prepare("INSERT INTO items (name) VALUES (?)")
		if err != nil {
			return err
		}
		defer insert.Close()
		for _, name := range []string{"a", "b", "c"} {
			res, err := insert.Run(name)
			if err != nil {
				return err
			}
			if res.Changes != 1 {
				return errors.New("expected one changed row")
			}
		}
		return nil
	})
	require.NoError(t, err)

	find, err := db.Prepare("SELECT name FROM items WHERE item_id = ?")
	require.NoError(t, err)
	defer find.Close()

	var name string
	require.NoError(t, find.Get(2).Scan(&name))
	assert.Equal(t, "b", name)
	assert.True(t, errors.Is(find.Get(42).Scan(&name), sql.ErrNoRows))

	rows, err := find.All(3)
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	require.NoError(t, rows.Scan(&name))
	assert.Equal(t, "c", name)
	assert.False(t, rows.Next())
	require.NoError(t, rows.Err())
}

func TestDB_TransactionRollsBackOnError(t *testing.T) {
	db := openTestDB(t, "sqlite", MemoryDSN)
	abort := errors.New("abort")

	err := db.Transaction(func(tx Executor) error {
		if _, err := tx.Run("INSERT INTO items (name) VALUES (?)", "a"); err != nil {
			return err
		}
		return abort
	})
	assert.ErrorIs(t, err, abort, "fn error is returned unchanged")

	var n int
	require.NoError(t, db.Get("SELECT COUNT(*) FROM items").Scan(&n))
	assert.Zero(t, n)
}

func TestDB_Pragma(t *testing.T) {
	db := openTestDB(t, "sqlite", MemoryDSN)
	require.NoError(t, db.Pragma("foreign_keys = ON"))

	var on int
	require.NoError(t, db.Get("PRAGMA foreign_keys").Scan(&on))
	assert.Equal(t, 1, on)

	assert.Error(t, db.Pragma("("), "syntax errors are reported")
}

func TestDB_FilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open("sqlite", path)
	require.NoError(t, err)
	require.NoError(t, db.Exec(testSchema))
	_, err = db.Run("INSERT INTO items (name) VALUES (?)", "kept")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var name string
	require.NoError(t, db.Get("SELECT name FROM items").Scan(&name))
	assert.Equal(t, "kept", name)
}

func TestDB_Close(t *testing.T) {
	db, err := Open("sqlite", MemoryDSN)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.NoError(t, db.Close(), "Close is idempotent")
	assert.True(t, db.Closed())

	assert.ErrorIs(t, db.Exec("SELECT 1"), ErrClosed)
	assert.ErrorIs(t, db.Transaction(func(Executor) error { return nil }), ErrClosed)

	_, err = db.Run("SELECT 1")
	assert.Error(t, err)
}
