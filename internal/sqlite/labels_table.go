package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/mesh-intelligence/dwitlit/internal/sqldb"
)

// lookupLabel returns the surrogate key of label. ok is false if the label
// was never interned.
func lookupLabel(tx sqldb.Executor, label string) (id int64, ok bool, err error) {
	err = tx.Get("SELECT label_id FROM labels WHERE label = ?", label).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("looking up label %q: %w", label, err)
	}
	return id, true, nil
}

// internLabel returns the surrogate key of label, inserting it if needed.
func internLabel(tx sqldb.Executor, label string) (int64, error) {
	id, ok, err := lookupLabel(tx, label)
	if err != nil || ok {
		return id, err
	}
	res, err := tx.Run("INSERT INTO labels (label) VALUES (?)", label)
	if err != nil {
		return 0, fmt.Errorf("interning label %q: %w", label, err)
	}
	return res.LastInsertID, nil
}

// payloadDigest narrows payload lookups to an indexed integer. SQLite
// integers are signed, so the hash is stored as its int64 bit pattern.
func payloadDigest(data []byte) int64 {
	return int64(xxhash.Sum64(data))
}

// lookupPayload returns the surrogate key of a payload with exactly these
// bytes. The digest selects candidates; the byte comparison settles
// collisions.
func lookupPayload(tx sqldb.Executor, data []byte) (id int64, ok bool, err error) {
	err = tx.Get(
		"SELECT payload_id FROM payloads WHERE digest = ? AND data = ? LIMIT 1",
		payloadDigest(data), data,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("looking up payload: %w", err)
	}
	return id, true, nil
}

// internPayload returns the surrogate key of data, inserting it if needed.
func internPayload(tx sqldb.Executor, data []byte) (int64, error) {
	id, ok, err := lookupPayload(tx, data)
	if err != nil || ok {
		return id, err
	}
	res, err := tx.Run(
		"INSERT INTO payloads (digest, data) VALUES (?, ?)",
		payloadDigest(data), data,
	)
	if err != nil {
		return 0, fmt.Errorf("interning payload: %w", err)
	}
	return res.LastInsertID, nil
}

// releasePayload deletes a payload row once no record references it.
func releasePayload(tx sqldb.Executor, payloadID int64) error {
	_, err := tx.Run(
		"DELETE FROM payloads WHERE payload_id = ? AND NOT EXISTS (SELECT 1 FROM records WHERE payload_id = ?)",
		payloadID, payloadID,
	)
	if err != nil {
		return fmt.Errorf("releasing payload: %w", err)
	}
	return nil
}
