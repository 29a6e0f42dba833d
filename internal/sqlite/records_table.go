package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/dwitlit/internal/graph"
	"github.com/mesh-intelligence/dwitlit/internal/sqldb"
	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

// Create stores a record or returns the ID of its identical twin. Every read
// and write happens in one transaction; a rejection rolls it back.
func (b *Backend) Create(label string, links []types.Link, payload []byte, confirmed *bool) (types.RecordID, error) {
	if err := types.ValidateRecord(label, links); err != nil {
		return 0, err
	}
	if payload == nil {
		payload = []byte{}
	}

	var id types.RecordID
	err := b.write(func(tx sqldb.Executor) (bool, error) {
		var (
			changed bool
			err     error
		)
		id, changed, err = createRecord(tx, label, links, payload, confirmed)
		return changed, err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func createRecord(tx sqldb.Executor, label string, links []types.Link, payload []byte, confirmed *bool) (types.RecordID, bool, error) {
	for _, l := range links {
		if l.Target == nil {
			continue
		}
		ok, err := recordExists(tx, *l.Target)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return 0, false, types.ErrRejectedReference
		}
	}

	existing, found, err := findIdentical(tx, label, links, payload)
	if err != nil {
		return 0, false, err
	}
	if found {
		if confirmed == nil || existing.confirmed == *confirmed {
			return existing.id, false, nil
		}
		if _, err := tx.Run(
			"UPDATE records SET confirmed = ? WHERE record_id = ?",
			boolToInt(*confirmed), int64(existing.id),
		); err != nil {
			return 0, false, fmt.Errorf("updating confirmed flag: %w", err)
		}
		return existing.id, true, nil
	}

	labelID, err := internLabel(tx, label)
	if err != nil {
		return 0, false, err
	}
	payloadID, err := internPayload(tx, payload)
	if err != nil {
		return 0, false, err
	}
	id, err := nextRecordID(tx)
	if err != nil {
		return 0, false, err
	}

	flag := confirmed != nil && *confirmed
	if _, err := tx.Run(
		"INSERT INTO records (record_id, label_id, payload_id, link_count, confirmed) VALUES (?, ?, ?, ?, ?)",
		int64(id), labelID, payloadID, len(links), boolToInt(flag),
	); err != nil {
		return 0, false, fmt.Errorf("inserting record: %w", err)
	}

	insertLink, err := tx.Prepare("INSERT INTO links (source_id, label_id, target_id, position) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, false, fmt.Errorf("preparing link insert: %w", err)
	}
	defer insertLink.Close()

	edges := specificTargets(tx)
	for pos, l := range links {
		var target any
		if l.Target != nil {
			closes, err := graph.ClosesCycle(id, *l.Target, edges)
			if err != nil {
				return 0, false, fmt.Errorf("checking for cycles: %w", err)
			}
			if closes {
				return 0, false, types.ErrCycle
			}
			target = int64(*l.Target)
		}

		linkLabelID, err := internLabel(tx, l.Label)
		if err != nil {
			return 0, false, err
		}
		if _, err := insertLink.Run(int64(id), linkLabelID, target, pos); err != nil {
			return 0, false, fmt.Errorf("inserting link %d: %w", pos, err)
		}
	}

	return id, true, nil
}

// nextRecordID allocates the next record ID from the sequences table.
func nextRecordID(tx sqldb.Executor) (types.RecordID, error) {
	var next int64
	if err := tx.Get("SELECT next_id FROM sequences WHERE name = 'records'").Scan(&next); err != nil {
		return 0, fmt.Errorf("reading record sequence: %w", err)
	}
	if _, err := tx.Run("UPDATE sequences SET next_id = ? WHERE name = 'records'", next+1); err != nil {
		return 0, fmt.Errorf("advancing record sequence: %w", err)
	}
	return types.RecordID(next), nil
}

// candidate is a stored record that may share an identity key.
type candidate struct {
	id        types.RecordID
	confirmed bool
}

// findIdentical returns the record whose label, payload and link list equal
// the arguments. Label and payload are interned, so their surrogate keys
// narrow the search to records that differ at most in links.
func findIdentical(tx sqldb.Executor, label string, links []types.Link, payload []byte) (candidate, bool, error) {
	labelID, ok, err := lookupLabel(tx, label)
	if err != nil || !ok {
		return candidate{}, false, err
	}
	payloadID, ok, err := lookupPayload(tx, payload)
	if err != nil || !ok {
		return candidate{}, false, err
	}

	rows, err := tx.All(
		"SELECT record_id, confirmed FROM records WHERE label_id = ? AND payload_id = ? AND link_count = ? ORDER BY record_id",
		labelID, payloadID, len(links),
	)
	if err != nil {
		return candidate{}, false, fmt.Errorf("finding identical records: %w", err)
	}
	var candidates []candidate
	for rows.Next() {
		var (
			c    candidate
			id   int64
			flag int
		)
		if err := rows.Scan(&id, &flag); err != nil {
			rows.Close()
			return candidate{}, false, fmt.Errorf("scanning candidate: %w", err)
		}
		c.id, c.confirmed = types.RecordID(id), flag != 0
		candidates = append(candidates, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return candidate{}, false, fmt.Errorf("iterating candidates: %w", err)
	}

	for _, c := range candidates {
		stored, err := loadLinks(tx, c.id)
		if err != nil {
			return candidate{}, false, err
		}
		if types.LinksEqual(stored, links) {
			return c, true, nil
		}
	}
	return candidate{}, false, nil
}

// recordExists reports whether a record with id is stored.
func recordExists(tx sqldb.Executor, id types.RecordID) (bool, error) {
	var one int
	err := tx.Get("SELECT 1 FROM records WHERE record_id = ?", int64(id)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking record %d: %w", id, err)
	}
	return true, nil
}

// Get returns the record with its links in order.
func (b *Backend) Get(id types.RecordID) (types.Record, error) {
	var rec types.Record
	err := b.read(func(tx sqldb.Executor) error {
		var (
			flag    int
			payload []byte
		)
		err := tx.Get(`SELECT lb.label, p.data, r.confirmed
			FROM records r
			JOIN labels lb ON r.label_id = lb.label_id
			JOIN payloads p ON r.payload_id = p.payload_id
			WHERE r.record_id = ?`, int64(id),
		).Scan(&rec.Label, &payload, &flag)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("getting record %d: %w", id, err)
		}

		rec.ID = id
		rec.Payload = append([]byte{}, payload...)
		rec.Confirmed = flag != 0
		rec.Links, err = loadLinks(tx, id)
		return err
	})
	if err != nil {
		return types.Record{}, err
	}
	return rec, nil
}

// Remove deletes the record, its links and, if no longer shared, its payload.
func (b *Backend) Remove(id types.RecordID) error {
	return b.write(func(tx sqldb.Executor) (bool, error) {
		var payloadID int64
		err := tx.Get("SELECT payload_id FROM records WHERE record_id = ?", int64(id)).Scan(&payloadID)
		if errors.Is(err, sql.ErrNoRows) {
			return false, types.ErrNotFound
		}
		if err != nil {
			return false, fmt.Errorf("getting record %d: %w", id, err)
		}

		var one int
		err = tx.Get("SELECT 1 FROM links WHERE target_id = ? LIMIT 1", int64(id)).Scan(&one)
		if err == nil {
			return false, types.ErrHasBacklinks
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("checking backlinks of %d: %w", id, err)
		}

		if _, err := tx.Run("DELETE FROM links WHERE source_id = ?", int64(id)); err != nil {
			return false, fmt.Errorf("deleting links: %w", err)
		}
		if _, err := tx.Run("DELETE FROM records WHERE record_id = ?", int64(id)); err != nil {
			return false, fmt.Errorf("deleting record: %w", err)
		}
		if err := releasePayload(tx, payloadID); err != nil {
			return false, err
		}
		return true, nil
	})
}

// SetConfirmed updates the confirmed flag if it differs.
func (b *Backend) SetConfirmed(id types.RecordID, confirmed bool) error {
	return b.write(func(tx sqldb.Executor) (bool, error) {
		var flag int
		err := tx.Get("SELECT confirmed FROM records WHERE record_id = ?", int64(id)).Scan(&flag)
		if errors.Is(err, sql.ErrNoRows) {
			return false, types.ErrNotFound
		}
		if err != nil {
			return false, fmt.Errorf("getting record %d: %w", id, err)
		}
		if (flag != 0) == confirmed {
			return false, nil
		}
		if _, err := tx.Run(
			"UPDATE records SET confirmed = ? WHERE record_id = ?",
			boolToInt(confirmed), int64(id),
		); err != nil {
			return false, fmt.Errorf("updating confirmed flag: %w", err)
		}
		return true, nil
	})
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
