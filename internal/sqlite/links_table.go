package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/dwitlit/internal/graph"
	"github.com/mesh-intelligence/dwitlit/internal/sqldb"
	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

// loadLinks returns the link list of a record in position order.
func loadLinks(tx sqldb.Executor, id types.RecordID) ([]types.Link, error) {
	rows, err := tx.All(`SELECT lb.label, lk.target_id
		FROM links lk
		JOIN labels lb ON lk.label_id = lb.label_id
		WHERE lk.source_id = ?
		ORDER BY lk.position`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("loading links of %d: %w", id, err)
	}
	defer rows.Close()

	links := []types.Link{}
	for rows.Next() {
		var (
			label  string
			target sql.NullInt64
		)
		if err := rows.Scan(&label, &target); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		if target.Valid {
			links = append(links, types.SpecificLink(label, types.RecordID(target.Int64)))
		} else {
			links = append(links, types.GeneralLink(label))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating links: %w", err)
	}
	return links, nil
}

// specificTargets returns the edge function of the specific-link graph as
// seen inside tx.
func specificTargets(tx sqldb.Executor) graph.EdgeFunc[types.RecordID] {
	return func(id types.RecordID) ([]types.RecordID, error) {
		return queryIDs(tx,
			"SELECT target_id FROM links WHERE source_id = ? AND target_id IS NOT NULL",
			int64(id))
	}
}

// queryIDs runs a query whose single column is a record ID.
func queryIDs(tx sqldb.Executor, query string, args ...any) ([]types.RecordID, error) {
	rows, err := tx.All(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ids: %w", err)
	}
	defer rows.Close()

	ids := []types.RecordID{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		ids = append(ids, types.RecordID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ids: %w", err)
	}
	return ids, nil
}

// queryBacklinks runs a query returning (source_id, position) pairs.
func queryBacklinks(tx sqldb.Executor, query string, args ...any) ([]types.Backlink, error) {
	rows, err := tx.All(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying backlinks: %w", err)
	}
	defer rows.Close()

	out := []types.Backlink{}
	for rows.Next() {
		var (
			source   int64
			position int
		)
		if err := rows.Scan(&source, &position); err != nil {
			return nil, fmt.Errorf("scanning backlink: %w", err)
		}
		out = append(out, types.Backlink{Source: types.RecordID(source), Position: position})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating backlinks: %w", err)
	}
	return out, nil
}

// ListRecords iterates every record ID in ascending order.
func (b *Backend) ListRecords() (*types.Iterator[types.RecordID], error) {
	var it *types.Iterator[types.RecordID]
	err := b.read(func(tx sqldb.Executor) error {
		ids, err := queryIDs(tx, "SELECT record_id FROM records ORDER BY record_id")
		if err != nil {
			return err
		}
		it = types.NewIterator(ids, b.feed.Version)
		return nil
	})
	return it, err
}

// ListLinks iterates the link list of a record.
func (b *Backend) ListLinks(id types.RecordID) (*types.Iterator[types.Link], error) {
	var it *types.Iterator[types.Link]
	err := b.read(func(tx sqldb.Executor) error {
		ok, err := recordExists(tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return types.ErrNotFound
		}
		links, err := loadLinks(tx, id)
		if err != nil {
			return err
		}
		it = types.NewIterator(links, b.feed.Version)
		return nil
	})
	return it, err
}

// ListRecordsByLabel iterates the IDs of records carrying label.
func (b *Backend) ListRecordsByLabel(label string) (*types.Iterator[types.RecordID], error) {
	var it *types.Iterator[types.RecordID]
	err := b.read(func(tx sqldb.Executor) error {
		ids, err := queryIDs(tx, `SELECT r.record_id
			FROM records r
			JOIN labels lb ON r.label_id = lb.label_id
			WHERE lb.label = ?
			ORDER BY r.record_id`, label)
		if err != nil {
			return err
		}
		it = types.NewIterator(ids, b.feed.Version)
		return nil
	})
	return it, err
}

// ListGeneralBacklinks iterates general links labeled label.
func (b *Backend) ListGeneralBacklinks(label string) (*types.Iterator[types.Backlink], error) {
	var it *types.Iterator[types.Backlink]
	err := b.read(func(tx sqldb.Executor) error {
		backs, err := queryBacklinks(tx, `SELECT lk.source_id, lk.position
			FROM links lk
			JOIN labels lb ON lk.label_id = lb.label_id
			WHERE lb.label = ? AND lk.target_id IS NULL
			ORDER BY lk.source_id, lk.position`, label)
		if err != nil {
			return err
		}
		it = types.NewIterator(backs, b.feed.Version)
		return nil
	})
	return it, err
}

// ListSpecificBacklinks iterates specific links that target id.
func (b *Backend) ListSpecificBacklinks(id types.RecordID) (*types.Iterator[types.Backlink], error) {
	var it *types.Iterator[types.Backlink]
	err := b.read(func(tx sqldb.Executor) error {
		ok, err := recordExists(tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return types.ErrNotFound
		}
		backs, err := queryBacklinks(tx, `SELECT source_id, position
			FROM links
			WHERE target_id = ?
			ORDER BY source_id, position`, int64(id))
		if err != nil {
			return err
		}
		it = types.NewIterator(backs, b.feed.Version)
		return nil
	})
	return it, err
}
