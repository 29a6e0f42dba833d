// Package jsonl exports a store to JSON Lines and replays such a file into
// another store. Each line holds one record; records appear in ascending ID
// order, so every specific link points at a line above it.
package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

// maxLineBytes bounds a single line, payload included.
const maxLineBytes = 64 << 20

// ErrMalformedLine is returned by Import for a line that is not a record.
var ErrMalformedLine = errors.New("malformed jsonl line")

// Line is the on-disk form of one record. Payload is base64 encoded by
// encoding/json.
type Line struct {
	ID        types.RecordID `json:"id"`
	Label     string         `json:"label"`
	Links     []types.Link   `json:"links"`
	Payload   []byte         `json:"payload"`
	Confirmed bool           `json:"confirmed"`
}

// FromRecord converts a record to its line form.
func FromRecord(rec types.Record) Line {
	payload := rec.Payload
	if payload == nil {
		payload = []byte{}
	}
	return Line{
		ID:        rec.ID,
		Label:     rec.Label,
		Links:     types.CloneLinks(rec.Links),
		Payload:   payload,
		Confirmed: rec.Confirmed,
	}
}

// Export writes every record in s to w and returns the number written. It
// fails with types.ErrIteratorInvalidated if s changes while exporting.
func Export(s types.Store, w io.Writer) (int, error) {
	it, err := s.ListRecords()
	if err != nil {
		return 0, fmt.Errorf("listing records: %w", err)
	}

	bw := bufio.NewWriter(w)
	n := 0
	for it.Next() {
		rec, err := s.Get(it.Value())
		if err != nil {
			return n, fmt.Errorf("getting record %d: %w", it.Value(), err)
		}
		data, err := json.Marshal(FromRecord(rec))
		if err != nil {
			return n, fmt.Errorf("encoding record %d: %w", rec.ID, err)
		}
		if _, err := bw.Write(data); err != nil {
			return n, fmt.Errorf("writing record: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return n, fmt.Errorf("writing newline: %w", err)
		}
		n++
	}
	if err := it.Err(); err != nil {
		return n, err
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("flushing buffer: %w", err)
	}
	return n, nil
}

// Import creates one record per line of r, in file order. Specific link
// targets are translated from exported IDs to the IDs s assigns; a target
// whose line has not been imported yet fails with types.ErrRejectedReference.
// Lines that deduplicate against existing records map to those records.
//
// The returned map takes exported IDs to store IDs. Records created before
// a failing line stay in s.
func Import(s types.Store, r io.Reader) (map[types.RecordID]types.RecordID, error) {
	ids := make(map[types.RecordID]types.RecordID)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var line Line
		if err := json.Unmarshal(raw, &line); err != nil {
			return ids, fmt.Errorf("%w: line %d: %v", ErrMalformedLine, lineNo, err)
		}

		links := make([]types.Link, len(line.Links))
		for i, l := range line.Links {
			if l.Target == nil {
				links[i] = types.GeneralLink(l.Label)
				continue
			}
			target, ok := ids[*l.Target]
			if !ok {
				return ids, fmt.Errorf("line %d: link %d target %d: %w",
					lineNo, i, *l.Target, types.ErrRejectedReference)
			}
			links[i] = types.SpecificLink(l.Label, target)
		}

		id, err := s.Create(line.Label, links, line.Payload, &line.Confirmed)
		if err != nil {
			return ids, fmt.Errorf("line %d: %w", lineNo, err)
		}
		ids[line.ID] = id
	}
	if err := scanner.Err(); err != nil {
		return ids, fmt.Errorf("scanning: %w", err)
	}
	return ids, nil
}

// WriteFile exports s to path atomically using the temp-file, fsync, rename
// pattern.
func WriteFile(path string, s types.Store) (int, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jsonl-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	n, err := Export(s, tmp)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}

// ReadFile imports the file at path into s.
func ReadFile(path string, s types.Store) (map[types.RecordID]types.RecordID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Import(s, f)
}
