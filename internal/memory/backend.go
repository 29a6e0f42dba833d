// Package memory implements the in-memory dwitlit backend: hash indexes over
// in-process maps, validated fully before any structure is touched.
package memory

import (
	"cmp"
	"encoding/hex"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/dwitlit/internal/changefeed"
	"github.com/mesh-intelligence/dwitlit/internal/graph"
	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

var _ types.Store = (*Backend)(nil)

type idSet map[types.RecordID]struct{}

type backlinkSet map[types.Backlink]struct{}

// Backend is the in-memory Store.
type Backend struct {
	mu     sync.RWMutex
	closed bool
	feed   *changefeed.Feed
	log    *logrus.Logger

	nextID   types.RecordID
	records  map[types.RecordID]*types.Record
	byKey    map[string]types.RecordID      // identity key -> id
	byLabel  map[string]idSet               // record label -> ids
	general  map[string]backlinkSet         // link label -> general backlinks
	specific map[types.RecordID]backlinkSet // target id -> specific backlinks
}

// NewBackend returns an empty in-memory store.
func NewBackend(cfg types.Config) *Backend {
	log := cfg.GetLogger()
	log.WithField("backend", types.BackendMemory).Debug("store opened")
	return &Backend{
		feed:     changefeed.New(log),
		log:      log,
		records:  make(map[types.RecordID]*types.Record),
		byKey:    make(map[string]types.RecordID),
		byLabel:  make(map[string]idSet),
		general:  make(map[string]backlinkSet),
		specific: make(map[types.RecordID]backlinkSet),
	}
}

// identityKey encodes (label, links, payload) as a map key. Labels cannot
// contain the separator bytes, so the encoding is unambiguous.
func identityKey(label string, links []types.Link, payload []byte) string {
	var sb strings.Builder
	sb.WriteString(label)
	sb.WriteByte('|')
	for _, l := range links {
		sb.WriteString(l.Label)
		if l.Target != nil {
			sb.WriteByte('=')
			sb.WriteString(strconv.FormatInt(int64(*l.Target), 10))
		}
		sb.WriteByte(',')
	}
	sb.WriteByte('|')
	sb.WriteString(hex.EncodeToString(payload))
	return sb.String()
}

// Create stores a record or returns the ID of its identical twin.
func (b *Backend) Create(label string, links []types.Link, payload []byte, confirmed *bool) (types.RecordID, error) {
	if err := types.ValidateRecord(label, links); err != nil {
		return 0, err
	}

	b.mu.Lock()
	id, changed, err := b.createLocked(label, links, payload, confirmed)
	b.mu.Unlock()

	if changed {
		b.feed.Notify()
	}
	return id, err
}

func (b *Backend) createLocked(label string, links []types.Link, payload []byte, confirmed *bool) (types.RecordID, bool, error) {
	if b.closed {
		return 0, false, types.ErrClosed
	}

	for _, l := range links {
		if l.Target == nil {
			continue
		}
		if _, ok := b.records[*l.Target]; !ok {
			return 0, false, types.ErrRejectedReference
		}
	}

	key := identityKey(label, links, payload)
	if id, ok := b.byKey[key]; ok {
		rec := b.records[id]
		if confirmed == nil || rec.Confirmed == *confirmed {
			return id, false, nil
		}
		rec.Confirmed = *confirmed
		b.feed.Bump()
		return id, true, nil
	}

	// With immutable link lists nothing references the new ID yet, so this
	// only finds a path if an existing link list was edited.
	id := b.nextID
	for _, l := range links {
		if l.Target == nil {
			continue
		}
		closes, err := graph.ClosesCycle(id, *l.Target, b.targetsOf)
		if err != nil {
			return 0, false, err
		}
		if closes {
			return 0, false, types.ErrCycle
		}
	}

	rec := &types.Record{
		ID:      id,
		Label:   label,
		Links:   types.CloneLinks(links),
		Payload: append([]byte{}, payload...),
	}
	if confirmed != nil {
		rec.Confirmed = *confirmed
	}

	b.nextID++
	b.records[id] = rec
	b.byKey[key] = id
	addID(b.byLabel, label, id)
	for pos, l := range rec.Links {
		bl := types.Backlink{Source: id, Position: pos}
		if l.Target == nil {
			addBacklink(b.general, l.Label, bl)
		} else {
			addBacklink(b.specific, *l.Target, bl)
		}
	}

	b.feed.Bump()
	return id, true, nil
}

// targetsOf returns the specific-link targets of a record.
func (b *Backend) targetsOf(id types.RecordID) ([]types.RecordID, error) {
	rec, ok := b.records[id]
	if !ok {
		return nil, nil
	}
	var out []types.RecordID
	for _, l := range rec.Links {
		if l.Target != nil {
			out = append(out, *l.Target)
		}
	}
	return out, nil
}

// Get returns a copy of the record.
func (b *Backend) Get(id types.RecordID) (types.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return types.Record{}, types.ErrClosed
	}
	rec, ok := b.records[id]
	if !ok {
		return types.Record{}, types.ErrNotFound
	}
	return rec.Clone(), nil
}

// Remove deletes a record that no specific link targets.
func (b *Backend) Remove(id types.RecordID) error {
	b.mu.Lock()
	err := b.removeLocked(id)
	b.mu.Unlock()

	if err == nil {
		b.feed.Notify()
	}
	return err
}

func (b *Backend) removeLocked(id types.RecordID) error {
	if b.closed {
		return types.ErrClosed
	}
	rec, ok := b.records[id]
	if !ok {
		return types.ErrNotFound
	}
	if len(b.specific[id]) > 0 {
		return types.ErrHasBacklinks
	}

	delete(b.records, id)
	delete(b.byKey, identityKey(rec.Label, rec.Links, rec.Payload))
	removeID(b.byLabel, rec.Label, id)
	for pos, l := range rec.Links {
		bl := types.Backlink{Source: id, Position: pos}
		if l.Target == nil {
			removeBacklink(b.general, l.Label, bl)
		} else {
			removeBacklink(b.specific, *l.Target, bl)
		}
	}

	b.feed.Bump()
	return nil
}

// SetConfirmed updates the confirmed flag.
func (b *Backend) SetConfirmed(id types.RecordID, confirmed bool) error {
	b.mu.Lock()
	changed, err := b.setConfirmedLocked(id, confirmed)
	b.mu.Unlock()

	if changed {
		b.feed.Notify()
	}
	return err
}

func (b *Backend) setConfirmedLocked(id types.RecordID, confirmed bool) (bool, error) {
	if b.closed {
		return false, types.ErrClosed
	}
	rec, ok := b.records[id]
	if !ok {
		return false, types.ErrNotFound
	}
	if rec.Confirmed == confirmed {
		return false, nil
	}
	rec.Confirmed = confirmed
	b.feed.Bump()
	return true, nil
}

// ListRecords iterates every record ID in ascending order.
func (b *Backend) ListRecords() (*types.Iterator[types.RecordID], error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, types.ErrClosed
	}
	ids := make([]types.RecordID, 0, len(b.records))
	for id := range b.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return types.NewIterator(ids, b.feed.Version), nil
}

// ListLinks iterates the link list of a record.
func (b *Backend) ListLinks(id types.RecordID) (*types.Iterator[types.Link], error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, types.ErrClosed
	}
	rec, ok := b.records[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return types.NewIterator(types.CloneLinks(rec.Links), b.feed.Version), nil
}

// ListRecordsByLabel iterates the IDs of records carrying label.
func (b *Backend) ListRecordsByLabel(label string) (*types.Iterator[types.RecordID], error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, types.ErrClosed
	}
	ids := make([]types.RecordID, 0, len(b.byLabel[label]))
	for id := range b.byLabel[label] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return types.NewIterator(ids, b.feed.Version), nil
}

// ListGeneralBacklinks iterates general links labeled label.
func (b *Backend) ListGeneralBacklinks(label string) (*types.Iterator[types.Backlink], error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, types.ErrClosed
	}
	return types.NewIterator(sortedBacklinks(b.general[label]), b.feed.Version), nil
}

// ListSpecificBacklinks iterates specific links that target id.
func (b *Backend) ListSpecificBacklinks(id types.RecordID) (*types.Iterator[types.Backlink], error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, types.ErrClosed
	}
	if _, ok := b.records[id]; !ok {
		return nil, types.ErrNotFound
	}
	return types.NewIterator(sortedBacklinks(b.specific[id]), b.feed.Version), nil
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

// Close drops all indexes. Idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.records = nil
	b.byKey = nil
	b.byLabel = nil
	b.general = nil
	b.specific = nil
	b.log.WithFields(logrus.Fields{
		"backend":   types.BackendMemory,
		"listeners": b.feed.Len(),
	}).Debug("store closed")
	return nil
}

func addID(m map[string]idSet, key string, id types.RecordID) {
	s, ok := m[key]
	if !ok {
		s = make(idSet)
		m[key] = s
	}
	s[id] = struct{}{}
}

func removeID(m map[string]idSet, key string, id types.RecordID) {
	s := m[key]
	delete(s, id)
	if len(s) == 0 {
		delete(m, key)
	}
}

func addBacklink[K comparable](m map[K]backlinkSet, key K, bl types.Backlink) {
	s, ok := m[key]
	if !ok {
		s = make(backlinkSet)
		m[key] = s
	}
	s[bl] = struct{}{}
}

func removeBacklink[K comparable](m map[K]backlinkSet, key K, bl types.Backlink) {
	s := m[key]
	delete(s, bl)
	if len(s) == 0 {
		delete(m, key)
	}
}

// sortedBacklinks orders a set by source, then position.
func sortedBacklinks(s backlinkSet) []types.Backlink {
	out := make([]types.Backlink, 0, len(s))
	for bl := range s {
		out = append(out, bl)
	}
	slices.SortFunc(out, func(a, b types.Backlink) int {
		if c := cmp.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})
	return out
}
