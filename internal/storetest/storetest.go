// Package storetest is the conformance suite every types.Store backend must
// pass. Backends call Run from their own tests with a factory that returns a
// fresh, empty store.
package storetest

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

// Factory returns an empty store. The suite closes it when the test ends.
type Factory func(t *testing.T) types.Store

// Run executes the full suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	open := func(t *testing.T) types.Store {
		t.Helper()
		s := newStore(t)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}

	tests := []struct {
		name string
		fn   func(t *testing.T, s types.Store)
	}{
		{"FirstRecordGetsIDZero", testFirstRecordGetsIDZero},
		{"CreateIsIdempotent", testCreateIsIdempotent},
		{"IdentityKeyDistinguishes", testIdentityKeyDistinguishes},
		{"NilAndEmptyPayloadAreEqual", testNilAndEmptyPayloadAreEqual},
		{"FlagOverride", testFlagOverride},
		{"NilFlagKeepsExisting", testNilFlagKeepsExisting},
		{"InvalidIdentifier", testInvalidIdentifier},
		{"ReferentialGate", testReferentialGate},
		{"SelfReferenceIsImpossible", testSelfReferenceIsImpossible},
		{"DeletionGate", testDeletionGate},
		{"RemoveMissing", testRemoveMissing},
		{"IDsAreNeverReused", testIDsAreNeverReused},
		{"RejectedCreateConsumesNoID", testRejectedCreateConsumesNoID},
		{"SpecificBacklinkScenario", testSpecificBacklinkScenario},
		{"BacklinkSymmetry", testBacklinkSymmetry},
		{"BacklinksFollowRemoval", testBacklinksFollowRemoval},
		{"ListLinksKeepsOrder", testListLinksKeepsOrder},
		{"ListRecordsByLabel", testListRecordsByLabel},
		{"MissingRecordLookups", testMissingRecordLookups},
		{"GetReturnsCopy", testGetReturnsCopy},
		{"SetConfirmed", testSetConfirmed},
		{"IteratorInvalidation", testIteratorInvalidation},
		{"IteratorSurvivesNoOps", testIteratorSurvivesNoOps},
		{"VersionCountsMutations", testVersionCountsMutations},
		{"Listeners", testListeners},
		{"ListenerPanicIsContained", testListenerPanicIsContained},
		{"ListenerCanReadStore", testListenerCanReadStore},
		{"Close", testClose},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, open(t))
		})
	}
}

func recordIDs(t *testing.T, s types.Store) []types.RecordID {
	t.Helper()
	it, err := s.ListRecords()
	require.NoError(t, err)
	ids, err := it.Collect()
	require.NoError(t, err)
	return ids
}

func mustCreate(t *testing.T, s types.Store, label string, links []types.Link, payload []byte, confirmed *bool) types.RecordID {
	t.Helper()
	id, err := s.Create(label, links, payload, confirmed)
	require.NoError(t, err)
	return id
}

func testFirstRecordGetsIDZero(t *testing.T, s types.Store) {
	id := mustCreate(t, s, "a", nil, []byte{1, 2, 3}, types.Bool(true))
	assert.Equal(t, types.RecordID(0), id)

	rec, err := s.Get(0)
	require.NoError(t, err)
	assert.Equal(t, types.Record{
		ID:        0,
		Label:     "a",
		Links:     []types.Link{},
		Payload:   []byte{1, 2, 3},
		Confirmed: true,
	}, rec)
}

func testCreateIsIdempotent(t *testing.T, s types.Store) {
	target := mustCreate(t, s, "t", nil, nil, nil)

	cases := []struct {
		name    string
		label   string
		links   []types.Link
		payload []byte
	}{
		{"bare", "x", nil, nil},
		{"payload", "x", nil, []byte("hello")},
		{"general link", "x", []types.Link{types.GeneralLink("t")}, nil},
		{"specific link", "x", []types.Link{types.SpecificLink("t", target)}, []byte{0}},
		{"mixed links", "y", []types.Link{types.GeneralLink("a"), types.SpecificLink("t", target)}, []byte{9}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := len(recordIDs(t, s))
			first := mustCreate(t, s, tc.label, tc.links, tc.payload, nil)
			second := mustCreate(t, s, tc.label, tc.links, tc.payload, nil)
			assert.Equal(t, first, second)
			assert.Len(t, recordIDs(t, s), before+1)
		})
	}
}

func testIdentityKeyDistinguishes(t *testing.T, s types.Store) {
	target := mustCreate(t, s, "t", nil, nil, nil)
	other := mustCreate(t, s, "t", nil, []byte{1}, nil)

	variants := []struct {
		label   string
		links   []types.Link
		payload []byte
	}{
		{"k", nil, nil},
		{"k2", nil, nil},
		{"k", nil, []byte{1}},
		{"k", []types.Link{types.GeneralLink("a")}, nil},
		{"k", []types.Link{types.GeneralLink("b")}, nil},
		{"k", []types.Link{types.GeneralLink("a"), types.GeneralLink("b")}, nil},
		{"k", []types.Link{types.GeneralLink("b"), types.GeneralLink("a")}, nil},
		{"k", []types.Link{types.GeneralLink("t")}, nil},
		{"k", []types.Link{types.SpecificLink("t", target)}, nil},
		{"k", []types.Link{types.SpecificLink("t", other)}, nil},
	}
	seen := map[types.RecordID]int{}
	for i, v := range variants {
		id := mustCreate(t, s, v.label, v.links, v.payload, nil)
		if prev, dup := seen[id]; dup {
			t.Fatalf("variant %d collapsed into variant %d", i, prev)
		}
		seen[id] = i
	}
}

func testNilAndEmptyPayloadAreEqual(t *testing.T, s types.Store) {
	a := mustCreate(t, s, "p", nil, nil, nil)
	b := mustCreate(t, s, "p", []types.Link{}, []byte{}, nil)
	assert.Equal(t, a, b)

	rec, err := s.Get(a)
	require.NoError(t, err)
	assert.NotNil(t, rec.Payload)
	assert.Empty(t, rec.Payload)
	assert.NotNil(t, rec.Links)
}

func testFlagOverride(t *testing.T, s types.Store) {
	first := mustCreate(t, s, "a", nil, []byte{1, 2, 3}, types.Bool(true))
	second := mustCreate(t, s, "a", nil, []byte{1, 2, 3}, types.Bool(false))
	assert.Equal(t, types.RecordID(0), first)
	assert.Equal(t, first, second)

	rec, err := s.Get(first)
	require.NoError(t, err)
	assert.False(t, rec.Confirmed)

	mustCreate(t, s, "a", nil, []byte{1, 2, 3}, types.Bool(true))
	rec, err = s.Get(first)
	require.NoError(t, err)
	assert.True(t, rec.Confirmed)
}

func testNilFlagKeepsExisting(t *testing.T, s types.Store) {
	id := mustCreate(t, s, "a", nil, nil, types.Bool(true))
	v := s.Version()

	assert.Equal(t, id, mustCreate(t, s, "a", nil, nil, nil))
	rec, err := s.Get(id)
	require.NoError(t, err)
	assert.True(t, rec.Confirmed)
	assert.Equal(t, v, s.Version())

	fresh := mustCreate(t, s, "b", nil, nil, nil)
	rec, err = s.Get(fresh)
	require.NoError(t, err)
	assert.False(t, rec.Confirmed)
}

func testInvalidIdentifier(t *testing.T, s types.Store) {
	cases := []struct {
		name  string
		label string
		links []types.Link
	}{
		{"space in label", "a b", nil},
		{"unicode label", "naïve", nil},
		{"colon in label", "a:b", nil},
		{"bad link label", "ok", []types.Link{types.GeneralLink("x!")}},
		{"bad second link", "ok", []types.Link{types.GeneralLink("fine"), types.GeneralLink("not fine")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Create(tc.label, tc.links, nil, nil)
			assert.ErrorIs(t, err, types.ErrInvalidIdentifier)
		})
	}
	assert.Empty(t, recordIDs(t, s))
	assert.Equal(t, uint64(0), s.Version())

	id, err := s.Create("", []types.Link{types.GeneralLink("")}, nil, nil)
	require.NoError(t, err, "empty identifiers are valid")
	assert.Equal(t, types.RecordID(0), id)
}

func testReferentialGate(t *testing.T, s types.Store) {
	mustCreate(t, s, "a", nil, nil, nil)
	before := recordIDs(t, s)
	v := s.Version()

	for _, missing := range []types.RecordID{1, 999, -1} {
		_, err := s.Create("b", []types.Link{types.SpecificLink("a", missing)}, nil, types.Bool(true))
		assert.ErrorIs(t, err, types.ErrRejectedReference, "target %d", missing)
	}
	assert.Equal(t, before, recordIDs(t, s))
	assert.Equal(t, v, s.Version())
}

func testSelfReferenceIsImpossible(t *testing.T, s types.Store) {
	// The next ID does not exist yet, so a record can never name itself.
	_, err := s.Create("loop", []types.Link{types.SpecificLink("loop", 0)}, nil, nil)
	assert.ErrorIs(t, err, types.ErrRejectedReference)

	a := mustCreate(t, s, "a", nil, nil, nil)
	_, err = s.Create("loop", []types.Link{types.SpecificLink("loop", a+1)}, nil, nil)
	assert.ErrorIs(t, err, types.ErrRejectedReference)
}

func testDeletionGate(t *testing.T, s types.Store) {
	x := mustCreate(t, s, "x", nil, nil, nil)
	y := mustCreate(t, s, "y", []types.Link{types.SpecificLink("x", x)}, nil, nil)
	z := mustCreate(t, s, "z", []types.Link{types.GeneralLink("x")}, nil, nil)
	v := s.Version()

	assert.ErrorIs(t, s.Remove(x), types.ErrHasBacklinks)
	assert.Equal(t, []types.RecordID{x, y, z}, recordIDs(t, s))
	assert.Equal(t, v, s.Version())

	require.NoError(t, s.Remove(y))
	require.NoError(t, s.Remove(x), "general links do not pin a record")
	_, err := s.Get(x)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.Get(y)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, []types.RecordID{z}, recordIDs(t, s))
}

func testRemoveMissing(t *testing.T, s types.Store) {
	assert.ErrorIs(t, s.Remove(0), types.ErrNotFound)
	id := mustCreate(t, s, "a", nil, nil, nil)
	require.NoError(t, s.Remove(id))
	assert.ErrorIs(t, s.Remove(id), types.ErrNotFound)
}

func testIDsAreNeverReused(t *testing.T, s types.Store) {
	a := mustCreate(t, s, "a", nil, nil, nil)
	b := mustCreate(t, s, "b", nil, nil, nil)
	require.NoError(t, s.Remove(b))

	c := mustCreate(t, s, "b", nil, nil, nil)
	assert.Equal(t, types.RecordID(0), a)
	assert.Equal(t, types.RecordID(1), b)
	assert.Equal(t, types.RecordID(2), c)
}

func testRejectedCreateConsumesNoID(t *testing.T, s types.Store) {
	mustCreate(t, s, "a", nil, nil, nil)
	_, err := s.Create("b", []types.Link{types.SpecificLink("a", 42)}, nil, nil)
	require.ErrorIs(t, err, types.ErrRejectedReference)
	_, err = s.Create("b c", nil, nil, nil)
	require.ErrorIs(t, err, types.ErrInvalidIdentifier)

	assert.Equal(t, types.RecordID(1), mustCreate(t, s, "b", nil, nil, nil))
}

func testSpecificBacklinkScenario(t *testing.T, s types.Store) {
	id1 := mustCreate(t, s, "n1", nil, []byte{1}, types.Bool(true))
	id2 := mustCreate(t, s, "n2", []types.Link{types.SpecificLink("n1", id1)}, []byte{2}, types.Bool(true))

	it, err := s.ListSpecificBacklinks(id1)
	require.NoError(t, err)
	got, err := it.Collect()
	require.NoError(t, err)
	assert.Equal(t, []types.Backlink{{Source: id2, Position: 0}}, got)
}

func testBacklinkSymmetry(t *testing.T, s types.Store) {
	a := mustCreate(t, s, "a", nil, nil, nil)
	b := mustCreate(t, s, "b", []types.Link{types.SpecificLink("a", a), types.GeneralLink("c")}, nil, nil)
	c := mustCreate(t, s, "c", []types.Link{
		types.GeneralLink("a"),
		types.SpecificLink("b", b),
		types.SpecificLink("a", a),
		types.GeneralLink("c"),
	}, nil, nil)
	mustCreate(t, s, "d", []types.Link{types.SpecificLink("a", a), types.SpecificLink("a", a)}, nil, nil)

	for _, id := range recordIDs(t, s) {
		rec, err := s.Get(id)
		require.NoError(t, err)
		for i, l := range rec.Links {
			want := types.Backlink{Source: id, Position: i}
			var it *types.Iterator[types.Backlink]
			if l.IsSpecific() {
				it, err = s.ListSpecificBacklinks(*l.Target)
			} else {
				it, err = s.ListGeneralBacklinks(l.Label)
			}
			require.NoError(t, err)
			got, err := it.Collect()
			require.NoError(t, err)
			assert.Contains(t, got, want, "record %d link %d", id, i)
		}
	}

	// And in the other direction: every backlink points at a matching link.
	it, err := s.ListGeneralBacklinks("c")
	require.NoError(t, err)
	general, err := it.Collect()
	require.NoError(t, err)
	assert.Equal(t, []types.Backlink{{Source: b, Position: 1}, {Source: c, Position: 3}}, general)

	it, err = s.ListSpecificBacklinks(a)
	require.NoError(t, err)
	specific, err := it.Collect()
	require.NoError(t, err)
	assert.Equal(t, []types.Backlink{
		{Source: b, Position: 0},
		{Source: c, Position: 2},
		{Source: c + 1, Position: 0},
		{Source: c + 1, Position: 1},
	}, specific)
}

func testBacklinksFollowRemoval(t *testing.T, s types.Store) {
	a := mustCreate(t, s, "a", nil, nil, nil)
	b := mustCreate(t, s, "b", []types.Link{types.SpecificLink("a", a), types.GeneralLink("g")}, nil, nil)
	require.NoError(t, s.Remove(b))

	it, err := s.ListSpecificBacklinks(a)
	require.NoError(t, err)
	got, err := it.Collect()
	require.NoError(t, err)
	assert.Empty(t, got)

	gen, err := s.ListGeneralBacklinks("g")
	require.NoError(t, err)
	assert.Zero(t, gen.Len())

	require.NoError(t, s.Remove(a))
}

func testListLinksKeepsOrder(t *testing.T, s types.Store) {
	a := mustCreate(t, s, "a", nil, nil, nil)
	links := []types.Link{
		types.GeneralLink("z"),
		types.SpecificLink("a", a),
		types.GeneralLink("b"),
		types.GeneralLink("z"),
	}
	id := mustCreate(t, s, "r", links, nil, nil)

	it, err := s.ListLinks(id)
	require.NoError(t, err)
	assert.Equal(t, 4, it.Len())
	got, err := it.Collect()
	require.NoError(t, err)
	assert.Equal(t, links, got)

	empty, err := s.ListLinks(a)
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
}

func testListRecordsByLabel(t *testing.T, s types.Store) {
	first := mustCreate(t, s, "item", nil, []byte{1}, nil)
	mustCreate(t, s, "other", nil, nil, nil)
	second := mustCreate(t, s, "item", nil, []byte{2}, nil)

	it, err := s.ListRecordsByLabel("item")
	require.NoError(t, err)
	got, err := it.Collect()
	require.NoError(t, err)
	assert.Equal(t, []types.RecordID{first, second}, got)

	it, err = s.ListRecordsByLabel("missing")
	require.NoError(t, err)
	got, err = it.Collect()
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Remove(first))
	it, err = s.ListRecordsByLabel("item")
	require.NoError(t, err)
	got, err = it.Collect()
	require.NoError(t, err)
	assert.Equal(t, []types.RecordID{second}, got)
}

func testMissingRecordLookups(t *testing.T, s types.Store) {
	_, err := s.Get(7)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.ListLinks(7)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.ListSpecificBacklinks(7)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, s.SetConfirmed(7, true), types.ErrNotFound)
}

func testGetReturnsCopy(t *testing.T, s types.Store) {
	a := mustCreate(t, s, "a", nil, nil, nil)
	links := []types.Link{types.SpecificLink("a", a)}
	payload := []byte{1, 2}
	id := mustCreate(t, s, "b", links, payload, nil)

	// Mutating caller-owned inputs must not reach the store.
	payload[0] = 9
	*links[0].Target = 99

	rec, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, rec.Payload)
	assert.Equal(t, a, *rec.Links[0].Target)

	rec.Payload[1] = 9
	*rec.Links[0].Target = 99
	rec.Links[0].Label = "zz"

	again, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, again.Payload)
	assert.Equal(t, types.SpecificLink("a", a), again.Links[0])
}

func testSetConfirmed(t *testing.T, s types.Store) {
	id := mustCreate(t, s, "a", nil, nil, nil)
	var calls atomic.Int32
	s.AddChangeListener(types.ListenerFunc(func() { calls.Add(1) }))

	require.NoError(t, s.SetConfirmed(id, false))
	assert.Zero(t, calls.Load(), "unchanged value does not notify")

	require.NoError(t, s.SetConfirmed(id, true))
	assert.Equal(t, int32(1), calls.Load())
	rec, err := s.Get(id)
	require.NoError(t, err)
	assert.True(t, rec.Confirmed)

	require.NoError(t, s.SetConfirmed(id, true))
	assert.Equal(t, int32(1), calls.Load())
}

func testIteratorInvalidation(t *testing.T, s types.Store) {
	for _, label := range []string{"a", "b", "c"} {
		mustCreate(t, s, label, nil, nil, nil)
	}

	mutations := []struct {
		name   string
		mutate func() error
	}{
		{"create", func() error { _, err := s.Create("d", nil, nil, nil); return err }},
		{"flag override", func() error { _, err := s.Create("d", nil, nil, types.Bool(true)); return err }},
		{"set confirmed", func() error { return s.SetConfirmed(0, true) }},
		{"remove", func() error { return s.Remove(1) }},
	}
	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			it, err := s.ListRecords()
			require.NoError(t, err)
			require.True(t, it.Next())

			require.NoError(t, m.mutate())

			assert.False(t, it.Next())
			assert.ErrorIs(t, it.Err(), types.ErrIteratorInvalidated)
			assert.False(t, it.Next(), "an invalidated iterator stays terminated")
		})
	}

	// Every iterator kind observes the same counter.
	links, err := s.ListLinks(0)
	require.NoError(t, err)
	labels, err := s.ListRecordsByLabel("a")
	require.NoError(t, err)
	general, err := s.ListGeneralBacklinks("x")
	require.NoError(t, err)
	specific, err := s.ListSpecificBacklinks(0)
	require.NoError(t, err)

	mustCreate(t, s, "e", nil, nil, nil)

	_, err = links.Collect()
	assert.ErrorIs(t, err, types.ErrIteratorInvalidated)
	_, err = labels.Collect()
	assert.ErrorIs(t, err, types.ErrIteratorInvalidated)
	_, err = general.Collect()
	assert.ErrorIs(t, err, types.ErrIteratorInvalidated)
	_, err = specific.Collect()
	assert.ErrorIs(t, err, types.ErrIteratorInvalidated)
}

func testIteratorSurvivesNoOps(t *testing.T, s types.Store) {
	a := mustCreate(t, s, "a", nil, nil, types.Bool(true))
	b := mustCreate(t, s, "b", []types.Link{types.SpecificLink("a", a)}, nil, nil)

	it, err := s.ListRecords()
	require.NoError(t, err)
	require.True(t, it.Next())

	// None of these change the store.
	mustCreate(t, s, "a", nil, nil, nil)
	mustCreate(t, s, "a", nil, nil, types.Bool(true))
	require.NoError(t, s.SetConfirmed(a, true))
	assert.ErrorIs(t, s.Remove(a), types.ErrHasBacklinks)
	_, err = s.Create("c", []types.Link{types.SpecificLink("a", 50)}, nil, nil)
	assert.ErrorIs(t, err, types.ErrRejectedReference)
	_, err = s.Get(b)
	require.NoError(t, err)

	require.True(t, it.Next())
	assert.Equal(t, b, it.Value())
	assert.False(t, it.Next())
	assert.NoError(t, it.Err())
}

func testVersionCountsMutations(t *testing.T, s types.Store) {
	assert.Equal(t, uint64(0), s.Version())
	id := mustCreate(t, s, "a", nil, nil, nil)
	assert.Equal(t, uint64(1), s.Version())
	mustCreate(t, s, "a", nil, nil, types.Bool(true))
	assert.Equal(t, uint64(2), s.Version())
	require.NoError(t, s.SetConfirmed(id, false))
	assert.Equal(t, uint64(3), s.Version())
	require.NoError(t, s.Remove(id))
	assert.Equal(t, uint64(4), s.Version())
}

func testListeners(t *testing.T, s types.Store) {
	var first, second atomic.Int32
	fn := func() { first.Add(1) }
	h1 := s.AddChangeListener(types.ListenerFunc(fn))
	h2 := s.AddChangeListener(types.ListenerFunc(fn))
	s.AddChangeListener(types.ListenerFunc(func() { second.Add(1) }))
	assert.NotEqual(t, h1, h2, "each registration gets its own handle")

	id := mustCreate(t, s, "a", nil, nil, nil)
	assert.Equal(t, int32(2), first.Load())
	assert.Equal(t, int32(1), second.Load())

	mustCreate(t, s, "a", nil, nil, nil)
	_, err := s.Create("b", []types.Link{types.SpecificLink("a", 9)}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), second.Load(), "no-ops and rejections are silent")

	assert.True(t, s.RemoveChangeListener(h1))
	assert.False(t, s.RemoveChangeListener(h1))

	require.NoError(t, s.Remove(id))
	assert.Equal(t, int32(3), first.Load())
	assert.Equal(t, int32(2), second.Load())
}

func testListenerPanicIsContained(t *testing.T, s types.Store) {
	var calls atomic.Int32
	s.AddChangeListener(types.ListenerFunc(func() { panic("boom") }))
	s.AddChangeListener(types.ListenerFunc(func() { calls.Add(1) }))

	id, err := s.Create("a", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	_, err = s.Get(id)
	assert.NoError(t, err, "the mutation stays committed")
}

func testListenerCanReadStore(t *testing.T, s types.Store) {
	var seen []types.RecordID
	s.AddChangeListener(types.ListenerFunc(func() {
		it, err := s.ListRecords()
		if err != nil {
			return
		}
		seen, _ = it.Collect()
	}))

	a := mustCreate(t, s, "a", nil, nil, nil)
	assert.Equal(t, []types.RecordID{a}, seen)
}

func testClose(t *testing.T, s types.Store) {
	id := mustCreate(t, s, "a", nil, nil, nil)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close is idempotent")

	checks := map[string]error{}
	_, checks["Create"] = s.Create("b", nil, nil, nil)
	_, checks["Get"] = s.Get(id)
	checks["Remove"] = s.Remove(id)
	checks["SetConfirmed"] = s.SetConfirmed(id, true)
	_, checks["ListRecords"] = s.ListRecords()
	_, checks["ListLinks"] = s.ListLinks(id)
	_, checks["ListRecordsByLabel"] = s.ListRecordsByLabel("a")
	_, checks["ListGeneralBacklinks"] = s.ListGeneralBacklinks("a")
	_, checks["ListSpecificBacklinks"] = s.ListSpecificBacklinks(id)
	for op, err := range checks {
		assert.True(t, errors.Is(err, types.ErrClosed), "%s after Close: %v", op, err)
	}
}
