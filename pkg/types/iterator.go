package types

// Iterator walks a snapshot materialized when the iterator was opened.
// It remembers the store version at that moment; once the store changes,
// Next returns false and Err reports ErrIteratorInvalidated, even if
// elements remain. An iterator cannot be restarted.
//
//	it, err := store.ListRecords()
//	if err != nil { ... }
//	for it.Next() {
//	    id := it.Value()
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator[T any] struct {
	items   []T
	pos     int
	current T
	version uint64
	source  func() uint64
	err     error
	done    bool
}

// NewIterator returns an iterator over items, stamped with the value that
// version returns now. Backends pass their version accessor.
func NewIterator[T any](items []T, version func() uint64) *Iterator[T] {
	return &Iterator[T]{
		items:   items,
		version: version(),
		source:  version,
	}
}

// Next advances to the next element. It returns false when the snapshot is
// exhausted or the store was modified since the iterator was opened.
func (it *Iterator[T]) Next() bool {
	if it.done {
		return false
	}
	var zero T
	if it.source() != it.version {
		it.done = true
		it.err = ErrIteratorInvalidated
		it.current = zero
		return false
	}
	if it.pos >= len(it.items) {
		it.done = true
		it.current = zero
		return false
	}
	it.current = it.items[it.pos]
	it.pos++
	return true
}

// Value returns the element at the current position.
func (it *Iterator[T]) Value() T {
	return it.current
}

// Err returns ErrIteratorInvalidated if iteration stopped because the store
// changed, nil otherwise.
func (it *Iterator[T]) Err() error {
	return it.err
}

// Len returns the size of the snapshot.
func (it *Iterator[T]) Len() int {
	return len(it.items)
}

// Collect drains the iterator into a slice.
func (it *Iterator[T]) Collect() ([]T, error) {
	out := make([]T, 0, len(it.items)-it.pos)
	for it.Next() {
		out = append(out, it.Value())
	}
	return out, it.Err()
}
