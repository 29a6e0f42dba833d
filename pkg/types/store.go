package types

import (
	"errors"

	"github.com/google/uuid"
)

// Store is the contract every dwitlit backend satisfies. Backends differ only
// in how they hold data; the shared conformance suite asserts identical
// observable behavior.
//
// Operations that address a missing record return ErrNotFound. Create and
// Remove report expected rejections through ErrRejectedReference, ErrCycle
// and ErrHasBacklinks; those leave the store untouched.
type Store interface {
	// Create stores a record and returns its ID. If a record with the same
	// label, links and payload already exists its ID is returned instead,
	// and its confirmed flag is overwritten when confirmed is non-nil.
	// A nil confirmed defaults to false for new records.
	//
	// Returns an error wrapping ErrInvalidIdentifier when the label or a
	// link label is not a valid identifier, ErrRejectedReference when a
	// specific link targets a missing record, and ErrCycle when a specific
	// link would close a cycle.
	Create(label string, links []Link, payload []byte, confirmed *bool) (RecordID, error)

	// Get returns a copy of the record with the given ID.
	Get(id RecordID) (Record, error)

	// Remove deletes the record and all links it owns. Returns
	// ErrHasBacklinks if any specific link targets the record.
	Remove(id RecordID) error

	// SetConfirmed sets the confirmed flag. Listeners are notified only
	// when the value changes.
	SetConfirmed(id RecordID, confirmed bool) error

	// ListRecords iterates all record IDs in ascending order.
	ListRecords() (*Iterator[RecordID], error)

	// ListLinks iterates the link list of a record in order.
	ListLinks(id RecordID) (*Iterator[Link], error)

	// ListRecordsByLabel iterates the IDs of records with the given label
	// in ascending order.
	ListRecordsByLabel(label string) (*Iterator[RecordID], error)

	// ListGeneralBacklinks iterates general links whose label equals
	// label, ordered by source and position.
	ListGeneralBacklinks(label string) (*Iterator[Backlink], error)

	// ListSpecificBacklinks iterates specific links that target id,
	// ordered by source and position.
	ListSpecificBacklinks(id RecordID) (*Iterator[Backlink], error)

	// AddChangeListener registers l and returns the handle that removes it.
	AddChangeListener(l ChangeListener) ListenerID

	// RemoveChangeListener unregisters a listener. Returns false if the
	// handle is unknown.
	RemoveChangeListener(id ListenerID) bool

	// Version returns the modification counter. It increases by exactly one
	// on every committed mutation.
	Version() uint64

	// Close releases backend resources. Idempotent. Every other operation
	// returns ErrClosed afterwards.
	Close() error
}

// ChangeListener is notified synchronously after every committed mutation.
type ChangeListener interface {
	Notify()
}

// ListenerFunc adapts an ordinary function to ChangeListener.
type ListenerFunc func()

// Notify calls f.
func (f ListenerFunc) Notify() { f() }

// ListenerID is the handle returned by AddChangeListener. Listeners are held
// by handle, so registering the same function twice yields two entries.
type ListenerID = uuid.UUID

// Store operation errors.
var (
	ErrInvalidIdentifier   = errors.New("invalid identifier")
	ErrRejectedReference   = errors.New("specific link target does not exist")
	ErrCycle               = errors.New("specific link would create a cycle")
	ErrHasBacklinks        = errors.New("record is the target of specific links")
	ErrNotFound            = errors.New("record not found")
	ErrIteratorInvalidated = errors.New("store modified during iteration")
	ErrClosed              = errors.New("store is closed")
)
