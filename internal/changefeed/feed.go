// Package changefeed holds the modification counter and change listeners
// shared by every dwitlit backend.
package changefeed

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

// Feed counts committed mutations and fans them out to listeners.
// The zero value is not usable; call New.
type Feed struct {
	version atomic.Uint64

	mu        sync.Mutex
	listeners map[types.ListenerID]types.ChangeListener

	log *logrus.Logger
}

// New returns an empty feed at version 0.
func New(log *logrus.Logger) *Feed {
	if log == nil {
		log = logrus.New()
	}
	return &Feed{
		listeners: make(map[types.ListenerID]types.ChangeListener),
		log:       log,
	}
}

// Version returns the number of committed mutations so far.
func (f *Feed) Version() uint64 {
	return f.version.Load()
}

// Bump records one committed mutation. Iterators stamped with the previous
// version become stale immediately.
func (f *Feed) Bump() {
	f.version.Add(1)
}

// Add registers l under a fresh UUID v7 handle.
func (f *Feed) Add(l types.ChangeListener) types.ListenerID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	f.mu.Lock()
	f.listeners[id] = l
	f.mu.Unlock()
	return id
}

// Remove unregisters the listener with the given handle.
func (f *Feed) Remove(id types.ListenerID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.listeners[id]; !ok {
		return false
	}
	delete(f.listeners, id)
	return true
}

// Len returns the number of registered listeners.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// Notify calls every registered listener. Call it after the mutation is
// committed and the backend lock is released. A panicking listener is
// logged and skipped; the others still run.
func (f *Feed) Notify() {
	f.mu.Lock()
	snapshot := make(map[types.ListenerID]types.ChangeListener, len(f.listeners))
	for id, l := range f.listeners {
		snapshot[id] = l
	}
	f.mu.Unlock()

	version := f.Version()
	for id, l := range snapshot {
		f.call(id, l, version)
	}
}

func (f *Feed) call(id types.ListenerID, l types.ChangeListener, version uint64) {
	defer func() {
		if r := recover(); r != nil {
			f.log.WithFields(logrus.Fields{
				"listener": id.String(),
				"version":  version,
				"panic":    r,
			}).Error("change listener panicked")
		}
	}()
	l.Notify()
}
