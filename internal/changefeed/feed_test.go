package changefeed

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

func TestFeed_BumpThenNotify(t *testing.T) {
	f := New(nil)
	calls := 0
	f.Add(types.ListenerFunc(func() { calls++ }))

	assert.Equal(t, uint64(0), f.Version())
	f.Bump()
	f.Notify()
	f.Bump()
	f.Notify()
	assert.Equal(t, uint64(2), f.Version())
	assert.Equal(t, 2, calls)
}

func TestFeed_BumpDoesNotNotify(t *testing.T) {
	f := New(nil)
	calls := 0
	f.Add(types.ListenerFunc(func() { calls++ }))

	f.Bump()
	assert.Equal(t, uint64(1), f.Version())
	assert.Zero(t, calls)
}

func TestFeed_RemoveByHandle(t *testing.T) {
	f := New(nil)
	calls := 0
	fn := types.ListenerFunc(func() { calls++ })

	first := f.Add(fn)
	second := f.Add(fn)
	require.NotEqual(t, first, second, "each registration gets its own handle")
	assert.Equal(t, 2, f.Len())

	f.Bump()
	f.Notify()
	assert.Equal(t, 2, calls)

	assert.True(t, f.Remove(first))
	assert.False(t, f.Remove(first), "second removal of the same handle fails")

	f.Bump()
	f.Notify()
	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, f.Len())
}

func TestFeed_PanickingListenerIsContained(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	f := New(log)
	calls := 0
	f.Add(types.ListenerFunc(func() { panic("boom") }))
	f.Add(types.ListenerFunc(func() { calls++ }))

	require.NotPanics(t, func() { f.Bump(); f.Notify() })
	assert.Equal(t, 1, calls)
	assert.Equal(t, uint64(1), f.Version())
	assert.Contains(t, buf.String(), "change listener panicked")
}

func TestFeed_ListenerMayRegisterDuringNotify(t *testing.T) {
	f := New(nil)
	f.Add(types.ListenerFunc(func() {
		f.Add(types.ListenerFunc(func() {}))
	}))

	require.NotPanics(t, func() { f.Bump(); f.Notify() })
	assert.Equal(t, 2, f.Len())
}
