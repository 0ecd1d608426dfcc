package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freeflow/signaling/internal/core"
)

func TestRegistrySnapshotTracksRegistrations(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()

	reg.Register("s1", "u1", "Alice", &fakeConn{})
	reg.Register("s2", "u2", "Bob", &fakeConn{})

	snap := reg.Snapshot()
	req.Equal([]core.PresenceDTO{
		{ID: "u1", Name: "Alice"},
		{ID: "u2", Name: "Bob"},
	}, snap)
}

func TestRegistryReannounceKeepsLatestName(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()

	reg.Register("s1", "u1", "Alice", &fakeConn{})
	reg.Register("s1", "u1", "Alicia", &fakeConn{})

	snap := reg.Snapshot()
	req.Len(snap, 1)
	req.Equal("Alicia", snap[0].Name)
}

func TestRegistryLastWriterWins(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()

	first := &fakeConn{}
	second := &fakeConn{}
	reg.Register("s1", "u1", "Alice", first)
	reg.Register("s2", "u1", "Alice", second)

	conn, ok := reg.Lookup("u1")
	req.True(ok)
	req.Same(second, conn.(*fakeConn))

	// The stale connection closing must not evict the fresh entry.
	_, removed := reg.Unregister("s1")
	req.False(removed)
	_, ok = reg.Lookup("u1")
	req.True(ok)

	id, removed := reg.Unregister("s2")
	req.True(removed)
	req.Equal("u1", string(id))
	_, ok = reg.Lookup("u1")
	req.False(ok)
}

func TestRegistryUnregisterUnknownSession(t *testing.T) {
	reg := NewRegistry()
	_, removed := reg.Unregister("nope")
	require.False(t, removed)
}

func TestRegistryNameOf(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	req.Equal("", reg.NameOf("ghost"))
	reg.Register("s1", "u1", "Alice", &fakeConn{})
	req.Equal("Alice", reg.NameOf("u1"))
}
