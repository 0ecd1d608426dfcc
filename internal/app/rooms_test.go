package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freeflow/signaling/internal/core"
	"github.com/freeflow/signaling/internal/domain"
)

func testRoom(id domain.RoomID, owner domain.UserID) core.RoomService {
	return core.NewRoomService(domain.Room{ID: id, OwnerID: owner})
}

func TestRoomsPutReportsReplacement(t *testing.T) {
	req := require.New(t)
	s := NewRooms()

	req.False(s.Put(testRoom("R1", "u1")))
	req.True(s.Put(testRoom("R1", "u2")))

	room, ok := s.Get("R1")
	req.True(ok)
	req.Equal(domain.UserID("u2"), room.Meta().OwnerID)
}

func TestRoomsBindReturnsPrevious(t *testing.T) {
	req := require.New(t)
	s := NewRooms()
	s.Put(testRoom("R1", "u1"))
	s.Put(testRoom("R2", "u1"))

	req.Equal(domain.RoomID(""), s.Bind("u2", "R1"))
	req.Equal(domain.RoomID("R1"), s.Bind("u2", "R2"))
	// Rebinding to the same room is not a move.
	req.Equal(domain.RoomID(""), s.Bind("u2", "R2"))

	room, ok := s.RoomOf("u2")
	req.True(ok)
	req.Equal(domain.RoomID("R2"), room.Meta().ID)

	s.Unbind("u2")
	_, ok = s.RoomOf("u2")
	req.False(ok)
}

func TestUnbindFromOnlyClearsMatchingEntry(t *testing.T) {
	req := require.New(t)
	s := NewRooms()
	s.Put(testRoom("R1", "u1"))
	s.Put(testRoom("R2", "u1"))
	s.Bind("u2", "R2")

	s.UnbindFrom("u2", "R1")
	room, ok := s.RoomOf("u2")
	req.True(ok)
	req.Equal(domain.RoomID("R2"), room.Meta().ID)

	s.UnbindFrom("u2", "R2")
	_, ok = s.RoomOf("u2")
	req.False(ok)
}

func TestRoomOfDanglingIndexEntry(t *testing.T) {
	req := require.New(t)
	s := NewRooms()
	s.Put(testRoom("R1", "u1"))
	s.Bind("u2", "R1")
	s.Delete("R1")

	_, ok := s.RoomOf("u2")
	req.False(ok)
}
