package app

import (
	"sync"

	"github.com/freeflow/signaling/internal/core"
	"github.com/freeflow/signaling/internal/domain"
)

// Rooms maps room ids to live rooms and keeps the inverse membership
// index (user -> room, at most one). The index is maintained strictly as
// the inverse of the rooms' participant sets: binding a user removes any
// prior binding first.
type Rooms struct {
	mu       sync.RWMutex
	byID     map[domain.RoomID]core.RoomService
	memberOf map[domain.UserID]domain.RoomID
}

func NewRooms() *Rooms {
	return &Rooms{
		byID:     make(map[domain.RoomID]core.RoomService),
		memberOf: make(map[domain.UserID]domain.RoomID),
	}
}

// Put stores room under its id and reports whether a prior room with the
// same id was replaced. Callers decide what a replacement means; the
// store itself is last-writer-wins.
func (s *Rooms) Put(room core.RoomService) (replaced bool) {
	id := room.Meta().ID
	s.mu.Lock()
	defer s.mu.Unlock()
	_, replaced = s.byID[id]
	s.byID[id] = room
	return replaced
}

func (s *Rooms) Get(id domain.RoomID) (core.RoomService, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.byID[id]
	return room, ok
}

func (s *Rooms) Delete(id domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

// RoomOf resolves a user's current room, if any.
func (s *Rooms) RoomOf(id domain.UserID) (core.RoomService, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roomID, ok := s.memberOf[id]
	if !ok {
		return nil, false
	}
	room, ok := s.byID[roomID]
	return room, ok
}

// Bind points the membership index at roomID and returns the previous
// room the user was bound to, or "" if none. The caller is responsible
// for removing the user from the previous room's participant set.
func (s *Rooms) Bind(id domain.UserID, roomID domain.RoomID) (prev domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev = s.memberOf[id]
	s.memberOf[id] = roomID
	if prev == roomID {
		return ""
	}
	return prev
}

func (s *Rooms) Unbind(id domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memberOf, id)
}

// UnbindFrom clears the index entry only while it still points at
// roomID. A user already rebound to another room keeps that binding.
func (s *Rooms) UnbindFrom(id domain.UserID, roomID domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memberOf[id] == roomID {
		delete(s.memberOf, id)
	}
}
