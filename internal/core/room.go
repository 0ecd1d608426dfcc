package core

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/freeflow/signaling/internal/domain"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	meta domain.Room

	mu           sync.RWMutex
	participants map[domain.UserID]string // id -> display name
	order        []domain.UserID
	active       bool
}

func NewRoomService(meta domain.Room) RoomService {
	return &roomImpl{
		meta:         meta,
		participants: make(map[domain.UserID]string),
		active:       true,
	}
}

func (r *roomImpl) Meta() domain.Room { return r.meta }

func (r *roomImpl) Active() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

func (r *roomImpl) ParticipantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

func (r *roomImpl) HasParticipant(id domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.participants[id]
	return ok
}

func (r *roomImpl) Participants() []ParticipantDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *roomImpl) ParticipantIDs() []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.UserID(nil), r.order...)
}

func (r *roomImpl) AddParticipant(id domain.UserID, name string) []ParticipantDTO {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := r.snapshotLocked()
	if _, ok := r.participants[id]; !ok {
		r.order = append(r.order, id)
	}
	r.participants[id] = name
	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Str("user", string(id)).Msg("participant added")
	return existing
}

func (r *roomImpl) RemoveParticipant(id domain.UserID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.participants[id]; ok {
		delete(r.participants, id)
		r.order = lo.Without(r.order, id)
		log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Str("user", string(id)).Msg("participant removed")
	}
	return len(r.participants)
}

func (r *roomImpl) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Msg("room closed")
}

func (r *roomImpl) snapshotLocked() []ParticipantDTO {
	return lo.Map(r.order, func(id domain.UserID, _ int) ParticipantDTO {
		return ParticipantDTO{
			UserID:   id,
			UserName: r.participants[id],
			IsOwner:  id == r.meta.OwnerID,
		}
	})
}
