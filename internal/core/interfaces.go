package core

import "github.com/freeflow/signaling/internal/domain"

// Frame is one raw text payload on the wire.
type Frame []byte

// SessionID identifies a transport connection before (and independent of)
// any announced user identity.
type SessionID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// ParticipantDTO is a read-only view of one room participant.
type ParticipantDTO struct {
	UserID   domain.UserID `json:"userId"`
	UserName string        `json:"userName"`
	IsOwner  bool          `json:"isOwner"`
}

// PresenceDTO is one entry of the online-users snapshot.
type PresenceDTO struct {
	ID   domain.UserID `json:"id"`
	Name string        `json:"name"`
}

// RoomService is the core-facing API of a room. It owns the participant
// set but never touches transport resources. All methods are safe for
// concurrent use; compound membership changes are serialized per room.
type RoomService interface {
	Meta() domain.Room
	Active() bool
	ParticipantCount() int
	Participants() []ParticipantDTO
	ParticipantIDs() []domain.UserID
	HasParticipant(id domain.UserID) bool

	// AddParticipant admits id and returns the participants that were
	// already present, captured atomically with the insert.
	AddParticipant(id domain.UserID, name string) (existing []ParticipantDTO)
	// RemoveParticipant drops id and reports how many remain.
	RemoveParticipant(id domain.UserID) (remaining int)
	// Close marks the room inactive; terminal.
	Close()
}
