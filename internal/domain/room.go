package domain

import "time"

type (
	RoomID   string
	RoomName string
)

// Room is the immutable metadata of a multi-party call.
// Participants live in the room service, not here.
type Room struct {
	ID        RoomID
	Name      RoomName
	OwnerID   UserID
	OwnerName string
	CreatedAt time.Time
}
