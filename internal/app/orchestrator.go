package app

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeflow/signaling/internal/core"
	"github.com/freeflow/signaling/internal/domain"
)

// Orchestrator wires presence and rooms into the signaling state machine.
// Adapters parse frames and call in; the orchestrator mutates state and
// pushes the resulting notifications through the registry's connections.
type Orchestrator struct {
	Registry *Registry
	Rooms    *Rooms

	// transitions serializes every compound membership change, so the
	// participant sets and the membership index never diverge when an
	// approval races a disconnect.
	transitions sync.Mutex
}

func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		Registry: NewRegistry(),
		Rooms:    NewRooms(),
	}
}

// Announce registers the user behind sid and pushes a fresh presence
// snapshot to everyone.
func (o *Orchestrator) Announce(sid core.SessionID, id domain.UserID, name string, conn core.SignalConnection) {
	o.Registry.Register(sid, id, name, conn)
	o.BroadcastPresence()
}

// Relay forwards the original envelope verbatim to target, at most once.
func (o *Orchestrator) Relay(target domain.UserID, frame core.Frame) {
	o.sendRaw(target, frame)
}

// CreateRoom opens a room with the owner as sole participant and confirms
// back to the owner. A colliding room id silently replaces the previous
// room; Put reports it so this stays observable.
func (o *Orchestrator) CreateRoom(roomID domain.RoomID, roomName domain.RoomName, ownerID domain.UserID, ownerName string) {
	o.transitions.Lock()
	defer o.transitions.Unlock()

	room := core.NewRoomService(domain.Room{
		ID:        roomID,
		Name:      roomName,
		OwnerID:   ownerID,
		OwnerName: ownerName,
		CreatedAt: time.Now(),
	})
	room.AddParticipant(ownerID, ownerName)
	if replaced := o.Rooms.Put(room); replaced {
		log.Warn().Str("module", "app.orch").Str("room", string(roomID)).Msg("room id collision, previous room replaced")
	}
	if prev := o.Rooms.Bind(ownerID, roomID); prev != "" {
		o.detachFrom(prev, ownerID)
	}
	log.Info().Str("module", "app.orch").Str("room", string(roomID)).Str("owner", string(ownerID)).Msg("room created")
	o.sendTo(ownerID, outEvent{Type: "room_created", Data: map[string]any{
		"roomId":   roomID,
		"roomName": roomName,
	}})
}

// RequestJoin forwards a single-shot join request to the room owner, or
// rejects immediately when the room is gone. Room state is untouched; a
// request the owner never answers simply has no further effect.
func (o *Orchestrator) RequestJoin(roomID domain.RoomID, userID domain.UserID, userName string) {
	room, ok := o.Rooms.Get(roomID)
	if !ok || !room.Active() {
		o.sendTo(userID, outEvent{Type: "join_rejected", Data: map[string]any{
			"roomId": roomID,
			"reason": "room not found",
		}})
		return
	}
	meta := room.Meta()
	o.sendTo(meta.OwnerID, outEvent{Type: "join_request", Data: map[string]any{
		"roomId":    roomID,
		"userId":    userID,
		"userName":  userName,
		"timestamp": time.Now().UnixMilli(),
	}})
}

// ApproveJoin admits the user: membership index update (dropping any prior
// room), participant insert, reply to the approved user with the room
// metadata plus whoever was already there, then user_joined to the rest.
// The display name comes from presence; a user with no entry joins with
// an empty name.
func (o *Orchestrator) ApproveJoin(roomID domain.RoomID, userID domain.UserID) {
	o.transitions.Lock()
	defer o.transitions.Unlock()

	room, ok := o.Rooms.Get(roomID)
	if !ok || !room.Active() {
		log.Warn().Str("module", "app.orch").Str("room", string(roomID)).Msg("approve for missing room, ignoring")
		return
	}
	name := o.Registry.NameOf(userID)
	if prev := o.Rooms.Bind(userID, roomID); prev != "" {
		o.detachFrom(prev, userID)
	}
	existing := room.AddParticipant(userID, name)
	meta := room.Meta()
	o.sendTo(userID, outEvent{Type: "join_approved", Data: map[string]any{
		"roomId":               meta.ID,
		"roomName":             meta.Name,
		"ownerId":              meta.OwnerID,
		"ownerName":            meta.OwnerName,
		"existingParticipants": existing,
	}})
	o.broadcastRoom(room, outEvent{Type: "user_joined", Data: map[string]any{
		"userId":   userID,
		"userName": name,
	}}, userID)
}

// RejectJoin answers the requester; room state is untouched.
func (o *Orchestrator) RejectJoin(roomID domain.RoomID, userID domain.UserID) {
	o.sendTo(userID, outEvent{Type: "join_rejected", Data: map[string]any{
		"roomId": roomID,
		"reason": "rejected by owner",
	}})
}

// LeaveRoom removes the user from the room's participant set. An owner
// leaving this way is treated like anyone else: the room stays up,
// ownerless, until it empties. Only a disconnect closes it outright.
func (o *Orchestrator) LeaveRoom(roomID domain.RoomID, userID domain.UserID) {
	o.transitions.Lock()
	defer o.transitions.Unlock()
	o.detachFrom(roomID, userID)
}

// RemoveParticipant evicts the user: the room hears user_left, the evicted
// user is separately told removed_from_room.
func (o *Orchestrator) RemoveParticipant(roomID domain.RoomID, userID domain.UserID) {
	o.transitions.Lock()
	defer o.transitions.Unlock()
	if !o.detachFrom(roomID, userID) {
		return
	}
	o.sendTo(userID, outEvent{Type: "removed_from_room", Data: map[string]any{
		"roomId": roomID,
	}})
}

// ToggleMedia rebroadcasts the opaque media payload to every participant,
// sender included. No state changes hands.
func (o *Orchestrator) ToggleMedia(roomID domain.RoomID, data json.RawMessage) {
	if roomID == "" {
		return
	}
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return
	}
	o.broadcastRoom(room, outEvent{Type: "media_toggle", Data: data}, "")
}

// OnDisconnect is the lifecycle cascade: presence entry gone, room
// membership gone, and if the departing user owned a room, the whole room
// goes with them. Everyone gets an updated presence snapshot either way.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	o.transitions.Lock()
	defer o.transitions.Unlock()
	if id, ok := o.Registry.Unregister(sid); ok {
		if room, ok := o.Rooms.RoomOf(id); ok {
			if room.Meta().OwnerID == id {
				o.closeRoom(room, id)
			} else {
				o.detachFrom(room.Meta().ID, id)
			}
		}
	}
	o.BroadcastPresence()
}

// detachFrom drops the user from a room's participant set and index,
// notifies the remaining participants, and deletes the room once empty.
// Reports whether the user was actually a participant.
// Caller holds transitions.
func (o *Orchestrator) detachFrom(roomID domain.RoomID, userID domain.UserID) bool {
	room, ok := o.Rooms.Get(roomID)
	if !ok || !room.HasParticipant(userID) {
		return false
	}
	remaining := room.RemoveParticipant(userID)
	// The user may already be bound to the room they moved to; only a
	// binding still pointing here is cleared.
	o.Rooms.UnbindFrom(userID, roomID)
	if remaining == 0 {
		o.Rooms.Delete(roomID)
		log.Info().Str("module", "app.orch").Str("room", string(roomID)).Msg("last participant left, room deleted")
		return true
	}
	o.broadcastRoom(room, outEvent{Type: "user_left", Data: map[string]any{
		"userId": userID,
	}}, userID)
	return true
}

// closeRoom handles owner departure by disconnect: the room is closed,
// everyone left inside hears user_left for the owner then room_closed,
// and all remaining memberships are cleared.
// Caller holds transitions.
func (o *Orchestrator) closeRoom(room core.RoomService, ownerID domain.UserID) {
	meta := room.Meta()
	room.Close()
	room.RemoveParticipant(ownerID)
	o.Rooms.UnbindFrom(ownerID, meta.ID)
	o.broadcastRoom(room, outEvent{Type: "user_left", Data: map[string]any{
		"userId": ownerID,
	}}, ownerID)
	o.broadcastRoom(room, outEvent{Type: "room_closed", Data: map[string]any{
		"roomId": meta.ID,
	}}, ownerID)
	for _, id := range room.ParticipantIDs() {
		o.Rooms.UnbindFrom(id, meta.ID)
	}
	o.Rooms.Delete(meta.ID)
	log.Info().Str("module", "app.orch").Str("room", string(meta.ID)).Msg("owner disconnected, room closed")
}
