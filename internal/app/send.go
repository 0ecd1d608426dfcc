package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/freeflow/signaling/internal/core"
	"github.com/freeflow/signaling/internal/domain"
)

// outEvent is the nested wire shape room notifications go out in.
type outEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// sendTo marshals v and delivers it best-effort to one user. An offline
// target or a full send buffer means the message is dropped; no error is
// ever surfaced back to the original sender.
func (o *Orchestrator) sendTo(id domain.UserID, v any) bool {
	conn, ok := o.Registry.Lookup(id)
	if !ok {
		log.Debug().Str("module", "app.send").Str("user", string(id)).Msg("target not online, dropping")
		return false
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.send").Msg("marshal")
		return false
	}
	if err := conn.TrySend(core.Frame(b)); err != nil {
		log.Warn().Err(err).Str("module", "app.send").Str("user", string(id)).Msg("send failed, dropping")
		return false
	}
	return true
}

// sendRaw forwards an inbound frame untouched.
func (o *Orchestrator) sendRaw(id domain.UserID, frame core.Frame) bool {
	conn, ok := o.Registry.Lookup(id)
	if !ok {
		log.Debug().Str("module", "app.send").Str("user", string(id)).Msg("target not online, dropping")
		return false
	}
	if err := conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app.send").Str("user", string(id)).Msg("forward failed, dropping")
		return false
	}
	return true
}

// broadcastRoom delivers v to every current participant except `except`.
// A failed delivery to one participant never aborts the rest.
func (o *Orchestrator) broadcastRoom(room core.RoomService, v any, except domain.UserID) {
	for _, id := range room.ParticipantIDs() {
		if id == except {
			continue
		}
		o.sendTo(id, v)
	}
}

// BroadcastPresence pushes the online-users snapshot to every live
// connection, registered room member or not.
func (o *Orchestrator) BroadcastPresence() {
	payload := struct {
		Type  string             `json:"type"`
		Users []core.PresenceDTO `json:"users"`
	}{
		Type:  "online_users",
		Users: o.Registry.Snapshot(),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.send").Msg("marshal presence")
		return
	}
	for _, conn := range o.Registry.Connections() {
		if err := conn.TrySend(core.Frame(b)); err != nil {
			log.Warn().Err(err).Str("module", "app.send").Msg("presence send failed, continuing")
		}
	}
}
