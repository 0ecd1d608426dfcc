package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/freeflow/signaling/internal/core"
	"github.com/freeflow/signaling/internal/domain"
)

// Room-family handlers: pull the required fields out of either message
// shape, drop the single frame when one is missing, and hand off to the
// orchestrator. No handler error ever touches the connection.

func (ctl *SignalWSController) handleCreateRoom(sid core.SessionID, env *Envelope) {
	roomID, roomName := env.Room(), env.RoomDisplayName()
	ownerID, ownerName := env.Owner(), env.OwnerDisplayName()
	if roomID == "" || ownerID == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("create_room missing roomId/ownerId, dropping")
		return
	}
	ctl.Orch.CreateRoom(domain.RoomID(roomID), domain.RoomName(roomName), domain.UserID(ownerID), ownerName)
}

func (ctl *SignalWSController) handleRequestJoin(sid core.SessionID, env *Envelope) {
	roomID, userID := env.Room(), env.User()
	if roomID == "" || userID == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("request_join missing roomId/userId, dropping")
		return
	}
	if !ctl.joinLimiter.Allow(domain.UserID(userID)) {
		log.Warn().Str("module", "signal").Str("user", userID).Msg("join request rate limited, dropping")
		return
	}
	ctl.Orch.RequestJoin(domain.RoomID(roomID), domain.UserID(userID), env.DisplayName())
}

func (ctl *SignalWSController) handleApproveJoin(sid core.SessionID, env *Envelope) {
	roomID, userID := env.Room(), env.User()
	if roomID == "" || userID == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("approve_join missing roomId/userId, dropping")
		return
	}
	ctl.Orch.ApproveJoin(domain.RoomID(roomID), domain.UserID(userID))
}

func (ctl *SignalWSController) handleRejectJoin(sid core.SessionID, env *Envelope) {
	roomID, userID := env.Room(), env.User()
	if roomID == "" || userID == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("reject_join missing roomId/userId, dropping")
		return
	}
	ctl.Orch.RejectJoin(domain.RoomID(roomID), domain.UserID(userID))
}

func (ctl *SignalWSController) handleToggleMedia(sid core.SessionID, env *Envelope) {
	roomID := env.Room()
	if roomID == "" {
		// Silent no-op when the payload carries no room identity.
		return
	}
	ctl.Orch.ToggleMedia(domain.RoomID(roomID), env.Data)
}

func (ctl *SignalWSController) handleRemoveParticipant(sid core.SessionID, env *Envelope) {
	roomID, userID := env.Room(), env.User()
	if roomID == "" || userID == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("remove_participant missing roomId/userId, dropping")
		return
	}
	ctl.Orch.RemoveParticipant(domain.RoomID(roomID), domain.UserID(userID))
}

func (ctl *SignalWSController) handleLeaveRoom(sid core.SessionID, env *Envelope) {
	roomID, userID := env.Room(), env.User()
	if roomID == "" || userID == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("leave_room missing roomId/userId, dropping")
		return
	}
	ctl.Orch.LeaveRoom(domain.RoomID(roomID), domain.UserID(userID))
}
