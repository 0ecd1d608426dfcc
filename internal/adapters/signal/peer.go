package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/freeflow/signaling/internal/core"
	"github.com/freeflow/signaling/internal/domain"
)

// handleUserOnline registers presence for the announced identity. The
// identity is trusted as given; announcing again, from this or any other
// connection, overwrites the previous entry. Both userId and userName
// are required; a frame missing either is dropped.
func (ctl *SignalWSController) handleUserOnline(sid core.SessionID, c core.SignalConnection, env *Envelope) {
	userID := env.User()
	name := env.DisplayName()
	if userID == "" || name == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("user_online missing userId/userName, dropping")
		return
	}
	ctl.Orch.Announce(sid, domain.UserID(userID), name, c)
}

func (ctl *SignalWSController) handlePing(c core.SignalConnection) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	b, err := json.Marshal(resp)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal pong")
		return
	}
	if err := c.TrySend(core.Frame(b)); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("pong dropped")
	}
}

// handleRelay forwards the whole original envelope to the target user if
// they are reachable. Unreachable targets drop the message silently; the
// sender is never told either way.
func (ctl *SignalWSController) handleRelay(sid core.SessionID, env *Envelope) {
	target := env.Target()
	if target == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("type", env.Type).Msg("relay without target, dropping")
		return
	}
	log.Debug().Str("module", "signal").Str("type", env.Type).Str("from", env.Sender()).Str("to", target).Msg("relaying")
	ctl.Orch.Relay(domain.UserID(target), env.Raw())
}
