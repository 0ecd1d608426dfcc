package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeflow/signaling/internal/core"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sid core.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.Orch.OnDisconnect(sid)
		cancel()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleMessage(sid, c, data)
		}
	}
}

// handleMessage parses one frame and dispatches by type. A frame that
// cannot be parsed, or of an unknown type, is logged and dropped; the
// connection always survives.
func (ctl *SignalWSController) handleMessage(sid core.SessionID, c core.SignalConnection, data []byte) {
	env, err := ParseEnvelope(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("malformed envelope, dropping")
		return
	}

	switch env.Type {
	case "user_online":
		ctl.handleUserOnline(sid, c, env)
	case "ping":
		ctl.handlePing(c)
	case "connection_request", "connection_accepted", "connection_rejected",
		"offer", "answer", "ice_candidate", "ice-candidate",
		"logout_notification":
		ctl.handleRelay(sid, env)
	case "create_room":
		ctl.handleCreateRoom(sid, env)
	case "request_join":
		ctl.handleRequestJoin(sid, env)
	case "approve_join":
		ctl.handleApproveJoin(sid, env)
	case "reject_join":
		ctl.handleRejectJoin(sid, env)
	case "toggle_media":
		ctl.handleToggleMedia(sid, env)
	case "remove_participant":
		ctl.handleRemoveParticipant(sid, env)
	case "leave_room":
		ctl.handleLeaveRoom(sid, env)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}
