// Package chat is the group-chat relay: a topic per group, best-effort
// fan-out of chat text to all current subscribers. It never feeds into
// the signaling core and keeps no history.
package chat

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/freeflow/signaling/internal/core"
	"github.com/freeflow/signaling/internal/domain"
)

type ChatMessage struct {
	GroupID    domain.GroupID `json:"groupId"`
	SenderID   domain.UserID  `json:"senderId"`
	SenderName string         `json:"senderName"`
	Content    string         `json:"content"`
	Timestamp  int64          `json:"timestamp"`
}

type Hub struct {
	mu     sync.RWMutex
	topics map[domain.GroupID]map[core.SignalConnection]bool
}

func NewHub() *Hub {
	return &Hub{topics: make(map[domain.GroupID]map[core.SignalConnection]bool)}
}

// Subscribe adds conn to the group's topic and returns the detach func.
func (h *Hub) Subscribe(id domain.GroupID, conn core.SignalConnection) func() {
	h.mu.Lock()
	subs, ok := h.topics[id]
	if !ok {
		subs = make(map[core.SignalConnection]bool)
		h.topics[id] = subs
	}
	subs[conn] = true
	h.mu.Unlock()
	log.Info().Str("module", "chat.hub").Str("group", string(id)).Msg("subscribed")

	return func() {
		h.mu.Lock()
		if subs, ok := h.topics[id]; ok {
			delete(subs, conn)
			if len(subs) == 0 {
				delete(h.topics, id)
			}
		}
		h.mu.Unlock()
		log.Info().Str("module", "chat.hub").Str("group", string(id)).Msg("unsubscribed")
	}
}

// Publish fans the message out to every current topic subscriber,
// sender included. A slow subscriber is skipped, not retried.
func (h *Hub) Publish(msg ChatMessage) {
	b, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "chat.hub").Msg("marshal")
		return
	}
	h.mu.RLock()
	subs := make([]core.SignalConnection, 0, len(h.topics[msg.GroupID]))
	for conn := range h.topics[msg.GroupID] {
		subs = append(subs, conn)
	}
	h.mu.RUnlock()

	for _, conn := range subs {
		if err := conn.TrySend(core.Frame(b)); err != nil {
			log.Warn().Err(err).Str("module", "chat.hub").Str("group", string(msg.GroupID)).Msg("publish send failed, continuing")
		}
	}
}

// SubscriberCount reports the current topic size, for tests and ops.
func (h *Hub) SubscriberCount(id domain.GroupID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[id])
}
