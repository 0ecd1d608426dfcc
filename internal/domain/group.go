package domain

import "time"

type GroupID string

// ChatGroup is a persistent named group for the chat relay.
// Joining requires the invite token; membership gates topic access.
type ChatGroup struct {
	ID        GroupID         `json:"id"`
	Name      string          `json:"name"`
	Token     string          `json:"token"`
	Members   map[UserID]bool `json:"members"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (g *ChatGroup) AddMember(id UserID) {
	if g.Members == nil {
		g.Members = make(map[UserID]bool)
	}
	g.Members[id] = true
}

func (g *ChatGroup) RemoveMember(id UserID) {
	delete(g.Members, id)
}

func (g *ChatGroup) HasMember(id UserID) bool {
	return g.Members[id]
}
