package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeflow/signaling/internal/core"
	"github.com/freeflow/signaling/internal/domain"
	"github.com/freeflow/signaling/internal/storage"
)

type ChatWSController struct {
	Hub    *Hub
	Groups *storage.GroupStore
}

func NewChatWSController(hub *Hub, groups *storage.GroupStore) *ChatWSController {
	return &ChatWSController{Hub: hub, Groups: groups}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

var ErrBackpressure = errors.New("backpressure")

type chatConn struct {
	conn *websocket.Conn
	send chan core.Frame
}

func (c *chatConn) TrySend(f core.Frame) error {
	select {
	case c.send <- f:
		return nil
	default:
		return ErrBackpressure
	}
}

func (c *chatConn) Close() {
	_ = c.conn.Close()
}

// HandleChat subscribes an authorized group member to the group topic and
// relays their messages to it.
func (ctl *ChatWSController) HandleChat(ctx context.Context, c *gin.Context) {
	groupID := domain.GroupID(c.Query("groupId"))
	userID := domain.UserID(c.Query("userId"))
	if groupID == "" || userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "groupId and userId required"})
		return
	}
	if !ctl.Groups.IsMember(groupID, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a group member"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("ws upgrade")
		return
	}
	conn := &chatConn{conn: ws, send: make(chan core.Frame, 32)}
	unsubscribe := ctl.Hub.Subscribe(groupID, conn)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, groupID, userID, conn, unsubscribe)
}

func (ctl *ChatWSController) writePump(ctx context.Context, c *chatConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}

func (ctl *ChatWSController) readPump(ctx context.Context, cancel context.CancelFunc, groupID domain.GroupID, userID domain.UserID, c *chatConn, unsubscribe func()) {
	defer func() {
		unsubscribe()
		cancel()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "chat").Str("user", string(userID)).Msg("chat read error")
				return
			}
			var msg ChatMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Warn().Err(err).Str("module", "chat").Msg("bad chat payload, dropping")
				continue
			}
			// The subscription, not the payload, decides the topic.
			msg.GroupID = groupID
			msg.SenderID = userID
			if msg.Timestamp == 0 {
				msg.Timestamp = time.Now().UnixMilli()
			}
			ctl.Hub.Publish(msg)
		}
	}
}
