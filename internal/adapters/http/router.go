package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freeflow/signaling/internal/adapters/chat"
	"github.com/freeflow/signaling/internal/adapters/signal"
	"github.com/freeflow/signaling/internal/app"
	"github.com/freeflow/signaling/internal/config"
	"github.com/freeflow/signaling/internal/storage"
)

// ClientTokenMiddleware tags every client with a stable token used as the
// transport session id on the signaling socket.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, orch *app.Orchestrator, groups *storage.GroupStore, hub *chat.Hub) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("FreeFlowSessions", store))
	r.Use(ClientTokenMiddleware())

	signalCtl := signal.NewSignalWSController(orch, cfg)
	r.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("signal endpoint hit")
		signalCtl.HandleSignal(ctx, c)
	})

	// The chat relay and group CRUD only come up when a durable store is
	// configured.
	if groups != nil {
		chatCtl := chat.NewChatWSController(hub, groups)
		r.GET("/ws/chat", func(c *gin.Context) {
			chatCtl.HandleChat(ctx, c)
		})

		groupCtl := &GroupController{Groups: groups}
		api := r.Group("/api/groups")
		api.POST("/create", groupCtl.Create)
		api.POST("/join/:token", groupCtl.Join)
		api.POST("/leave/:groupId", groupCtl.Leave)
	}

	return r
}
