package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/freeflow/signaling/internal/domain"
	"github.com/freeflow/signaling/internal/storage"
)

// GroupController is the CRUD surface over the durable group store. The
// caller's identity arrives in X-User-Id and is trusted as given, same as
// on the signaling socket.
type GroupController struct {
	Groups *storage.GroupStore
}

func callerID(c *gin.Context) (domain.UserID, bool) {
	id := c.GetHeader("X-User-Id")
	if id == "" {
		c.JSON(400, gin.H{"error": "X-User-Id header required"})
		return "", false
	}
	return domain.UserID(id), true
}

func (ctl *GroupController) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	name := c.Query("name")
	if name == "" {
		c.JSON(400, gin.H{"error": "name required"})
		return
	}
	group, err := ctl.Groups.CreateGroup(name, userID)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("create group")
		c.JSON(500, gin.H{"error": "could not create group"})
		return
	}
	c.JSON(200, gin.H{
		"groupId":    group.ID,
		"inviteLink": group.Token,
	})
}

func (ctl *GroupController) Join(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	group, err := ctl.Groups.JoinGroup(c.Param("token"), userID)
	if errors.Is(err, storage.ErrInvalidToken) || errors.Is(err, storage.ErrGroupNotFound) {
		c.JSON(400, gin.H{"error": "invalid or expired token"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("join group")
		c.JSON(500, gin.H{"error": "could not join group"})
		return
	}
	c.JSON(200, gin.H{
		"groupId":   group.ID,
		"groupName": group.Name,
	})
}

func (ctl *GroupController) Leave(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	left, err := ctl.Groups.LeaveGroup(domain.GroupID(c.Param("groupId")), userID)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("leave group")
		c.JSON(500, gin.H{"error": "could not leave group"})
		return
	}
	if !left {
		c.JSON(400, gin.H{"error": "invalid groupId"})
		return
	}
	c.JSON(200, gin.H{"status": "left"})
}
