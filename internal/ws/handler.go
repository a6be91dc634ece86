package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"predman/internal/domain"
	"predman/internal/logger"
	"predman/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// MembershipChecker tells whether a user may watch a project.
type MembershipChecker interface {
	IsMember(ctx context.Context, projectID, userID string) (bool, error)
}

// HandleWS upgrades /v1/ws?project_id=...&token=... after checking that the
// caller is a member of the project.
func HandleWS(hub *Hub, members MembershipChecker, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		userID, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		projectID := c.Query("project_id")
		if projectID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project_id required"})
			return
		}

		ok, err := members.IsMember(c.Request.Context(), projectID, userID)
		if errors.Is(err, domain.ErrNotFound) {
			ok, err = false, nil
		}
		if err != nil {
			logger.Error("ws membership check failed", "project_id", projectID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a project member"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		client := NewClient(userID, projectID, conn, hub)
		go client.Run()
	}
}
