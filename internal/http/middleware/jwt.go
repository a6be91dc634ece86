package middleware

import (
	"net/http"
	"strings"

	"predman/internal/service"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// JWT authenticates the request by its bearer token and stores the caller in
// the "user_id" context key. The token may also come from the token query
// parameter, which browsers use for websocket upgrades.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := tokenFromRequest(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		userID, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) (string, bool) {
	if raw := strings.TrimSpace(c.GetHeader("Authorization")); raw != "" {
		if !strings.HasPrefix(raw, bearerPrefix) {
			return "", false
		}
		token := strings.TrimSpace(raw[len(bearerPrefix):])
		return token, token != ""
	}
	token := c.Query("token")
	return token, token != ""
}
