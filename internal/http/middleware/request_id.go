package middleware

import (
	"predman/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an id (taken from the caller when it
// sends one) and puts a logger carrying it into the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		l := logger.With("request_id", id)
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), l))
		c.Next()
	}
}
