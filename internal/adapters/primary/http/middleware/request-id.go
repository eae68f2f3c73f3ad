package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(ctxRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or "" outside of it.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}
