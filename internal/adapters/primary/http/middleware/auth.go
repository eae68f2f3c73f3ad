package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"sentiment-service/internal/core/domain"
)

const (
	HeaderAPIKey  = "X-API-Key"
	apiKeySubject = "api-key"
)

// Auth requires a matching X-API-Key header when apiKey is set. With no key
// configured every request proceeds anonymously.
func Auth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(ctxSkipAuth) {
			c.Next()
			return
		}
		if apiKey == "" {
			setIdentity(c, domain.AnonymousIdentity())
			c.Next()
			return
		}

		provided := c.GetHeader(HeaderAPIKey)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid API key"})
			return
		}

		setIdentity(c, domain.Identity{Subject: apiKeySubject})
		c.Next()
	}
}
