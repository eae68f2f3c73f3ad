package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sentiment-service/internal/core/domain"
)

const (
	ctxIdentity = "identity"
	ctxSkipAuth = "skip_auth"
)

func setIdentity(c *gin.Context, id domain.Identity) {
	c.Set(ctxIdentity, id)
}

// IdentityFrom returns the caller identity. Requests that never passed through
// Preflight or Auth are anonymous.
func IdentityFrom(c *gin.Context) domain.Identity {
	if v, ok := c.Get(ctxIdentity); ok {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	return domain.AnonymousIdentity()
}

// Preflight lets OPTIONS requests skip authentication. They get a well-formed
// anonymous identity so nothing downstream has to handle a missing one.
func Preflight() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			setIdentity(c, domain.AnonymousIdentity())
			c.Set(ctxSkipAuth, true)
		}
		c.Next()
	}
}
