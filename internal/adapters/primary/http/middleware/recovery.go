package middleware

import (
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Recovery turns a panic in any later handler into a 500 JSON response so a
// single failing request never takes the process down.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.WithFields(log.Fields{
			"request_id": GetRequestID(c),
			"path":       c.Request.URL.Path,
			"panic":      fmt.Sprint(recovered),
			"stack":      string(debug.Stack()),
		}).Error("panic recovered")

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("An unexpected error occurred: %v", recovered),
		})
	})
}
