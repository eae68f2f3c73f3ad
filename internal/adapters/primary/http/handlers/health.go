package handlers

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type HealthHandler struct {
	ready atomic.Bool

	mu     sync.RWMutex
	checks map[string]ReadinessCheck
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{checks: make(map[string]ReadinessCheck)}
}

func (h *HealthHandler) AddCheck(name string, check ReadinessCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// SetReady flips readiness; the server marks itself unready while shutting down.
func (h *HealthHandler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *HealthHandler) Register(r gin.IRoutes) {
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(c *gin.Context) {
	if !h.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}

	h.mu.RLock()
	checks := make(map[string]ReadinessCheck, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.RUnlock()

	failures := gin.H{}
	for name, check := range checks {
		if err := check(c.Request.Context()); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "errors": failures})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
