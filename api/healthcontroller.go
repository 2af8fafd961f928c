package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RegisterHealthRoutes registers health check endpoints.
func (s *Server) RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/api/health", s.handleHealth)
}

// handleHealth reports ok when the job store answers within two seconds.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if _, err := s.jobs.List(ctx, 1); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
