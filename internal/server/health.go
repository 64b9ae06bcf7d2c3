package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	dbState := "ok"
	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status = http.StatusServiceUnavailable
		dbState = "unavailable"
	}
	c.JSON(status, gin.H{
		"status":          http.StatusText(status),
		"database":        dbState,
		"active_sessions": s.sessions.Len(),
		"version":         s.cfg.Version,
	})
}

func metricsHandler(gatherer prometheus.Gatherer) gin.HandlerFunc {
	h := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
