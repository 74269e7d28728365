// Package server exposes the export over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielolaszy/jira-export/internal/config"
	"github.com/danielolaszy/jira-export/internal/export"
	"github.com/danielolaszy/jira-export/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

// Exporter runs a single export for a JQL query.
type Exporter interface {
	Export(ctx context.Context, jql string) (*export.Result, error)
}

// NewRouter builds the gin engine serving the export endpoints.
func NewRouter(cfg config.HTTPConfig, exporter Exporter) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(requestID())
	r.Use(accessLog())
	r.Use(gin.CustomRecovery(recoverPanic))

	h := NewHandlers(exporter)

	r.GET("/healthz", h.Healthz)
	r.POST("/export", h.Export)

	return r
}

// requestID assigns every request an identifier and a logger scoped to it.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		logger := logging.GetLogger().With("request_id", id)
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.FromContext(c.Request.Context()).Info("http",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}

func recoverPanic(c *gin.Context, recovered any) {
	logging.FromContext(c.Request.Context()).Error("panic while handling request", "panic", recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, export.Failure{Error: fmt.Sprint(recovered)})
}
