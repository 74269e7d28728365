package server

import (
	"net/http"

	"github.com/danielolaszy/jira-export/internal/export"
	"github.com/danielolaszy/jira-export/internal/logging"
	"github.com/gin-gonic/gin"
)

// ExportRequest is the body accepted by POST /export.
type ExportRequest struct {
	JQL string `json:"jql" binding:"required"`
}

// Handlers holds the HTTP handlers.
type Handlers struct {
	exporter Exporter
}

// NewHandlers creates handlers backed by exporter.
func NewHandlers(exporter Exporter) *Handlers {
	return &Handlers{exporter: exporter}
}

// Healthz reports liveness.
func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Export runs the export for the posted JQL. Export outcomes, failures
// included, are reported in the body with status 200.
func (h *Handlers) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, export.Failure{Error: "invalid request body: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	log := logging.FromContext(ctx)
	log.Info("export requested", "jql", req.JQL)

	result, err := h.exporter.Export(ctx, req.JQL)
	if err != nil {
		log.Error("export failed", "error", err)
	}

	c.JSON(http.StatusOK, export.Payload(result, err))
}
