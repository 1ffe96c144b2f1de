package handler

import (
	"net/http"
	"time"

	"warranty-platform/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuditHandler serves the audit trail.
type AuditHandler struct {
	audit  service.AuditLog
	logger *zap.Logger
}

// NewAuditHandler creates an audit handler.
func NewAuditHandler(audit service.AuditLog, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{audit: audit, logger: logger}
}

// List returns entries between ?from= and ?to= (RFC 3339, both optional).
func (h *AuditHandler) List(c *gin.Context) {
	var from, to time.Time
	var err error

	if v := c.Query("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be an RFC 3339 timestamp"})
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be an RFC 3339 timestamp"})
			return
		}
	}

	entries, err := h.audit.List(c.Request.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to list audit entries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get audit log"})
		return
	}
	c.JSON(http.StatusOK, entries)
}
