package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/masasa123jp/docshub/internal/models"
	"github.com/masasa123jp/docshub/internal/services"
	"github.com/masasa123jp/docshub/internal/store"

	"github.com/gin-gonic/gin"
)

// AuditHandler exposes the audit trail to administrators
type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(as *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: as}
}

// List returns audit entries matching the query filters, newest first
func (h *AuditHandler) List(c *gin.Context) {
	filters := parseAuditFilters(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	params := store.NewPaginationParams(page, pageSize, c.Query("search"))

	logs, pagination, err := h.auditService.GetAuditLogs(filters, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query audit logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":       logs,
		"pagination": pagination,
	})
}

// Stats returns aggregate counts for the matching audit entries
func (h *AuditHandler) Stats(c *gin.Context) {
	stats, err := h.auditService.GetAuditLogStats(parseAuditFilters(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute audit stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func parseAuditFilters(c *gin.Context) store.AuditLogFilters {
	filters := store.AuditLogFilters{
		EventType:    models.EventType(c.Query("event_type")),
		ActorUserID:  c.Query("actor_user_id"),
		ResourceType: models.ResourceType(c.Query("resource_type")),
		ResourceID:   c.Query("resource_id"),
		Severity:     models.EventSeverity(c.Query("severity")),
		ActorIP:      c.Query("actor_ip"),
		Search:       c.Query("search"),
	}

	if raw := c.Query("success"); raw != "" {
		success := raw == "true" || raw == "1"
		filters.Success = &success
	}
	if raw := c.Query("start_time"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.StartTime = ts
		}
	}
	if raw := c.Query("end_time"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.EndTime = ts
		}
	}

	return filters
}
