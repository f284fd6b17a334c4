package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AdminOverview returns the headline numbers for the dashboard.
func (h *Handler) AdminOverview(c *gin.Context) {
	overview, err := h.statsSvc.Overview(c.Request.Context())
	if err != nil {
		abortWithError(c, httpErrorFrom(err, "upstream_error"))
		return
	}
	c.JSON(http.StatusOK, overview)
}

// AdminLogs returns the most recent usage log entries.
func (h *Handler) AdminLogs(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", "limit must be a positive integer", err))
			return
		}
		limit = parsed
	}
	entries, err := h.statsSvc.Recent(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, httpErrorFrom(err, "upstream_error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": entries})
}

// AdminUsers returns per-user aggregates.
func (h *Handler) AdminUsers(c *gin.Context) {
	users, err := h.statsSvc.UserStats(c.Request.Context())
	if err != nil {
		abortWithError(c, httpErrorFrom(err, "upstream_error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
