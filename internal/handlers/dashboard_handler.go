package handlers

import (
	"net/http"
	"time"

	"taskboard-api/internal/cache"
	"taskboard-api/internal/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the dashboard projection, memoized for a short
// TTL since it aggregates over the whole store on every hit.
type DashboardHandler struct {
	tasks    *service.TaskService
	snapshot *cache.Snapshot[*service.DashboardSnapshot]
}

func NewDashboardHandler(tasks *service.TaskService, ttl time.Duration) *DashboardHandler {
	return &DashboardHandler{
		tasks:    tasks,
		snapshot: cache.NewSnapshot[*service.DashboardSnapshot](ttl),
	}
}

// Get handles GET /api/dashboard.
func (h *DashboardHandler) Get(c *gin.Context) {
	if cached, ok := h.snapshot.Get(); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	snapshot, err := h.tasks.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	h.snapshot.Set(snapshot)
	c.JSON(http.StatusOK, snapshot)
}
