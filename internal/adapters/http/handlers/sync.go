package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quotesync-io/quotesync/internal/adapters/http/dto"
	"github.com/quotesync-io/quotesync/internal/app"
)

// SyncHandler exposes the sync engine over HTTP.
type SyncHandler struct {
	engine *app.SyncEngine
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(engine *app.SyncEngine) *SyncHandler {
	return &SyncHandler{
		engine: engine,
	}
}

// TriggerSync handles POST /api/v1/sync
// Runs one pull/merge/push cycle immediately and returns its result.
// A failed pull leaves the local collection untouched and reports 503.
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	result, err := h.engine.SyncNow(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SyncStatus handles GET /api/v1/sync/status
// Reports the outcome of the most recent cycle and lifetime counters.
func (h *SyncHandler) SyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Status())
}

// RegisterSyncRoutes registers sync routes on the given router group.
func (h *SyncHandler) RegisterSyncRoutes(rg *gin.RouterGroup) {
	syncGroup := rg.Group("/sync")
	syncGroup.POST("", h.TriggerSync)
	syncGroup.GET("/status", h.SyncStatus)
}
