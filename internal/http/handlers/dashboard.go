package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/smartassist-backend/internal/dashboard"
	"github.com/yungbote/smartassist-backend/internal/http/response"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

type DashboardHandler struct {
	log       *logger.Logger
	refresher *dashboard.Refresher
}

func NewDashboardHandler(log *logger.Logger, refresher *dashboard.Refresher) *DashboardHandler {
	return &DashboardHandler{log: log.With("handler", "DashboardHandler"), refresher: refresher}
}

// Get serves the last built view, filtered by ?tutorial_id= and ?step=
// ("all" or empty disables either).
func (h *DashboardHandler) Get(c *gin.Context) {
	view := h.refresher.Current()
	if view == nil {
		var err error
		if view, err = h.refresher.Refresh(c.Request.Context()); view == nil {
			response.RespondAPIError(c, err)
			return
		}
	}
	response.RespondOK(c, view.Filtered(c.Query("tutorial_id"), c.Query("step")))
}

// Refresh forces a rebuild. On failure the previous view is returned marked
// stale when there is one.
func (h *DashboardHandler) Refresh(c *gin.Context) {
	view, err := h.refresher.Refresh(c.Request.Context())
	if err != nil {
		h.log.Warn("Manual dashboard refresh failed", "error", err)
		if view == nil {
			response.RespondAPIError(c, err)
			return
		}
	}
	response.RespondOK(c, view.Filtered(c.Query("tutorial_id"), c.Query("step")))
}
