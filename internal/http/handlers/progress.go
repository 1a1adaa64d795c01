package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/smartassist-backend/internal/http/response"
	"github.com/yungbote/smartassist-backend/internal/services"
)

type ProgressHandler struct {
	progress services.ProgressService
}

func NewProgressHandler(progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

type progressOp func(ctx context.Context, studentID uuid.UUID, tutorialRef string) (*services.ProgressState, error)

func (h *ProgressHandler) Get(c *gin.Context)     { h.run(c, h.progress.Get) }
func (h *ProgressHandler) Init(c *gin.Context)    { h.run(c, h.progress.EnsureInitialized) }
func (h *ProgressHandler) Advance(c *gin.Context) { h.run(c, h.progress.Advance) }
func (h *ProgressHandler) Retreat(c *gin.Context) { h.run(c, h.progress.Retreat) }

func (h *ProgressHandler) run(c *gin.Context, op progressOp) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	st, err := op(c.Request.Context(), rd.UserID, c.Param("tutorialId"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, st)
}
