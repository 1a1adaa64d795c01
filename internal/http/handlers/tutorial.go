package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/smartassist-backend/internal/http/response"
	"github.com/yungbote/smartassist-backend/internal/services"
)

type TutorialHandler struct {
	tutorials services.TutorialService
}

func NewTutorialHandler(tutorials services.TutorialService) *TutorialHandler {
	return &TutorialHandler{tutorials: tutorials}
}

func (h *TutorialHandler) List(c *gin.Context) {
	rows, err := h.tutorials.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tutorials": rows})
}

// Get accepts either the tutorial's uuid or its code (e.g. TUT001).
func (h *TutorialHandler) Get(c *gin.Context) {
	row, err := h.tutorials.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tutorial": row})
}
