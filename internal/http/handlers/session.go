package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/smartassist-backend/internal/http/response"
	"github.com/yungbote/smartassist-backend/internal/services"
)

type SessionHandler struct {
	sessions services.SessionService
}

func NewSessionHandler(sessions services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Heartbeat lets clients that keep their own timer refresh liveness.
func (h *SessionHandler) Heartbeat(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	var req struct {
		SessionID uuid.UUID `json:"session_id" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	alive, err := h.sessions.Heartbeat(c.Request.Context(), rd.UserID, req.SessionID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"alive": alive})
}

// ListActive is a teacher view of who currently has a session open.
func (h *SessionHandler) ListActive(c *gin.Context) {
	rows, err := h.sessions.ListActive(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": rows})
}
