package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/smartassist-backend/internal/data/repos"
	"github.com/yungbote/smartassist-backend/internal/http/response"
	"github.com/yungbote/smartassist-backend/internal/services"
)

type ErrorLogHandler struct {
	errors services.ErrorLogService
}

func NewErrorLogHandler(errors services.ErrorLogService) *ErrorLogHandler {
	return &ErrorLogHandler{errors: errors}
}

// Report accepts a client error. It always answers 202 so a broken error
// pipeline never cascades into the client.
func (h *ErrorLogHandler) Report(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	var req struct {
		Message string         `json:"error_message"`
		Stack   string         `json:"error_stack"`
		Context map[string]any `json:"context"`
	}
	if err := c.ShouldBindJSON(&req); err == nil {
		h.errors.Log(c.Request.Context(), services.ErrorReport{
			StudentID: rd.UserID,
			Message:   req.Message,
			Stack:     req.Stack,
			Context:   req.Context,
		})
	}
	c.Status(http.StatusAccepted)
}

func (h *ErrorLogHandler) List(c *gin.Context) {
	studentID, ok := uuidQuery(c, "student_id")
	if !ok {
		return
	}
	includeResolved, _ := strconv.ParseBool(c.Query("include_resolved"))
	rows, err := h.errors.List(c.Request.Context(), repos.ErrorLogFilter{
		StudentID:       studentID,
		IncludeResolved: includeResolved,
		Limit:           intQuery(c, "limit", 0),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"error_logs": rows})
}

func (h *ErrorLogHandler) Resolve(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.errors.Resolve(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
