package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/smartassist-backend/internal/http/response"
	"github.com/yungbote/smartassist-backend/internal/platform/apierr"
	"github.com/yungbote/smartassist-backend/internal/services"
)

type HelpHandler struct {
	help services.HelpService
}

func NewHelpHandler(help services.HelpService) *HelpHandler {
	return &HelpHandler{help: help}
}

// List returns a student's own requests newest first, or every request
// (optionally ?status=) for teachers.
func (h *HelpHandler) List(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	var err error
	var rows any
	if rd.IsTeacher() {
		rows, err = h.help.ListAll(c.Request.Context(), c.Query("status"))
	} else {
		rows, err = h.help.ListForStudent(c.Request.Context(), rd.UserID)
	}
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"help_requests": rows})
}

func (h *HelpHandler) Create(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	if !rd.IsStudent() {
		response.RespondAPIError(c, apierr.Forbidden("student_only"))
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if !bind(c, &req) {
		return
	}
	row, err := h.help.Create(c.Request.Context(), rd.UserID, req.Message)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"help_request": row})
}

func (h *HelpHandler) Respond(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Response          string     `json:"response"`
		ExpectedUpdatedAt *time.Time `json:"expected_updated_at"`
	}
	if !bind(c, &req) {
		return
	}
	row, err := h.help.Respond(c.Request.Context(), services.RespondInput{
		TeacherID:         rd.UserID,
		RequestID:         id,
		Response:          req.Response,
		ExpectedUpdatedAt: req.ExpectedUpdatedAt,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"help_request": row})
}
