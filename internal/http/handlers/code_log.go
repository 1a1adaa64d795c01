package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/smartassist-backend/internal/data/repos"
	"github.com/yungbote/smartassist-backend/internal/http/response"
	"github.com/yungbote/smartassist-backend/internal/services"
)

type CodeLogHandler struct {
	snapshots services.SnapshotService
}

func NewCodeLogHandler(snapshots services.SnapshotService) *CodeLogHandler {
	return &CodeLogHandler{snapshots: snapshots}
}

// List returns newest-first snapshots. Students only see their own rows;
// teachers see everyone's, narrowed by ?student_id=, or ask for ?latest=true.
func (h *CodeLogHandler) List(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	studentID := rd.UserID
	if rd.IsTeacher() {
		if latest, _ := strconv.ParseBool(c.Query("latest")); latest {
			rows, err := h.snapshots.Latest(c.Request.Context())
			if err != nil {
				response.RespondAPIError(c, err)
				return
			}
			response.RespondOK(c, gin.H{"code_logs": rows})
			return
		}
		// No student_id lists every student's rows.
		if studentID, ok = uuidQuery(c, "student_id"); !ok {
			return
		}
	}
	rows, err := h.snapshots.List(c.Request.Context(), studentID, intQuery(c, "limit", repos.DefaultCodeLogLimit))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"code_logs": rows})
}

// Capture records a snapshot for clients that run their own editor timer.
func (h *CodeLogHandler) Capture(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	var req struct {
		Code         string     `json:"code"`
		IsSubmission bool       `json:"is_submission"`
		TutorialID   *uuid.UUID `json:"tutorial_id"`
		StepNumber   *int       `json:"step_number"`
		SessionID    *uuid.UUID `json:"session_id"`
	}
	if !bind(c, &req) {
		return
	}
	row, err := h.snapshots.Capture(c.Request.Context(), services.CaptureInput{
		StudentID:    rd.UserID,
		Code:         req.Code,
		IsSubmission: req.IsSubmission,
		TutorialID:   req.TutorialID,
		StepNumber:   req.StepNumber,
		SessionID:    req.SessionID,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"code_log": row})
}
