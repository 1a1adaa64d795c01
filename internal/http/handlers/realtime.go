package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/smartassist-backend/internal/platform/logger"
	"github.com/yungbote/smartassist-backend/internal/realtime"
	"github.com/yungbote/smartassist-backend/internal/workspace"
)

type RealtimeHandler struct {
	log        *logger.Logger
	dispatcher *realtime.Dispatcher
	workspaces *workspace.Manager
}

func NewRealtimeHandler(log *logger.Logger, dispatcher *realtime.Dispatcher, workspaces *workspace.Manager) *RealtimeHandler {
	return &RealtimeHandler{
		log:        log.With("handler", "RealtimeHandler"),
		dispatcher: dispatcher,
		workspaces: workspaces,
	}
}

// Stream opens an SSE feed of change signals. Students get their own rows,
// teachers every student's rows plus dashboard-ready events. A student
// stream opened with ?session_id= closes that workspace when it ends.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	boundSession, ok := uuidQuery(c, "session_id")
	if !ok {
		return
	}

	scope := realtime.SelfScope(rd.UserID)
	if rd.IsTeacher() {
		scope = realtime.TeacherScope().With(realtime.TableDashboard)
		boundSession = uuid.Nil
	}

	sub := h.dispatcher.Subscribe(rd.UserID, scope)
	defer sub.Close()
	h.log.Debug("SSE stream open", "user_id", rd.UserID, "subscription_id", sub.ID)

	h.dispatcher.ServeSSE(c.Writer, c.Request, sub)

	if boundSession != uuid.Nil && h.workspaces != nil {
		if err := h.workspaces.CloseSession(context.WithoutCancel(c.Request.Context()), rd.UserID, boundSession); err != nil {
			h.log.Warn("Closing workspace after stream end failed", "user_id", rd.UserID, "session_id", boundSession, "error", err)
		}
	}
}
