package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/smartassist-backend/internal/http/response"
	"github.com/yungbote/smartassist-backend/internal/workspace"
)

type WorkspaceHandler struct {
	workspaces *workspace.Manager
}

func NewWorkspaceHandler(workspaces *workspace.Manager) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

func (h *WorkspaceHandler) Open(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	var req struct {
		TutorialID string `json:"tutorial_id" binding:"required,notblank"`
	}
	if !bind(c, &req) {
		return
	}
	w, err := h.workspaces.Open(c.Request.Context(), rd.UserID, req.TutorialID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, w.Status())
}

func (h *WorkspaceHandler) Status(c *gin.Context) {
	w, ok := h.current(c)
	if !ok {
		return
	}
	response.RespondOK(c, w.Status())
}

func (h *WorkspaceHandler) Close(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	if err := h.workspaces.Close(c.Request.Context(), rd.UserID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// UpdateBuffer only touches memory; the auto-save timer persists it.
func (h *WorkspaceHandler) UpdateBuffer(c *gin.Context) {
	w, ok := h.current(c)
	if !ok {
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if !bind(c, &req) {
		return
	}
	w.UpdateBuffer(req.Code)
	response.RespondOK(c, w.Status())
}

func (h *WorkspaceHandler) Submit(c *gin.Context) {
	w, ok := h.current(c)
	if !ok {
		return
	}
	// An optional body replaces the buffer before submitting.
	var req struct {
		Code *string `json:"code"`
	}
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	if req.Code != nil {
		w.UpdateBuffer(*req.Code)
	}
	row, err := w.Submit(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"code_log": row, "status": w.Status()})
}

func (h *WorkspaceHandler) Advance(c *gin.Context) {
	h.move(c, (*workspace.Workspace).Advance)
}

func (h *WorkspaceHandler) Retreat(c *gin.Context) {
	h.move(c, (*workspace.Workspace).Retreat)
}

func (h *WorkspaceHandler) move(c *gin.Context, op func(*workspace.Workspace, context.Context) (workspace.Status, error)) {
	w, ok := h.current(c)
	if !ok {
		return
	}
	st, err := op(w, c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, st)
}

func (h *WorkspaceHandler) current(c *gin.Context) (*workspace.Workspace, bool) {
	rd, ok := caller(c)
	if !ok {
		return nil, false
	}
	w, err := h.workspaces.Get(rd.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return nil, false
	}
	return w, true
}
