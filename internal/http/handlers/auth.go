package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/smartassist-backend/internal/http/response"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
	"github.com/yungbote/smartassist-backend/internal/services"
	"github.com/yungbote/smartassist-backend/internal/workspace"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
	workspaces  *workspace.Manager
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService, workspaces *workspace.Manager) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService, workspaces: workspaces}
}

func (ah *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Email         string `json:"email" binding:"required,email"`
		Password      string `json:"password" binding:"required"`
		Name          string `json:"name" binding:"required,notblank"`
		UserType      string `json:"user_type" binding:"required,oneof=student teacher"`
		StudentNumber string `json:"student_id"`
	}
	if !bind(c, &req) {
		return
	}
	profile, token, err := ah.authService.Signup(c.Request.Context(), services.SignupInput{
		Email:         req.Email,
		Password:      req.Password,
		Name:          req.Name,
		UserType:      req.UserType,
		StudentNumber: req.StudentNumber,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"profile":      profile,
		"access_token": token,
		"expires_in":   int(ah.authService.GetAccessTTL().Seconds()),
	})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	profile, token, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"profile":      profile,
		"access_token": token,
		"expires_in":   int(ah.authService.GetAccessTTL().Seconds()),
	})
}

// Logout ends the caller's workspace and session. A failed close is logged
// and the logout still succeeds.
func (ah *AuthHandler) Logout(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	if ah.workspaces != nil {
		if err := ah.workspaces.Close(c.Request.Context(), rd.UserID); err != nil {
			ah.log.Warn("Session close on logout failed", "user_id", rd.UserID, "error", err)
		}
	}
	response.RespondOK(c, gin.H{"ok": true})
}
