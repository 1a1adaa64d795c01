package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/smartassist-backend/internal/http/response"
	"github.com/yungbote/smartassist-backend/internal/services"
)

type UserHandler struct {
	profiles services.ProfileService
}

func NewUserHandler(profiles services.ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// GetMe returns the caller's profile; a missing profile is a null, not a 404.
func (h *UserHandler) GetMe(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	profile, err := h.profiles.GetProfile(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"user_id":   rd.UserID,
		"user_type": rd.UserType,
		"profile":   profile,
	})
}

func (h *UserHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.profiles.ListProfiles(c.Request.Context(), c.Query("user_type"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profiles": profiles})
}
