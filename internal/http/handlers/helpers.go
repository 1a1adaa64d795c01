package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/smartassist-backend/internal/http/response"
	"github.com/yungbote/smartassist-backend/internal/platform/apierr"
	"github.com/yungbote/smartassist-backend/internal/platform/ctxutil"
)

// caller returns the authenticated identity, writing a 401 when absent.
func caller(c *gin.Context) (*ctxutil.RequestData, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondAPIError(c, apierr.AuthRequired())
		return nil, false
	}
	return rd, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.RespondAPIError(c, apierr.Validation("invalid_"+name, name+" must be a uuid"))
		return uuid.Nil, false
	}
	return id, true
}

// uuidQuery parses an optional query value; empty yields uuid.Nil.
func uuidQuery(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondAPIError(c, apierr.Validation("invalid_"+name, name+" must be a uuid"))
		return uuid.Nil, false
	}
	return id, true
}

const maxListLimit = 500

// intQuery reads a positive int, falling back to def and capping at
// maxListLimit.
func intQuery(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil || n <= 0 {
		return def
	}
	return min(n, maxListLimit)
}

// bind decodes the JSON body, reporting binding failures as validation errors.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondAPIError(c, apierr.Validation("invalid_request", err.Error()))
		return false
	}
	return true
}
