package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/smartassist-backend/internal/platform/apierr"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError maps err onto its kind's status. Unclassified errors are
// reported as a bare internal error so driver details never reach clients.
func RespondAPIError(c *gin.Context, err error) {
	e := apierr.From(err)
	if e == nil {
		return
	}
	_ = c.Error(err)
	msg := e.Error()
	if e.Status >= http.StatusInternalServerError && e.Kind != apierr.KindPersistence {
		msg = "internal error"
	}
	if e.Kind == apierr.KindPersistence {
		msg = "storage unavailable, try again"
	}
	c.AbortWithStatusJSON(e.Status, ErrorEnvelope{
		Error: APIError{
			Message:   msg,
			Code:      e.Code,
			Retryable: e.Retryable(),
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
