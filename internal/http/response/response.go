package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/platform/apierr"
)

type APIError struct {
	Message string                `json:"message"`
	Code    string                `json:"code,omitempty"`
	Fields  []feedback.FieldError `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	body := APIError{Message: msg, Code: code}
	var verr *feedback.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	c.JSON(status, ErrorEnvelope{Error: body})
}

// RespondAPIError maps err through apierr. Anything without a status is a
// 500 and its message is not echoed.
func RespondAPIError(c *gin.Context, err error) {
	status, code := apierr.StatusOf(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		RespondError(c, status, code, errors.New("internal error"))
		return
	}
	RespondError(c, status, code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
