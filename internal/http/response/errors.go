package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/touchbasehq/touchbase-backend/internal/domain/apperr"
)

// StatusOf maps a domain error code to its HTTP status. Unknown and
// internal codes collapse to 500.
func StatusOf(code apperr.Code) int {
	switch code {
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondAppError renders a typed domain error as the standard envelope.
// Server-side failures are surfaced with a generic message; callers log
// the underlying error before responding.
func RespondAppError(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	if code == "" {
		code = apperr.CodeInternal
	}
	status := StatusOf(code)
	msg := apperr.MessageOf(err)
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    string(code),
		},
	})
}
