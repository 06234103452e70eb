package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/touchbasehq/touchbase-backend/internal/domain/apperr"
	"github.com/touchbasehq/touchbase-backend/internal/http/response"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

// respondServiceError renders a typed service error. Client-caused codes
// pass through as-is; anything else is logged before the generic 500.
func respondServiceError(c *gin.Context, log *logger.Logger, msg string, err error, kv ...interface{}) {
	switch apperr.CodeOf(err) {
	case apperr.CodeValidation, apperr.CodeNotFound, apperr.CodeConflict:
	default:
		if log != nil {
			log.Error(msg, append([]interface{}{"error", err}, kv...)...)
		}
	}
	response.RespondAppError(c, err)
}

// parseLimit reads the optional ?limit= query parameter. Zero means
// "let the service apply its default".
func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
		return 0, false
	}
	return limit, true
}
