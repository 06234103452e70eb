package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/touchbasehq/touchbase-backend/internal/http/response"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
	"github.com/touchbasehq/touchbase-backend/internal/services"
)

type AIQueryHandler struct {
	log            *logger.Logger
	aiQueryService services.AIQueryService
}

func NewAIQueryHandler(log *logger.Logger, aiQueryService services.AIQueryService) *AIQueryHandler {
	return &AIQueryHandler{
		log:            log.With("handler", "AIQueryHandler"),
		aiQueryService: aiQueryService,
	}
}

// POST /api/ai/query
func (h *AIQueryHandler) Query(c *gin.Context) {
	var req struct {
		Question string `json:"question"`
		Limit    int    `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := h.aiQueryService.Query(c.Request.Context(), req.Question, req.Limit)
	if err != nil {
		respondServiceError(c, h.log, "Query failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"rules":    result.Rules,
		"contacts": result.Contacts,
	})
}
