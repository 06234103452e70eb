package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/touchbasehq/touchbase-backend/internal/http/response"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
	"github.com/touchbasehq/touchbase-backend/internal/services"
)

type TagHandler struct {
	log        *logger.Logger
	tagService services.TagService
}

func NewTagHandler(log *logger.Logger, tagService services.TagService) *TagHandler {
	return &TagHandler{
		log:        log.With("handler", "TagHandler"),
		tagService: tagService,
	}
}

// POST /api/tags
func (h *TagHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	tag, err := h.tagService.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, h.log, "Create tag failed", err)
		return
	}
	response.RespondOK(c, gin.H{"tag": tag})
}

// GET /api/tags
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tagService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, "List tags failed", err)
		return
	}
	response.RespondOK(c, gin.H{"tags": tags})
}
