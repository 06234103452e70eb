package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/touchbasehq/touchbase-backend/internal/http/response"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
	"github.com/touchbasehq/touchbase-backend/internal/services"
)

type DuplicateHandler struct {
	log              *logger.Logger
	duplicateService services.DuplicateService
}

func NewDuplicateHandler(log *logger.Logger, duplicateService services.DuplicateService) *DuplicateHandler {
	return &DuplicateHandler{
		log:              log.With("handler", "DuplicateHandler"),
		duplicateService: duplicateService,
	}
}

type mergeRequest struct {
	TargetID uuid.UUID `json:"target_id"`
	SourceID uuid.UUID `json:"source_id"`
}

// GET /api/duplicates
func (h *DuplicateHandler) Scan(c *gin.Context) {
	pairs, err := h.duplicateService.Scan(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, "Scan failed", err)
		return
	}
	response.RespondOK(c, gin.H{"pairs": pairs})
}

// POST /api/duplicates/preview
func (h *DuplicateHandler) MergePreview(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	preview, err := h.duplicateService.MergePreview(c.Request.Context(), req.TargetID, req.SourceID)
	if err != nil {
		respondServiceError(c, h.log, "MergePreview failed", err, "target_id", req.TargetID, "source_id", req.SourceID)
		return
	}
	response.RespondOK(c, gin.H{"preview": preview})
}

// POST /api/duplicates/merge
func (h *DuplicateHandler) Merge(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := h.duplicateService.Merge(c.Request.Context(), req.TargetID, req.SourceID)
	if err != nil {
		respondServiceError(c, h.log, "Merge failed", err, "target_id", req.TargetID, "source_id", req.SourceID)
		return
	}
	response.RespondOK(c, gin.H{"result": result})
}
