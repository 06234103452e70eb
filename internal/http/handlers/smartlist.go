package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/touchbasehq/touchbase-backend/internal/http/response"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
	"github.com/touchbasehq/touchbase-backend/internal/services"
)

type SmartListHandler struct {
	log              *logger.Logger
	smartListService services.SmartListService
}

func NewSmartListHandler(log *logger.Logger, smartListService services.SmartListService) *SmartListHandler {
	return &SmartListHandler{
		log:              log.With("handler", "SmartListHandler"),
		smartListService: smartListService,
	}
}

// POST /api/smart-lists
func (h *SmartListHandler) Create(c *gin.Context) {
	var req struct {
		Name  string          `json:"name"`
		Rules json.RawMessage `json:"rules"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	list, err := h.smartListService.Create(c.Request.Context(), req.Name, req.Rules)
	if err != nil {
		respondServiceError(c, h.log, "Create smart list failed", err)
		return
	}
	response.RespondOK(c, gin.H{"smart_list": list})
}

// GET /api/smart-lists
func (h *SmartListHandler) List(c *gin.Context) {
	lists, err := h.smartListService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, "List smart lists failed", err)
		return
	}
	response.RespondOK(c, gin.H{"smart_lists": lists})
}

// GET /api/smart-lists/:id
func (h *SmartListHandler) Get(c *gin.Context) {
	listID, err := uuid.Parse(c.Param("id"))
	if err != nil || listID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_smart_list_id", err)
		return
	}

	list, err := h.smartListService.Get(c.Request.Context(), listID)
	if err != nil {
		respondServiceError(c, h.log, "Get smart list failed", err, "smart_list_id", listID)
		return
	}
	response.RespondOK(c, gin.H{"smart_list": list})
}

// PATCH /api/smart-lists/:id
func (h *SmartListHandler) Update(c *gin.Context) {
	listID, err := uuid.Parse(c.Param("id"))
	if err != nil || listID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_smart_list_id", err)
		return
	}

	var req struct {
		Name  *string         `json:"name"`
		Rules json.RawMessage `json:"rules"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	list, err := h.smartListService.Update(c.Request.Context(), listID, services.UpdateSmartListInput{
		Name:  req.Name,
		Rules: req.Rules,
	})
	if err != nil {
		respondServiceError(c, h.log, "Update smart list failed", err, "smart_list_id", listID)
		return
	}
	response.RespondOK(c, gin.H{"smart_list": list})
}

// DELETE /api/smart-lists/:id
func (h *SmartListHandler) Delete(c *gin.Context) {
	listID, err := uuid.Parse(c.Param("id"))
	if err != nil || listID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_smart_list_id", err)
		return
	}

	if err := h.smartListService.Delete(c.Request.Context(), listID); err != nil {
		respondServiceError(c, h.log, "Delete smart list failed", err, "smart_list_id", listID)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/smart-lists/:id/contacts?cursor=...&limit=...
func (h *SmartListHandler) MatchingContacts(c *gin.Context) {
	listID, err := uuid.Parse(c.Param("id"))
	if err != nil || listID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_smart_list_id", err)
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	contacts, nextCursor, err := h.smartListService.GetMatchingContacts(c.Request.Context(), listID, c.Query("cursor"), limit)
	if err != nil {
		respondServiceError(c, h.log, "GetMatchingContacts failed", err, "smart_list_id", listID)
		return
	}
	response.RespondOK(c, gin.H{
		"contacts":    contacts,
		"next_cursor": nextCursor,
	})
}
