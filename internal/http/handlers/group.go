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

type GroupHandler struct {
	log          *logger.Logger
	groupService services.GroupService
}

func NewGroupHandler(log *logger.Logger, groupService services.GroupService) *GroupHandler {
	return &GroupHandler{
		log:          log.With("handler", "GroupHandler"),
		groupService: groupService,
	}
}

// POST /api/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req struct {
		Name         string     `json:"name"`
		ParentID     *uuid.UUID `json:"parent_id"`
		FollowupDays *int       `json:"followup_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	group, err := h.groupService.Create(c.Request.Context(), services.CreateGroupInput{
		Name:         req.Name,
		ParentID:     req.ParentID,
		FollowupDays: req.FollowupDays,
	})
	if err != nil {
		respondServiceError(c, h.log, "Create group failed", err)
		return
	}
	response.RespondOK(c, gin.H{"group": group})
}

// PATCH /api/groups/:id
//
// parent_id and followup_days are tri-state: absent leaves the field
// alone, an explicit null clears it.
func (h *GroupHandler) Update(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil || groupID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_group_id", err)
		return
	}

	var req struct {
		Name         *string         `json:"name"`
		ParentID     json.RawMessage `json:"parent_id"`
		FollowupDays json.RawMessage `json:"followup_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	in := services.UpdateGroupInput{Name: req.Name}
	if len(req.ParentID) > 0 {
		in.SetParent = true
		if string(req.ParentID) != "null" {
			var parentID uuid.UUID
			if err := json.Unmarshal(req.ParentID, &parentID); err != nil {
				response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
				return
			}
			in.ParentID = &parentID
		}
	}
	if len(req.FollowupDays) > 0 {
		in.SetFollowupDays = true
		if string(req.FollowupDays) != "null" {
			var days int
			if err := json.Unmarshal(req.FollowupDays, &days); err != nil {
				response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
				return
			}
			in.FollowupDays = &days
		}
	}

	group, err := h.groupService.Update(c.Request.Context(), groupID, in)
	if err != nil {
		respondServiceError(c, h.log, "Update group failed", err, "group_id", groupID)
		return
	}
	response.RespondOK(c, gin.H{"group": group})
}

// DELETE /api/groups/:id
func (h *GroupHandler) Delete(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil || groupID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_group_id", err)
		return
	}

	if err := h.groupService.Delete(c.Request.Context(), groupID); err != nil {
		respondServiceError(c, h.log, "Delete group failed", err, "group_id", groupID)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/groups
func (h *GroupHandler) ListTree(c *gin.Context) {
	tree, err := h.groupService.ListTree(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, "ListTree failed", err)
		return
	}
	response.RespondOK(c, gin.H{"groups": tree})
}

// POST /api/groups/:id/contacts
func (h *GroupHandler) AddContact(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil || groupID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_group_id", err)
		return
	}

	var req struct {
		ContactID uuid.UUID `json:"contact_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if err := h.groupService.AddContact(c.Request.Context(), groupID, req.ContactID); err != nil {
		respondServiceError(c, h.log, "AddContact failed", err, "group_id", groupID, "contact_id", req.ContactID)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// DELETE /api/groups/:id/contacts/:contactID
func (h *GroupHandler) RemoveContact(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil || groupID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_group_id", err)
		return
	}
	contactID, err := uuid.Parse(c.Param("contactID"))
	if err != nil || contactID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_contact_id", err)
		return
	}

	if err := h.groupService.RemoveContact(c.Request.Context(), groupID, contactID); err != nil {
		respondServiceError(c, h.log, "RemoveContact failed", err, "group_id", groupID, "contact_id", contactID)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
