package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/touchbasehq/touchbase-backend/internal/http/response"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
	"github.com/touchbasehq/touchbase-backend/internal/services"
)

type ContactHandler struct {
	log            *logger.Logger
	contactService services.ContactService
}

func NewContactHandler(log *logger.Logger, contactService services.ContactService) *ContactHandler {
	return &ContactHandler{
		log:            log.With("handler", "ContactHandler"),
		contactService: contactService,
	}
}

func contactIDParam(c *gin.Context) (uuid.UUID, bool) {
	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil || contactID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_contact_id", err)
		return uuid.Nil, false
	}
	return contactID, true
}

// POST /api/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	var req struct {
		DisplayName      string   `json:"display_name"`
		FirstName        string   `json:"first_name"`
		LastName         string   `json:"last_name"`
		Starred          bool     `json:"starred"`
		ManualImportance *int     `json:"manual_importance"`
		EngagementScore  float64  `json:"engagement_score"`
		Emails           []string `json:"emails"`
		Phones           []string `json:"phones"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	contact, err := h.contactService.Create(c.Request.Context(), services.CreateContactInput{
		DisplayName:      req.DisplayName,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Starred:          req.Starred,
		ManualImportance: req.ManualImportance,
		EngagementScore:  req.EngagementScore,
		Emails:           req.Emails,
		Phones:           req.Phones,
	})
	if err != nil {
		respondServiceError(c, h.log, "Create contact failed", err)
		return
	}
	response.RespondOK(c, gin.H{"contact": contact})
}

// GET /api/contacts?cursor=...&limit=...
func (h *ContactHandler) List(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	contacts, nextCursor, err := h.contactService.List(c.Request.Context(), c.Query("cursor"), limit)
	if err != nil {
		respondServiceError(c, h.log, "List contacts failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"contacts":    contacts,
		"next_cursor": nextCursor,
	})
}

// GET /api/contacts/:id
func (h *ContactHandler) Get(c *gin.Context) {
	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	contact, err := h.contactService.Get(c.Request.Context(), contactID)
	if err != nil {
		respondServiceError(c, h.log, "Get contact failed", err, "contact_id", contactID)
		return
	}
	response.RespondOK(c, gin.H{"contact": contact})
}

// PATCH /api/contacts/:id
//
// manual_importance is tri-state: absent leaves it alone, an explicit
// null clears the override. emails/phones replace the stored list when
// the key is present.
func (h *ContactHandler) Update(c *gin.Context) {
	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	var req struct {
		DisplayName      *string         `json:"display_name"`
		FirstName        *string         `json:"first_name"`
		LastName         *string         `json:"last_name"`
		Starred          *bool           `json:"starred"`
		ManualImportance json.RawMessage `json:"manual_importance"`
		EngagementScore  *float64        `json:"engagement_score"`
		Emails           []string        `json:"emails"`
		Phones           []string        `json:"phones"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	in := services.UpdateContactInput{
		DisplayName:     req.DisplayName,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Starred:         req.Starred,
		EngagementScore: req.EngagementScore,
		Emails:          req.Emails,
		Phones:          req.Phones,
	}
	if len(req.ManualImportance) > 0 {
		in.SetManualImportance = true
		if string(req.ManualImportance) != "null" {
			var importance int
			if err := json.Unmarshal(req.ManualImportance, &importance); err != nil {
				response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
				return
			}
			in.ManualImportance = &importance
		}
	}

	contact, err := h.contactService.Update(c.Request.Context(), contactID, in)
	if err != nil {
		respondServiceError(c, h.log, "Update contact failed", err, "contact_id", contactID)
		return
	}
	response.RespondOK(c, gin.H{"contact": contact})
}

// DELETE /api/contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	if err := h.contactService.Delete(c.Request.Context(), contactID); err != nil {
		respondServiceError(c, h.log, "Delete contact failed", err, "contact_id", contactID)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/contacts/:id/notes
func (h *ContactHandler) AddNote(c *gin.Context) {
	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	note, err := h.contactService.AddNote(c.Request.Context(), contactID, req.Body)
	if err != nil {
		respondServiceError(c, h.log, "AddNote failed", err, "contact_id", contactID)
		return
	}
	response.RespondOK(c, gin.H{"note": note})
}

// GET /api/contacts/:id/notes
func (h *ContactHandler) ListNotes(c *gin.Context) {
	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	notes, err := h.contactService.ListNotes(c.Request.Context(), contactID)
	if err != nil {
		respondServiceError(c, h.log, "ListNotes failed", err, "contact_id", contactID)
		return
	}
	response.RespondOK(c, gin.H{"notes": notes})
}

// POST /api/contacts/:id/communications
func (h *ContactHandler) AddCommunication(c *gin.Context) {
	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Channel    string    `json:"channel"`
		Direction  string    `json:"direction"`
		OccurredAt time.Time `json:"occurred_at"`
		Summary    string    `json:"summary"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	comm, err := h.contactService.AddCommunication(c.Request.Context(), contactID, services.AddCommunicationInput{
		Channel:    req.Channel,
		Direction:  req.Direction,
		OccurredAt: req.OccurredAt,
		Summary:    req.Summary,
	})
	if err != nil {
		respondServiceError(c, h.log, "AddCommunication failed", err, "contact_id", contactID)
		return
	}
	response.RespondOK(c, gin.H{"communication": comm})
}

// GET /api/contacts/:id/communications
func (h *ContactHandler) ListCommunications(c *gin.Context) {
	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	comms, err := h.contactService.ListCommunications(c.Request.Context(), contactID)
	if err != nil {
		respondServiceError(c, h.log, "ListCommunications failed", err, "contact_id", contactID)
		return
	}
	response.RespondOK(c, gin.H{"communications": comms})
}

// POST /api/contacts/:id/facts
func (h *ContactHandler) AddFact(c *gin.Context) {
	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	fact, err := h.contactService.AddFact(c.Request.Context(), contactID, req.Key, req.Value)
	if err != nil {
		respondServiceError(c, h.log, "AddFact failed", err, "contact_id", contactID)
		return
	}
	response.RespondOK(c, gin.H{"fact": fact})
}

// GET /api/contacts/:id/facts
func (h *ContactHandler) ListFacts(c *gin.Context) {
	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	facts, err := h.contactService.ListFacts(c.Request.Context(), contactID)
	if err != nil {
		respondServiceError(c, h.log, "ListFacts failed", err, "contact_id", contactID)
		return
	}
	response.RespondOK(c, gin.H{"facts": facts})
}

// POST /api/contacts/:id/relationships
func (h *ContactHandler) AddRelationship(c *gin.Context) {
	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	var req struct {
		RelatedContactID uuid.UUID `json:"related_contact_id"`
		Kind             string    `json:"kind"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	rel, err := h.contactService.AddRelationship(c.Request.Context(), contactID, req.RelatedContactID, req.Kind)
	if err != nil {
		respondServiceError(c, h.log, "AddRelationship failed", err, "contact_id", contactID)
		return
	}
	response.RespondOK(c, gin.H{"relationship": rel})
}

// GET /api/contacts/:id/relationships
func (h *ContactHandler) ListRelationships(c *gin.Context) {
	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	rels, err := h.contactService.ListRelationships(c.Request.Context(), contactID)
	if err != nil {
		respondServiceError(c, h.log, "ListRelationships failed", err, "contact_id", contactID)
		return
	}
	response.RespondOK(c, gin.H{"relationships": rels})
}

// POST /api/contacts/:id/followups
func (h *ContactHandler) AddFollowup(c *gin.Context) {
	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	var req struct {
		DueAt time.Time `json:"due_at"`
		Note  string    `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	followup, err := h.contactService.AddFollowup(c.Request.Context(), contactID, services.AddFollowupInput{
		DueAt: req.DueAt,
		Note:  req.Note,
	})
	if err != nil {
		respondServiceError(c, h.log, "AddFollowup failed", err, "contact_id", contactID)
		return
	}
	response.RespondOK(c, gin.H{"followup": followup})
}

// GET /api/contacts/:id/followups
func (h *ContactHandler) ListFollowups(c *gin.Context) {
	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	followups, err := h.contactService.ListFollowups(c.Request.Context(), contactID)
	if err != nil {
		respondServiceError(c, h.log, "ListFollowups failed", err, "contact_id", contactID)
		return
	}
	response.RespondOK(c, gin.H{"followups": followups})
}

// POST /api/contacts/:id/tags
func (h *ContactHandler) AddTag(c *gin.Context) {
	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	var req struct {
		TagID uuid.UUID `json:"tag_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if err := h.contactService.AddTag(c.Request.Context(), contactID, req.TagID); err != nil {
		respondServiceError(c, h.log, "AddTag failed", err, "contact_id", contactID, "tag_id", req.TagID)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// DELETE /api/contacts/:id/tags/:tagID
func (h *ContactHandler) RemoveTag(c *gin.Context) {
	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}
	tagID, err := uuid.Parse(c.Param("tagID"))
	if err != nil || tagID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_tag_id", err)
		return
	}

	if err := h.contactService.RemoveTag(c.Request.Context(), contactID, tagID); err != nil {
		respondServiceError(c, h.log, "RemoveTag failed", err, "contact_id", contactID, "tag_id", tagID)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/contacts/:id/tags
func (h *ContactHandler) ListTags(c *gin.Context) {
	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	tags, err := h.contactService.ListTags(c.Request.Context(), contactID)
	if err != nil {
		respondServiceError(c, h.log, "ListTags failed", err, "contact_id", contactID)
		return
	}
	response.RespondOK(c, gin.H{"tags": tags})
}
