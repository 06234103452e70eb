package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/touchbasehq/touchbase-backend/internal/clients/redis"
	"github.com/touchbasehq/touchbase-backend/internal/data/repos"
	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/domain/apperr"
	"github.com/touchbasehq/touchbase-backend/internal/normalization"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type CreateContactInput struct {
	DisplayName      string
	FirstName        string
	LastName         string
	Starred          bool
	ManualImportance *int
	EngagementScore  float64
	Emails           []string
	Phones           []string
}

// UpdateContactInput uses nil for "unchanged". Emails/Phones replace the
// whole list when present; SetManualImportance with a nil value clears it.
type UpdateContactInput struct {
	DisplayName *string
	FirstName   *string
	LastName    *string
	Starred     *bool

	SetManualImportance bool
	ManualImportance    *int

	EngagementScore *float64

	Emails []string
	Phones []string
}

type AddCommunicationInput struct {
	Channel    string
	Direction  string
	OccurredAt time.Time
	Summary    string
}

type AddFollowupInput struct {
	DueAt time.Time
	Note  string
}

type ContactService interface {
	Create(ctx context.Context, in CreateContactInput) (*types.Contact, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Contact, error)
	List(ctx context.Context, cursor string, limit int) ([]*types.Contact, string, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateContactInput) (*types.Contact, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddNote(ctx context.Context, contactID uuid.UUID, body string) (*types.Note, error)
	ListNotes(ctx context.Context, contactID uuid.UUID) ([]*types.Note, error)

	AddCommunication(ctx context.Context, contactID uuid.UUID, in AddCommunicationInput) (*types.Communication, error)
	ListCommunications(ctx context.Context, contactID uuid.UUID) ([]*types.Communication, error)

	AddFact(ctx context.Context, contactID uuid.UUID, key, value string) (*types.Fact, error)
	ListFacts(ctx context.Context, contactID uuid.UUID) ([]*types.Fact, error)

	AddRelationship(ctx context.Context, contactID, relatedContactID uuid.UUID, kind string) (*types.Relationship, error)
	ListRelationships(ctx context.Context, contactID uuid.UUID) ([]*types.Relationship, error)

	AddFollowup(ctx context.Context, contactID uuid.UUID, in AddFollowupInput) (*types.Followup, error)
	ListFollowups(ctx context.Context, contactID uuid.UUID) ([]*types.Followup, error)

	AddTag(ctx context.Context, contactID, tagID uuid.UUID) error
	RemoveTag(ctx context.Context, contactID, tagID uuid.UUID) error
	ListTags(ctx context.Context, contactID uuid.UUID) ([]*types.Tag, error)
}

type contactService struct {
	db    *gorm.DB
	log   *logger.Logger
	cache *redisclient.Cache

	contactRepo       repos.ContactRepo
	noteRepo          repos.NoteRepo
	communicationRepo repos.CommunicationRepo
	factRepo          repos.FactRepo
	relationshipRepo  repos.RelationshipRepo
	followupRepo      repos.FollowupRepo
	tagRepo           repos.TagRepo
	contactTagRepo    repos.ContactTagRepo
	contactGroupRepo  repos.ContactGroupRepo
}

func NewContactService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cache *redisclient.Cache,
	contactRepo repos.ContactRepo,
	noteRepo repos.NoteRepo,
	communicationRepo repos.CommunicationRepo,
	factRepo repos.FactRepo,
	relationshipRepo repos.RelationshipRepo,
	followupRepo repos.FollowupRepo,
	tagRepo repos.TagRepo,
	contactTagRepo repos.ContactTagRepo,
	contactGroupRepo repos.ContactGroupRepo,
) ContactService {
	return &contactService{
		db:                db,
		log:               baseLog.With("service", "ContactService"),
		cache:             cache,
		contactRepo:       contactRepo,
		noteRepo:          noteRepo,
		communicationRepo: communicationRepo,
		factRepo:          factRepo,
		relationshipRepo:  relationshipRepo,
		followupRepo:      followupRepo,
		tagRepo:           tagRepo,
		contactTagRepo:    contactTagRepo,
		contactGroupRepo:  contactGroupRepo,
	}
}

// bumpRevision invalidates cached duplicate scans. Failures are logged, not
// returned: a stale cache is better than a failed write.
func (s *contactService) bumpRevision(ctx context.Context) {
	if err := s.cache.IncrRevision(ctx); err != nil {
		s.log.Warn("contacts revision bump failed", "error", err)
	}
}

func (s *contactService) Create(ctx context.Context, in CreateContactInput) (*types.Contact, error) {
	const op = "ContactService.Create"

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		return nil, apperr.Validation(op, "display_name is required")
	}

	row := &types.Contact{
		ID:               uuid.New(),
		DisplayName:      displayName,
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		Starred:          in.Starred,
		ManualImportance: in.ManualImportance,
		EngagementScore:  in.EngagementScore,
		Emails:           types.StringList(normalization.Emails(in.Emails)),
		Phones:           types.StringList(normalization.Phones(in.Phones)),
	}
	if _, err := s.contactRepo.Create(ctx, nil, []*types.Contact{row}); err != nil {
		s.log.Error("contact create failed", "error", err)
		return nil, MapError(op, err)
	}
	s.bumpRevision(ctx)
	return row, nil
}

func (s *contactService) Get(ctx context.Context, id uuid.UUID) (*types.Contact, error) {
	const op = "ContactService.Get"

	if id == uuid.Nil {
		return nil, apperr.Validation(op, "contact id is required")
	}
	row, err := s.contactRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, MapError(op, err)
	}
	if row == nil {
		return nil, apperr.NotFound(op, "contact not found")
	}
	return row, nil
}

func (s *contactService) List(ctx context.Context, cursor string, limit int) ([]*types.Contact, string, error) {
	const op = "ContactService.List"

	after, err := decodeCursor(op, cursor)
	if err != nil {
		return nil, "", err
	}
	limit = clampPageLimit(limit)

	var afterAt *time.Time
	var afterID *uuid.UUID
	if after != nil {
		at, id := after.CreatedAt, after.ID
		afterAt, afterID = &at, &id
	}

	// Fetch one extra row to decide whether a next page exists.
	rows, err := s.contactRepo.ListAfterCursor(ctx, nil, afterAt, afterID, limit+1)
	if err != nil {
		return nil, "", MapError(op, err)
	}
	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = encodeCursor(contactCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

func (s *contactService) Update(ctx context.Context, id uuid.UUID, in UpdateContactInput) (*types.Contact, error) {
	const op = "ContactService.Update"

	if id == uuid.Nil {
		return nil, apperr.Validation(op, "contact id is required")
	}
	updates := map[string]interface{}{}
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if name == "" {
			return nil, apperr.Validation(op, "display_name cannot be empty")
		}
		updates["display_name"] = name
	}
	if in.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if in.Starred != nil {
		updates["starred"] = *in.Starred
	}
	if in.SetManualImportance {
		if in.ManualImportance == nil {
			updates["manual_importance"] = nil
		} else {
			updates["manual_importance"] = *in.ManualImportance
		}
	}
	if in.EngagementScore != nil {
		updates["engagement_score"] = *in.EngagementScore
	}
	if in.Emails != nil {
		updates["emails"] = types.StringList(normalization.Emails(in.Emails))
	}
	if in.Phones != nil {
		updates["phones"] = types.StringList(normalization.Phones(in.Phones))
	}

	var out *types.Contact
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.contactRepo.GetByID(ctx, tx, id)
		if err != nil {
			return MapError(op, err)
		}
		if existing == nil {
			return apperr.NotFound(op, "contact not found")
		}
		if len(updates) > 0 {
			if err := s.contactRepo.UpdateFields(ctx, tx, id, updates); err != nil {
				return MapError(op, err)
			}
		}
		out, err = s.contactRepo.GetByID(ctx, tx, id)
		if err != nil {
			return MapError(op, err)
		}
		if out == nil {
			return apperr.NotFound(op, "contact not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.bumpRevision(ctx)
	return out, nil
}

func (s *contactService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "ContactService.Delete"

	if id == uuid.Nil {
		return apperr.Validation(op, "contact id is required")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.contactRepo.GetByID(ctx, tx, id)
		if err != nil {
			return MapError(op, err)
		}
		if existing == nil {
			return apperr.NotFound(op, "contact not found")
		}
		// Join rows are hard rows; drop them with the contact.
		if err := s.contactGroupRepo.FullDeleteByContactIDs(ctx, tx, []uuid.UUID{id}); err != nil {
			return MapError(op, err)
		}
		if err := s.contactTagRepo.FullDeleteByContactIDs(ctx, tx, []uuid.UUID{id}); err != nil {
			return MapError(op, err)
		}
		if err := s.contactRepo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{id}); err != nil {
			return MapError(op, err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("contact delete failed", "error", err, "contact_id", id)
		return err
	}
	s.bumpRevision(ctx)
	return nil
}

// requireContact loads a live contact or fails with a not_found error.
func (s *contactService) requireContact(ctx context.Context, tx *gorm.DB, op string, id uuid.UUID) (*types.Contact, error) {
	if id == uuid.Nil {
		return nil, apperr.Validation(op, "contact id is required")
	}
	row, err := s.contactRepo.GetByID(ctx, tx, id)
	if err != nil {
		return nil, MapError(op, err)
	}
	if row == nil {
		return nil, apperr.NotFound(op, "contact not found")
	}
	return row, nil
}

func (s *contactService) AddNote(ctx context.Context, contactID uuid.UUID, body string) (*types.Note, error) {
	const op = "ContactService.AddNote"

	if strings.TrimSpace(body) == "" {
		return nil, apperr.Validation(op, "note body is required")
	}
	row := &types.Note{ID: uuid.New(), ContactID: contactID, Body: body}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireContact(ctx, tx, op, contactID); err != nil {
			return err
		}
		_, err := s.noteRepo.Create(ctx, tx, []*types.Note{row})
		return MapError(op, err)
	})
	if err != nil {
		return nil, err
	}
	s.bumpRevision(ctx)
	return row, nil
}

func (s *contactService) ListNotes(ctx context.Context, contactID uuid.UUID) ([]*types.Note, error) {
	const op = "ContactService.ListNotes"

	if _, err := s.requireContact(ctx, nil, op, contactID); err != nil {
		return nil, err
	}
	rows, err := s.noteRepo.GetByContactID(ctx, nil, contactID)
	if err != nil {
		return nil, MapError(op, err)
	}
	return rows, nil
}

func (s *contactService) AddCommunication(ctx context.Context, contactID uuid.UUID, in AddCommunicationInput) (*types.Communication, error) {
	const op = "ContactService.AddCommunication"

	if !types.KnownChannel(in.Channel) {
		return nil, apperr.Validation(op, "unknown communication channel")
	}
	if !types.KnownDirection(in.Direction) {
		return nil, apperr.Validation(op, "unknown communication direction")
	}
	if in.OccurredAt.IsZero() {
		return nil, apperr.Validation(op, "occurred_at is required")
	}

	row := &types.Communication{
		ID:         uuid.New(),
		ContactID:  contactID,
		Channel:    in.Channel,
		Direction:  in.Direction,
		OccurredAt: in.OccurredAt,
		Summary:    in.Summary,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireContact(ctx, tx, op, contactID); err != nil {
			return err
		}
		_, err := s.communicationRepo.Create(ctx, tx, []*types.Communication{row})
		return MapError(op, err)
	})
	if err != nil {
		return nil, err
	}
	s.bumpRevision(ctx)
	return row, nil
}

func (s *contactService) ListCommunications(ctx context.Context, contactID uuid.UUID) ([]*types.Communication, error) {
	const op = "ContactService.ListCommunications"

	if _, err := s.requireContact(ctx, nil, op, contactID); err != nil {
		return nil, err
	}
	rows, err := s.communicationRepo.GetByContactID(ctx, nil, contactID)
	if err != nil {
		return nil, MapError(op, err)
	}
	return rows, nil
}

func (s *contactService) AddFact(ctx context.Context, contactID uuid.UUID, key, value string) (*types.Fact, error) {
	const op = "ContactService.AddFact"

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperr.Validation(op, "fact key is required")
	}
	row := &types.Fact{ID: uuid.New(), ContactID: contactID, Key: key, Value: value}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireContact(ctx, tx, op, contactID); err != nil {
			return err
		}
		_, err := s.factRepo.Create(ctx, tx, []*types.Fact{row})
		return MapError(op, err)
	})
	if err != nil {
		return nil, err
	}
	s.bumpRevision(ctx)
	return row, nil
}

func (s *contactService) ListFacts(ctx context.Context, contactID uuid.UUID) ([]*types.Fact, error) {
	const op = "ContactService.ListFacts"

	if _, err := s.requireContact(ctx, nil, op, contactID); err != nil {
		return nil, err
	}
	rows, err := s.factRepo.GetByContactID(ctx, nil, contactID)
	if err != nil {
		return nil, MapError(op, err)
	}
	return rows, nil
}

func (s *contactService) AddRelationship(ctx context.Context, contactID, relatedContactID uuid.UUID, kind string) (*types.Relationship, error) {
	const op = "ContactService.AddRelationship"

	kind = strings.TrimSpace(strings.ToLower(kind))
	if kind == "" {
		return nil, apperr.Validation(op, "relationship kind is required")
	}
	if contactID == relatedContactID {
		return nil, apperr.Validation(op, "a contact cannot relate to itself")
	}

	row := &types.Relationship{
		ID:               uuid.New(),
		ContactID:        contactID,
		RelatedContactID: relatedContactID,
		Kind:             kind,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireContact(ctx, tx, op, contactID); err != nil {
			return err
		}
		related, err := s.contactRepo.GetByID(ctx, tx, relatedContactID)
		if err != nil {
			return MapError(op, err)
		}
		if related == nil {
			return apperr.NotFound(op, "related contact not found")
		}
		// Unique (contact, related, kind) index turns replays into conflict.
		_, err = s.relationshipRepo.Create(ctx, tx, []*types.Relationship{row})
		return MapError(op, err)
	})
	if err != nil {
		return nil, err
	}
	s.bumpRevision(ctx)
	return row, nil
}

func (s *contactService) ListRelationships(ctx context.Context, contactID uuid.UUID) ([]*types.Relationship, error) {
	const op = "ContactService.ListRelationships"

	if _, err := s.requireContact(ctx, nil, op, contactID); err != nil {
		return nil, err
	}
	rows, err := s.relationshipRepo.GetInvolvingContact(ctx, nil, contactID)
	if err != nil {
		return nil, MapError(op, err)
	}
	return rows, nil
}

func (s *contactService) AddFollowup(ctx context.Context, contactID uuid.UUID, in AddFollowupInput) (*types.Followup, error) {
	const op = "ContactService.AddFollowup"

	if in.DueAt.IsZero() {
		return nil, apperr.Validation(op, "due_at is required")
	}
	row := &types.Followup{ID: uuid.New(), ContactID: contactID, DueAt: in.DueAt, Note: in.Note}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireContact(ctx, tx, op, contactID); err != nil {
			return err
		}
		_, err := s.followupRepo.Create(ctx, tx, []*types.Followup{row})
		return MapError(op, err)
	})
	if err != nil {
		return nil, err
	}
	s.bumpRevision(ctx)
	return row, nil
}

func (s *contactService) ListFollowups(ctx context.Context, contactID uuid.UUID) ([]*types.Followup, error) {
	const op = "ContactService.ListFollowups"

	if _, err := s.requireContact(ctx, nil, op, contactID); err != nil {
		return nil, err
	}
	rows, err := s.followupRepo.GetByContactID(ctx, nil, contactID)
	if err != nil {
		return nil, MapError(op, err)
	}
	return rows, nil
}

func (s *contactService) AddTag(ctx context.Context, contactID, tagID uuid.UUID) error {
	const op = "ContactService.AddTag"

	if tagID == uuid.Nil {
		return apperr.Validation(op, "tag id is required")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireContact(ctx, tx, op, contactID); err != nil {
			return err
		}
		tag, err := s.tagRepo.GetByID(ctx, tx, tagID)
		if err != nil {
			return MapError(op, err)
		}
		if tag == nil {
			return apperr.NotFound(op, "tag not found")
		}
		_, err = s.contactTagRepo.CreateIgnoreDuplicates(ctx, tx, []*types.ContactTag{
			{ID: uuid.New(), ContactID: contactID, TagID: tagID},
		})
		return MapError(op, err)
	})
	if err != nil {
		return err
	}
	s.bumpRevision(ctx)
	return nil
}

func (s *contactService) RemoveTag(ctx context.Context, contactID, tagID uuid.UUID) error {
	const op = "ContactService.RemoveTag"

	if tagID == uuid.Nil {
		return apperr.Validation(op, "tag id is required")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireContact(ctx, tx, op, contactID); err != nil {
			return err
		}
		tag, err := s.tagRepo.GetByID(ctx, tx, tagID)
		if err != nil {
			return MapError(op, err)
		}
		if tag == nil {
			return apperr.NotFound(op, "tag not found")
		}
		// Untagging an untagged contact is a no-op.
		return MapError(op, s.contactTagRepo.FullDeleteByContactIDAndTagIDs(ctx, tx, contactID, []uuid.UUID{tagID}))
	})
	if err != nil {
		return err
	}
	s.bumpRevision(ctx)
	return nil
}

func (s *contactService) ListTags(ctx context.Context, contactID uuid.UUID) ([]*types.Tag, error) {
	const op = "ContactService.ListTags"

	if _, err := s.requireContact(ctx, nil, op, contactID); err != nil {
		return nil, err
	}
	joins, err := s.contactTagRepo.GetByContactID(ctx, nil, contactID)
	if err != nil {
		return nil, MapError(op, err)
	}
	ids := make([]uuid.UUID, 0, len(joins))
	for _, j := range joins {
		ids = append(ids, j.TagID)
	}
	tags, err := s.tagRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, MapError(op, err)
	}
	return tags, nil
}
