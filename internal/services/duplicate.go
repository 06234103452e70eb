package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/touchbasehq/touchbase-backend/internal/clients/redis"
	"github.com/touchbasehq/touchbase-backend/internal/data/repos"
	"github.com/touchbasehq/touchbase-backend/internal/dedupe"
	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/domain/apperr"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
	"github.com/touchbasehq/touchbase-backend/internal/utils"
)

const (
	scanBatchSize      = 500
	defaultScanTTLSecs = 600
)

// MergeCounts tallies one side of a merge per table.
type MergeCounts struct {
	Notes          int64 `json:"notes"`
	Communications int64 `json:"communications"`
	Facts          int64 `json:"facts"`
	Relationships  int64 `json:"relationships"`
	Followups      int64 `json:"followups"`
	Groups         int64 `json:"groups"`
	Tags           int64 `json:"tags"`
}

// MergeResult reports what a merge moved onto the target and what was
// dropped as duplicate. Preview returns the same shape without writing.
type MergeResult struct {
	TargetID uuid.UUID   `json:"target_id"`
	SourceID uuid.UUID   `json:"source_id"`
	Moved    MergeCounts `json:"moved"`
	Deduped  MergeCounts `json:"deduped"`
}

type DuplicateService interface {
	// Scan flags candidate duplicate pairs across all live contacts.
	Scan(ctx context.Context) ([]dedupe.CandidatePair, error)

	// MergePreview computes the merge outcome without writing anything.
	MergePreview(ctx context.Context, targetID, sourceID uuid.UUID) (*MergeResult, error)

	// Merge folds the source contact into the target in one transaction
	// and soft-deletes the source.
	Merge(ctx context.Context, targetID, sourceID uuid.UUID) (*MergeResult, error)
}

type duplicateService struct {
	db      *gorm.DB
	log     *logger.Logger
	cache   *redisclient.Cache
	scanTTL time.Duration

	contactRepo       repos.ContactRepo
	noteRepo          repos.NoteRepo
	communicationRepo repos.CommunicationRepo
	factRepo          repos.FactRepo
	relationshipRepo  repos.RelationshipRepo
	followupRepo      repos.FollowupRepo
	contactTagRepo    repos.ContactTagRepo
	contactGroupRepo  repos.ContactGroupRepo
}

func NewDuplicateService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cache *redisclient.Cache,
	contactRepo repos.ContactRepo,
	noteRepo repos.NoteRepo,
	communicationRepo repos.CommunicationRepo,
	factRepo repos.FactRepo,
	relationshipRepo repos.RelationshipRepo,
	followupRepo repos.FollowupRepo,
	contactTagRepo repos.ContactTagRepo,
	contactGroupRepo repos.ContactGroupRepo,
) DuplicateService {
	scanTTLSecs := utils.GetEnvAsInt("DUPLICATE_SCAN_TTL_SECONDS", defaultScanTTLSecs, baseLog)
	return &duplicateService{
		db:                db,
		log:               baseLog.With("service", "DuplicateService"),
		cache:             cache,
		scanTTL:           time.Duration(scanTTLSecs) * time.Second,
		contactRepo:       contactRepo,
		noteRepo:          noteRepo,
		communicationRepo: communicationRepo,
		factRepo:          factRepo,
		relationshipRepo:  relationshipRepo,
		followupRepo:      followupRepo,
		contactTagRepo:    contactTagRepo,
		contactGroupRepo:  contactGroupRepo,
	}
}

func (s *duplicateService) Scan(ctx context.Context) ([]dedupe.CandidatePair, error) {
	const op = "DuplicateService.Scan"

	// Scan results are keyed by the contacts revision: any contact
	// mutation or merge bumps it and orphans the old entry.
	rev, err := s.cache.Revision(ctx)
	if err != nil {
		s.log.Warn("scan cache revision read failed", "error", err)
	}
	cacheKey := fmt.Sprintf("touchbase:duplicates:scan:%d", rev)

	var cached []dedupe.CandidatePair
	if hit, err := s.cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		s.log.Warn("scan cache read failed", "error", err)
	} else if hit {
		return cached, nil
	}

	records, err := s.loadContactRecords(ctx)
	if err != nil {
		return nil, MapError(op, err)
	}
	pairs, err := dedupe.Detect(ctx, records)
	if err != nil {
		return nil, MapError(op, err)
	}

	if err := s.cache.SetJSON(ctx, cacheKey, pairs, s.scanTTL); err != nil {
		s.log.Warn("scan cache write failed", "error", err)
	}
	return pairs, nil
}

func (s *duplicateService) loadContactRecords(ctx context.Context) ([]dedupe.ContactRecord, error) {
	var (
		records []dedupe.ContactRecord
		afterAt *time.Time
		afterID *uuid.UUID
	)
	for {
		batch, err := s.contactRepo.ListAfterCursor(ctx, nil, afterAt, afterID, scanBatchSize)
		if err != nil {
			return nil, err
		}
		for _, c := range batch {
			records = append(records, dedupe.ContactRecord{
				ID:     c.ID,
				Name:   c.DisplayName,
				Emails: c.EmailList(),
				Phones: c.PhoneList(),
			})
		}
		if len(batch) < scanBatchSize {
			return records, nil
		}
		last := batch[len(batch)-1]
		at, id := last.CreatedAt, last.ID
		afterAt, afterID = &at, &id
	}
}

func (s *duplicateService) MergePreview(ctx context.Context, targetID, sourceID uuid.UUID) (*MergeResult, error) {
	const op = "DuplicateService.MergePreview"

	var out *MergeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkMergePair(ctx, tx, op, targetID, sourceID); err != nil {
			return err
		}
		plan, err := s.buildMergePlan(ctx, tx, op, targetID, sourceID)
		if err != nil {
			return err
		}
		out = &MergeResult{
			TargetID: targetID,
			SourceID: sourceID,
			Moved:    plan.moved,
			Deduped:  plan.deduped,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *duplicateService) Merge(ctx context.Context, targetID, sourceID uuid.UUID) (*MergeResult, error) {
	const op = "DuplicateService.Merge"

	var out *MergeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Both rows are re-checked inside the transaction: merging into a
		// just-deleted contact must fail, and A<-B then B<-A must be
		// impossible.
		if err := s.checkMergePair(ctx, tx, op, targetID, sourceID); err != nil {
			return err
		}
		plan, err := s.buildMergePlan(ctx, tx, op, targetID, sourceID)
		if err != nil {
			return err
		}

		result := MergeResult{TargetID: targetID, SourceID: sourceID, Deduped: plan.deduped}

		if result.Moved.Notes, err = s.noteRepo.ReassignContact(ctx, tx, sourceID, targetID); err != nil {
			return MapError(op, err)
		}
		if result.Moved.Communications, err = s.communicationRepo.ReassignContact(ctx, tx, sourceID, targetID); err != nil {
			return MapError(op, err)
		}
		if result.Moved.Facts, err = s.factRepo.ReassignContact(ctx, tx, sourceID, targetID); err != nil {
			return MapError(op, err)
		}
		if result.Moved.Followups, err = s.followupRepo.ReassignContact(ctx, tx, sourceID, targetID); err != nil {
			return MapError(op, err)
		}

		// Relationships: drop collapsed edges first so rewrites cannot
		// trip the unique (contact, related, kind) index.
		if len(plan.relationshipDrops) > 0 {
			if err := s.relationshipRepo.FullDeleteByIDs(ctx, tx, plan.relationshipDrops); err != nil {
				return MapError(op, err)
			}
		}
		for _, upd := range plan.relationshipUpdates {
			if err := s.relationshipRepo.UpdateFields(ctx, tx, upd.id, upd.updates); err != nil {
				return MapError(op, err)
			}
		}
		result.Moved.Relationships = int64(len(plan.relationshipUpdates))

		if result.Moved.Groups, err = s.contactGroupRepo.CreateIgnoreDuplicates(ctx, tx, plan.groupAdds); err != nil {
			return MapError(op, err)
		}
		if err := s.contactGroupRepo.FullDeleteByContactIDs(ctx, tx, []uuid.UUID{sourceID}); err != nil {
			return MapError(op, err)
		}
		if result.Moved.Tags, err = s.contactTagRepo.CreateIgnoreDuplicates(ctx, tx, plan.tagAdds); err != nil {
			return MapError(op, err)
		}
		if err := s.contactTagRepo.FullDeleteByContactIDs(ctx, tx, []uuid.UUID{sourceID}); err != nil {
			return MapError(op, err)
		}

		if err := s.contactRepo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{sourceID}); err != nil {
			return MapError(op, err)
		}

		out = &result
		return nil
	})
	if err != nil {
		s.log.Error("merge failed", "error", err, "target_id", targetID, "source_id", sourceID)
		return nil, err
	}

	s.log.Info("contacts merged",
		"target_id", targetID,
		"source_id", sourceID,
		"moved_notes", out.Moved.Notes,
		"moved_relationships", out.Moved.Relationships,
	)
	if err := s.cache.IncrRevision(ctx); err != nil {
		s.log.Warn("contacts revision bump failed", "error", err)
	}
	return out, nil
}

// checkMergePair validates the pair against current transaction state.
func (s *duplicateService) checkMergePair(ctx context.Context, tx *gorm.DB, op string, targetID, sourceID uuid.UUID) error {
	if targetID == uuid.Nil || sourceID == uuid.Nil {
		return apperr.Validation(op, "target_id and source_id are required")
	}
	if targetID == sourceID {
		return apperr.Validation(op, "cannot merge a contact into itself")
	}
	target, err := s.contactRepo.GetByID(ctx, tx, targetID)
	if err != nil {
		return MapError(op, err)
	}
	if target == nil {
		return apperr.NotFound(op, "target contact not found")
	}
	source, err := s.contactRepo.GetByID(ctx, tx, sourceID)
	if err != nil {
		return MapError(op, err)
	}
	if source == nil {
		return apperr.NotFound(op, "source contact not found")
	}
	return nil
}

type relationshipUpdate struct {
	id      uuid.UUID
	updates map[string]interface{}
}

type mergePlan struct {
	moved   MergeCounts
	deduped MergeCounts

	relationshipUpdates []relationshipUpdate
	relationshipDrops   []uuid.UUID
	groupAdds           []*types.ContactGroup
	tagAdds             []*types.ContactTag
}

// buildMergePlan computes, against transaction state, exactly which rows a
// merge would move and which it would drop as duplicates.
func (s *duplicateService) buildMergePlan(ctx context.Context, tx *gorm.DB, op string, targetID, sourceID uuid.UUID) (*mergePlan, error) {
	plan := &mergePlan{}
	var err error

	sourceIDs := []uuid.UUID{sourceID}
	if plan.moved.Notes, err = s.noteRepo.CountByContactIDs(ctx, tx, sourceIDs); err != nil {
		return nil, MapError(op, err)
	}
	if plan.moved.Communications, err = s.communicationRepo.CountByContactIDs(ctx, tx, sourceIDs); err != nil {
		return nil, MapError(op, err)
	}
	if plan.moved.Facts, err = s.factRepo.CountByContactIDs(ctx, tx, sourceIDs); err != nil {
		return nil, MapError(op, err)
	}
	if plan.moved.Followups, err = s.followupRepo.CountByContactIDs(ctx, tx, sourceIDs); err != nil {
		return nil, MapError(op, err)
	}

	sourceEdges, err := s.relationshipRepo.GetInvolvingContact(ctx, tx, sourceID)
	if err != nil {
		return nil, MapError(op, err)
	}
	targetEdges, err := s.relationshipRepo.GetInvolvingContact(ctx, tx, targetID)
	if err != nil {
		return nil, MapError(op, err)
	}
	planRelationships(plan, sourceEdges, targetEdges, sourceID, targetID)

	sourceGroups, err := s.contactGroupRepo.GetByContactID(ctx, tx, sourceID)
	if err != nil {
		return nil, MapError(op, err)
	}
	targetGroups, err := s.contactGroupRepo.GetByContactID(ctx, tx, targetID)
	if err != nil {
		return nil, MapError(op, err)
	}
	targetGroupSet := make(map[uuid.UUID]struct{}, len(targetGroups))
	for _, j := range targetGroups {
		targetGroupSet[j.GroupID] = struct{}{}
	}
	for _, j := range sourceGroups {
		if _, dup := targetGroupSet[j.GroupID]; dup {
			plan.deduped.Groups++
			continue
		}
		targetGroupSet[j.GroupID] = struct{}{}
		plan.groupAdds = append(plan.groupAdds, &types.ContactGroup{
			ID:        uuid.New(),
			ContactID: targetID,
			GroupID:   j.GroupID,
		})
	}
	plan.moved.Groups = int64(len(plan.groupAdds))

	sourceTags, err := s.contactTagRepo.GetByContactID(ctx, tx, sourceID)
	if err != nil {
		return nil, MapError(op, err)
	}
	targetTags, err := s.contactTagRepo.GetByContactID(ctx, tx, targetID)
	if err != nil {
		return nil, MapError(op, err)
	}
	targetTagSet := make(map[uuid.UUID]struct{}, len(targetTags))
	for _, j := range targetTags {
		targetTagSet[j.TagID] = struct{}{}
	}
	for _, j := range sourceTags {
		if _, dup := targetTagSet[j.TagID]; dup {
			plan.deduped.Tags++
			continue
		}
		targetTagSet[j.TagID] = struct{}{}
		plan.tagAdds = append(plan.tagAdds, &types.ContactTag{
			ID:        uuid.New(),
			ContactID: targetID,
			TagID:     j.TagID,
		})
	}
	plan.moved.Tags = int64(len(plan.tagAdds))

	return plan, nil
}

// planRelationships rewrites every edge touching the source to point at the
// target, dropping rewrites that collapse into self-loops or duplicate an
// edge the target already has.
func planRelationships(plan *mergePlan, sourceEdges, targetEdges []*types.Relationship, sourceID, targetID uuid.UUID) {
	edgeKey := func(from, to uuid.UUID, kind string) string {
		return from.String() + "|" + to.String() + "|" + kind
	}
	seen := make(map[string]struct{}, len(targetEdges))
	for _, e := range targetEdges {
		seen[edgeKey(e.ContactID, e.RelatedContactID, e.Kind)] = struct{}{}
	}

	for _, e := range sourceEdges {
		from, to := e.ContactID, e.RelatedContactID
		updates := map[string]interface{}{}
		if from == sourceID {
			from = targetID
			updates["contact_id"] = targetID
		}
		if to == sourceID {
			to = targetID
			updates["related_contact_id"] = targetID
		}
		if from == to {
			plan.relationshipDrops = append(plan.relationshipDrops, e.ID)
			plan.deduped.Relationships++
			continue
		}
		key := edgeKey(from, to, e.Kind)
		if _, dup := seen[key]; dup {
			plan.relationshipDrops = append(plan.relationshipDrops, e.ID)
			plan.deduped.Relationships++
			continue
		}
		seen[key] = struct{}{}
		plan.relationshipUpdates = append(plan.relationshipUpdates, relationshipUpdate{id: e.ID, updates: updates})
	}
}
