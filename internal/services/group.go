package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/touchbasehq/touchbase-backend/internal/data/repos"
	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/domain/apperr"
	"github.com/touchbasehq/touchbase-backend/internal/hierarchy"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type CreateGroupInput struct {
	Name         string
	ParentID     *uuid.UUID
	FollowupDays *int
}

// UpdateGroupInput distinguishes "field absent" from "field set to null":
// SetParent/SetFollowupDays are true when the caller supplied the key at all.
type UpdateGroupInput struct {
	Name *string

	SetParent bool
	ParentID  *uuid.UUID

	SetFollowupDays bool
	FollowupDays    *int
}

type GroupService interface {
	Create(ctx context.Context, in CreateGroupInput) (*types.Group, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateGroupInput) (*types.Group, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ListTree renders the whole forest, name-sorted, with per-group
	// live-contact counts.
	ListTree(ctx context.Context) ([]*hierarchy.Node, error)

	AddContact(ctx context.Context, groupID, contactID uuid.UUID) error
	RemoveContact(ctx context.Context, groupID, contactID uuid.UUID) error
}

type groupService struct {
	db  *gorm.DB
	log *logger.Logger

	groupRepo        repos.GroupRepo
	contactRepo      repos.ContactRepo
	contactGroupRepo repos.ContactGroupRepo
}

func NewGroupService(
	db *gorm.DB,
	baseLog *logger.Logger,
	groupRepo repos.GroupRepo,
	contactRepo repos.ContactRepo,
	contactGroupRepo repos.ContactGroupRepo,
) GroupService {
	return &groupService{
		db:               db,
		log:              baseLog.With("service", "GroupService"),
		groupRepo:        groupRepo,
		contactRepo:      contactRepo,
		contactGroupRepo: contactGroupRepo,
	}
}

func (s *groupService) Create(ctx context.Context, in CreateGroupInput) (*types.Group, error) {
	const op = "GroupService.Create"

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation(op, "group name is required")
	}
	if in.FollowupDays != nil && *in.FollowupDays < 0 {
		return nil, apperr.Validation(op, "followup_days cannot be negative")
	}

	row := &types.Group{
		ID:           uuid.New(),
		Name:         name,
		ParentID:     in.ParentID,
		FollowupDays: in.FollowupDays,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Depth is checked against transaction state so a concurrent
		// reparent cannot sneak the new node past the limit.
		if in.ParentID != nil {
			forest, err := s.loadForest(ctx, tx)
			if err != nil {
				return MapError(op, err)
			}
			if !forest.Has(*in.ParentID) {
				return apperr.NotFound(op, "parent group not found")
			}
			parentDepth, err := forest.Depth(*in.ParentID)
			if err != nil {
				return apperr.Internal(op, "group hierarchy is corrupt", err)
			}
			if parentDepth+1 > types.GroupMaxDepth {
				return apperr.Conflict(op, fmt.Sprintf("maximum hierarchy depth of %d exceeded", types.GroupMaxDepth))
			}
		}
		if _, err := s.groupRepo.Create(ctx, tx, []*types.Group{row}); err != nil {
			return MapError(op, err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("group create failed", "error", err)
		return nil, err
	}
	return row, nil
}

func (s *groupService) Update(ctx context.Context, id uuid.UUID, in UpdateGroupInput) (*types.Group, error) {
	const op = "GroupService.Update"

	if id == uuid.Nil {
		return nil, apperr.Validation(op, "group id is required")
	}
	var name string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation(op, "group name cannot be empty")
		}
	}
	if in.SetFollowupDays && in.FollowupDays != nil && *in.FollowupDays < 0 {
		return nil, apperr.Validation(op, "followup_days cannot be negative")
	}

	var out *types.Group
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		forest, err := s.loadForest(ctx, tx)
		if err != nil {
			return MapError(op, err)
		}
		if !forest.Has(id) {
			return apperr.NotFound(op, "group not found")
		}

		updates := map[string]interface{}{}
		if in.Name != nil {
			updates["name"] = name
		}
		if in.SetFollowupDays {
			if in.FollowupDays == nil {
				updates["followup_days"] = nil
			} else {
				updates["followup_days"] = *in.FollowupDays
			}
		}
		if in.SetParent {
			switch {
			case in.ParentID == nil:
				updates["parent_id"] = nil
			case *in.ParentID == id:
				return apperr.Conflict(op, "a group cannot be its own parent")
			default:
				if !forest.Has(*in.ParentID) {
					return apperr.NotFound(op, "parent group not found")
				}
				descendants, err := forest.Descendants(id)
				if err != nil {
					return apperr.Internal(op, "group hierarchy is corrupt", err)
				}
				if _, ok := descendants[*in.ParentID]; ok {
					return apperr.Conflict(op, "reparenting would create a cycle")
				}
				parentDepth, err := forest.Depth(*in.ParentID)
				if err != nil {
					return apperr.Internal(op, "group hierarchy is corrupt", err)
				}
				height, err := forest.SubtreeHeight(id)
				if err != nil {
					return apperr.Internal(op, "group hierarchy is corrupt", err)
				}
				if parentDepth+height+1 > types.GroupMaxDepth {
					return apperr.Conflict(op, fmt.Sprintf("maximum hierarchy depth of %d exceeded", types.GroupMaxDepth))
				}
				updates["parent_id"] = *in.ParentID
			}
		}

		if len(updates) > 0 {
			if err := s.groupRepo.UpdateFields(ctx, tx, id, updates); err != nil {
				return MapError(op, err)
			}
		}

		out, err = s.groupRepo.GetByID(ctx, tx, id)
		if err != nil {
			return MapError(op, err)
		}
		if out == nil {
			return apperr.NotFound(op, "group not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *groupService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "GroupService.Delete"

	if id == uuid.Nil {
		return apperr.Validation(op, "group id is required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := s.groupRepo.GetByID(ctx, tx, id)
		if err != nil {
			return MapError(op, err)
		}
		if g == nil {
			return apperr.NotFound(op, "group not found")
		}
		children, err := s.groupRepo.GetByParentIDs(ctx, tx, []uuid.UUID{id})
		if err != nil {
			return MapError(op, err)
		}
		if len(children) > 0 {
			return apperr.Conflict(op, "group has child groups; delete children first")
		}
		if err := s.contactGroupRepo.FullDeleteByGroupIDs(ctx, tx, []uuid.UUID{id}); err != nil {
			return MapError(op, err)
		}
		if err := s.groupRepo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{id}); err != nil {
			return MapError(op, err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("group delete failed", "error", err, "group_id", id)
	}
	return err
}

func (s *groupService) ListTree(ctx context.Context) ([]*hierarchy.Node, error) {
	const op = "GroupService.ListTree"

	groups, err := s.groupRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, MapError(op, err)
	}
	ids := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	counts, err := s.contactGroupRepo.CountByGroupIDs(ctx, nil, ids)
	if err != nil {
		return nil, MapError(op, err)
	}
	return hierarchy.BuildTree(groups, counts), nil
}

func (s *groupService) AddContact(ctx context.Context, groupID, contactID uuid.UUID) error {
	const op = "GroupService.AddContact"

	if groupID == uuid.Nil || contactID == uuid.Nil {
		return apperr.Validation(op, "group id and contact id are required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := s.groupRepo.GetByID(ctx, tx, groupID)
		if err != nil {
			return MapError(op, err)
		}
		if g == nil {
			return apperr.NotFound(op, "group not found")
		}
		c, err := s.contactRepo.GetByID(ctx, tx, contactID)
		if err != nil {
			return MapError(op, err)
		}
		if c == nil {
			return apperr.NotFound(op, "contact not found")
		}
		// Insert-ignore keeps re-adding idempotent.
		_, err = s.contactGroupRepo.CreateIgnoreDuplicates(ctx, tx, []*types.ContactGroup{
			{ID: uuid.New(), ContactID: contactID, GroupID: groupID},
		})
		return MapError(op, err)
	})
}

func (s *groupService) RemoveContact(ctx context.Context, groupID, contactID uuid.UUID) error {
	const op = "GroupService.RemoveContact"

	if groupID == uuid.Nil || contactID == uuid.Nil {
		return apperr.Validation(op, "group id and contact id are required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := s.groupRepo.GetByID(ctx, tx, groupID)
		if err != nil {
			return MapError(op, err)
		}
		if g == nil {
			return apperr.NotFound(op, "group not found")
		}
		c, err := s.contactRepo.GetByID(ctx, tx, contactID)
		if err != nil {
			return MapError(op, err)
		}
		if c == nil {
			return apperr.NotFound(op, "contact not found")
		}
		// Removing an absent membership is a no-op.
		_, err = s.contactGroupRepo.FullDeleteByContactIDAndGroupIDs(ctx, tx, contactID, []uuid.UUID{groupID})
		return MapError(op, err)
	})
}

func (s *groupService) loadForest(ctx context.Context, tx *gorm.DB) (*hierarchy.Forest, error) {
	groups, err := s.groupRepo.GetAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	return hierarchy.NewForest(groups), nil
}
