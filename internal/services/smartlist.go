package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/touchbasehq/touchbase-backend/internal/data/repos"
	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/domain/apperr"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
	"github.com/touchbasehq/touchbase-backend/internal/rules"
)

type UpdateSmartListInput struct {
	Name  *string
	Rules json.RawMessage // nil = unchanged
}

type SmartListService interface {
	Create(ctx context.Context, name string, ruleDoc json.RawMessage) (*types.SmartList, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateSmartListInput) (*types.SmartList, error)
	Get(ctx context.Context, id uuid.UUID) (*types.SmartList, error)
	List(ctx context.Context) ([]*types.SmartList, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// GetMatchingContacts evaluates the stored rule set against live
	// contacts in stable (created_at, id) order. The returned cursor is
	// empty once the table is exhausted.
	GetMatchingContacts(ctx context.Context, id uuid.UUID, cursor string, limit int) ([]*types.Contact, string, error)
}

type smartListService struct {
	db  *gorm.DB
	log *logger.Logger

	smartListRepo repos.SmartListRepo
	matcher       *contactMatcher
}

func NewSmartListService(
	db *gorm.DB,
	baseLog *logger.Logger,
	smartListRepo repos.SmartListRepo,
	contactRepo repos.ContactRepo,
	contactTagRepo repos.ContactTagRepo,
	contactGroupRepo repos.ContactGroupRepo,
	factRepo repos.FactRepo,
) SmartListService {
	return &smartListService{
		db:            db,
		log:           baseLog.With("service", "SmartListService"),
		smartListRepo: smartListRepo,
		matcher: &contactMatcher{
			contactRepo:      contactRepo,
			contactTagRepo:   contactTagRepo,
			contactGroupRepo: contactGroupRepo,
			factRepo:         factRepo,
		},
	}
}

// parseRuleDoc validates and normalizes an incoming rule document.
func parseRuleDoc(op string, raw json.RawMessage) (rules.RuleSet, []byte, error) {
	rs, err := rules.Parse(raw)
	if err != nil {
		return rules.RuleSet{}, nil, apperr.Validation(op, "rules document is not valid JSON")
	}
	rs.Normalize()
	if err := rs.Validate(); err != nil {
		return rules.RuleSet{}, nil, apperr.Validation(op, err.Error())
	}
	encoded, err := rules.Encode(rs)
	if err != nil {
		return rules.RuleSet{}, nil, apperr.Internal(op, "encode rules", err)
	}
	return rs, encoded, nil
}

func (s *smartListService) Create(ctx context.Context, name string, ruleDoc json.RawMessage) (*types.SmartList, error) {
	const op = "SmartListService.Create"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation(op, "smart list name is required")
	}
	_, encoded, err := parseRuleDoc(op, ruleDoc)
	if err != nil {
		return nil, err
	}

	row := &types.SmartList{
		ID:    uuid.New(),
		Name:  name,
		Rules: encoded,
	}
	if _, err := s.smartListRepo.Create(ctx, nil, []*types.SmartList{row}); err != nil {
		s.log.Error("smart list create failed", "error", err)
		return nil, MapError(op, err)
	}
	return row, nil
}

func (s *smartListService) Update(ctx context.Context, id uuid.UUID, in UpdateSmartListInput) (*types.SmartList, error) {
	const op = "SmartListService.Update"

	if id == uuid.Nil {
		return nil, apperr.Validation(op, "smart list id is required")
	}
	var name string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation(op, "smart list name cannot be empty")
		}
	}
	var encoded []byte
	if in.Rules != nil {
		var err error
		_, encoded, err = parseRuleDoc(op, in.Rules)
		if err != nil {
			return nil, err
		}
	}

	var out *types.SmartList
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.smartListRepo.GetByID(ctx, tx, id)
		if err != nil {
			return MapError(op, err)
		}
		if existing == nil {
			return apperr.NotFound(op, "smart list not found")
		}

		updates := map[string]interface{}{}
		if in.Name != nil {
			updates["name"] = name
		}
		if in.Rules != nil {
			updates["rules"] = datatypes.JSON(encoded)
		}
		if len(updates) > 0 {
			if err := s.smartListRepo.UpdateFields(ctx, tx, id, updates); err != nil {
				return MapError(op, err)
			}
		}

		out, err = s.smartListRepo.GetByID(ctx, tx, id)
		if err != nil {
			return MapError(op, err)
		}
		if out == nil {
			return apperr.NotFound(op, "smart list not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *smartListService) Get(ctx context.Context, id uuid.UUID) (*types.SmartList, error) {
	const op = "SmartListService.Get"

	if id == uuid.Nil {
		return nil, apperr.Validation(op, "smart list id is required")
	}
	row, err := s.smartListRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, MapError(op, err)
	}
	if row == nil {
		return nil, apperr.NotFound(op, "smart list not found")
	}
	return row, nil
}

func (s *smartListService) List(ctx context.Context) ([]*types.SmartList, error) {
	const op = "SmartListService.List"

	rows, err := s.smartListRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, MapError(op, err)
	}
	return rows, nil
}

func (s *smartListService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "SmartListService.Delete"

	if id == uuid.Nil {
		return apperr.Validation(op, "smart list id is required")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.smartListRepo.GetByID(ctx, tx, id)
		if err != nil {
			return MapError(op, err)
		}
		if row == nil {
			return apperr.NotFound(op, "smart list not found")
		}
		if err := s.smartListRepo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{id}); err != nil {
			return MapError(op, err)
		}
		return nil
	})
}

func (s *smartListService) GetMatchingContacts(ctx context.Context, id uuid.UUID, cursor string, limit int) ([]*types.Contact, string, error) {
	const op = "SmartListService.GetMatchingContacts"

	if id == uuid.Nil {
		return nil, "", apperr.Validation(op, "smart list id is required")
	}
	after, err := decodeCursor(op, cursor)
	if err != nil {
		return nil, "", err
	}

	row, err := s.smartListRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, "", MapError(op, err)
	}
	if row == nil {
		return nil, "", apperr.NotFound(op, "smart list not found")
	}

	rs, err := rules.Parse(row.Rules)
	if err != nil {
		return nil, "", apperr.Internal(op, "stored rules document is corrupt", err)
	}
	rs.Normalize()

	matched, next, err := s.matcher.Match(ctx, nil, rs, after, limit)
	if err != nil {
		return nil, "", MapError(op, err)
	}
	return matched, next, nil
}
