package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/touchbasehq/touchbase-backend/internal/data/repos"
	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/domain/apperr"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type TagService interface {
	Create(ctx context.Context, name string) (*types.Tag, error)
	List(ctx context.Context) ([]*types.Tag, error)
}

type tagService struct {
	db      *gorm.DB
	log     *logger.Logger
	tagRepo repos.TagRepo
}

func NewTagService(db *gorm.DB, baseLog *logger.Logger, tagRepo repos.TagRepo) TagService {
	return &tagService{
		db:      db,
		log:     baseLog.With("service", "TagService"),
		tagRepo: tagRepo,
	}
}

func (s *tagService) Create(ctx context.Context, name string) (*types.Tag, error) {
	const op = "TagService.Create"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation(op, "tag name is required")
	}
	row := &types.Tag{ID: uuid.New(), Name: name}
	// Unique name index turns duplicates into conflict.
	if _, err := s.tagRepo.Create(ctx, nil, []*types.Tag{row}); err != nil {
		return nil, MapError(op, err)
	}
	return row, nil
}

func (s *tagService) List(ctx context.Context) ([]*types.Tag, error) {
	const op = "TagService.List"

	rows, err := s.tagRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, MapError(op, err)
	}
	return rows, nil
}
