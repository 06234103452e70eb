package contacts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type TagRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Tag) ([]*types.Tag, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Tag, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Tag, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Tag, error)
}

type tagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return &tagRepo{db: db, log: baseLog.With("repo", "TagRepo")}
}

func (r *tagRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Tag) ([]*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Tag{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *tagRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Tag
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Tag, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *tagRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Tag
	if err := t.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
