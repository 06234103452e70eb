package groups

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type GroupRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Group) ([]*types.Group, error)

	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Group, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Group, error)

	// GetAll returns every live group. Hierarchy walks load the whole
	// forest and traverse in memory; group counts stay small.
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Group, error)
	GetByParentIDs(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID) ([]*types.Group, error)

	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error

	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type groupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGroupRepo(db *gorm.DB, baseLog *logger.Logger) GroupRepo {
	return &groupRepo{db: db, log: baseLog.With("repo", "GroupRepo")}
}

func (r *groupRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Group) ([]*types.Group, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Group{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *groupRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Group, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Group
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *groupRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Group, error) {
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

func (r *groupRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Group, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Group
	if err := t.WithContext(ctx).Order("name ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *groupRepo) GetByParentIDs(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID) ([]*types.Group, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Group
	if len(parentIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("parent_id IN ?", parentIDs).
		Order("name ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *groupRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Model(&types.Group{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *groupRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Group{}).Error
}
