package lists

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type SmartListRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.SmartList) ([]*types.SmartList, error)

	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SmartList, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.SmartList, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.SmartList, error)

	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error

	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type smartListRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSmartListRepo(db *gorm.DB, baseLog *logger.Logger) SmartListRepo {
	return &smartListRepo{db: db, log: baseLog.With("repo", "SmartListRepo")}
}

func (r *smartListRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.SmartList) ([]*types.SmartList, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.SmartList{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *smartListRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SmartList, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.SmartList
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *smartListRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.SmartList, error) {
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

func (r *smartListRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.SmartList, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.SmartList
	if err := t.WithContext(ctx).Order("name ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *smartListRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Model(&types.SmartList{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *smartListRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.SmartList{}).Error
}
