package contacts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type FollowupRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Followup) ([]*types.Followup, error)
	GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.Followup, error)
	CountByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) (int64, error)
	ReassignContact(ctx context.Context, tx *gorm.DB, fromContactID, toContactID uuid.UUID) (int64, error)
}

type followupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFollowupRepo(db *gorm.DB, baseLog *logger.Logger) FollowupRepo {
	return &followupRepo{db: db, log: baseLog.With("repo", "FollowupRepo")}
}

func (r *followupRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Followup) ([]*types.Followup, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Followup{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *followupRepo) GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.Followup, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Followup
	if contactID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("due_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *followupRepo) CountByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(contactIDs) == 0 {
		return 0, nil
	}
	var n int64
	if err := t.WithContext(ctx).
		Model(&types.Followup{}).
		Where("contact_id IN ?", contactIDs).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *followupRepo) ReassignContact(ctx context.Context, tx *gorm.DB, fromContactID, toContactID uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if fromContactID == uuid.Nil || toContactID == uuid.Nil {
		return 0, nil
	}
	res := t.WithContext(ctx).
		Model(&types.Followup{}).
		Where("contact_id = ?", fromContactID).
		Updates(map[string]interface{}{"contact_id": toContactID})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
