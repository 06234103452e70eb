package contacts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type CommunicationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Communication) ([]*types.Communication, error)
	GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.Communication, error)
	CountByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) (int64, error)
	ReassignContact(ctx context.Context, tx *gorm.DB, fromContactID, toContactID uuid.UUID) (int64, error)
}

type communicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommunicationRepo(db *gorm.DB, baseLog *logger.Logger) CommunicationRepo {
	return &communicationRepo{db: db, log: baseLog.With("repo", "CommunicationRepo")}
}

func (r *communicationRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Communication) ([]*types.Communication, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Communication{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *communicationRepo) GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.Communication, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Communication
	if contactID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("occurred_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *communicationRepo) CountByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(contactIDs) == 0 {
		return 0, nil
	}
	var n int64
	if err := t.WithContext(ctx).
		Model(&types.Communication{}).
		Where("contact_id IN ?", contactIDs).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *communicationRepo) ReassignContact(ctx context.Context, tx *gorm.DB, fromContactID, toContactID uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if fromContactID == uuid.Nil || toContactID == uuid.Nil {
		return 0, nil
	}
	res := t.WithContext(ctx).
		Model(&types.Communication{}).
		Where("contact_id = ?", fromContactID).
		Updates(map[string]interface{}{"contact_id": toContactID})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
