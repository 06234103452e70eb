package contacts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type FactRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Fact) ([]*types.Fact, error)
	GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.Fact, error)
	GetByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) ([]*types.Fact, error)
	CountByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) (int64, error)
	ReassignContact(ctx context.Context, tx *gorm.DB, fromContactID, toContactID uuid.UUID) (int64, error)
}

type factRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFactRepo(db *gorm.DB, baseLog *logger.Logger) FactRepo {
	return &factRepo{db: db, log: baseLog.With("repo", "FactRepo")}
}

func (r *factRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Fact) ([]*types.Fact, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Fact{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *factRepo) GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.Fact, error) {
	if contactID == uuid.Nil {
		return []*types.Fact{}, nil
	}
	return r.GetByContactIDs(ctx, tx, []uuid.UUID{contactID})
}

func (r *factRepo) GetByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) ([]*types.Fact, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Fact
	if len(contactIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("contact_id IN ?", contactIDs).
		Order("key ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *factRepo) CountByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(contactIDs) == 0 {
		return 0, nil
	}
	var n int64
	if err := t.WithContext(ctx).
		Model(&types.Fact{}).
		Where("contact_id IN ?", contactIDs).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *factRepo) ReassignContact(ctx context.Context, tx *gorm.DB, fromContactID, toContactID uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if fromContactID == uuid.Nil || toContactID == uuid.Nil {
		return 0, nil
	}
	res := t.WithContext(ctx).
		Model(&types.Fact{}).
		Where("contact_id = ?", fromContactID).
		Updates(map[string]interface{}{"contact_id": toContactID})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
