package contacts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type ContactRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Contact) ([]*types.Contact, error)

	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Contact, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Contact, error)

	// ListAfterCursor pages all live contacts in stable (created_at, id)
	// ascending order. A nil cursor starts from the beginning.
	ListAfterCursor(ctx context.Context, tx *gorm.DB, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int) ([]*types.Contact, error)

	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error

	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type contactRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContactRepo(db *gorm.DB, baseLog *logger.Logger) ContactRepo {
	return &contactRepo{db: db, log: baseLog.With("repo", "ContactRepo")}
}

func (r *contactRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Contact) ([]*types.Contact, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Contact{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *contactRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Contact, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Contact
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contactRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Contact, error) {
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

func (r *contactRepo) ListAfterCursor(ctx context.Context, tx *gorm.DB, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int) ([]*types.Contact, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	q := t.WithContext(ctx).Model(&types.Contact{})

	// tie-safe cursor: (created_at, id)
	if afterCreatedAt != nil {
		id := uuid.Nil
		if afterID != nil {
			id = *afterID
		}
		q = q.Where("(created_at > ?) OR (created_at = ? AND id > ?)", *afterCreatedAt, *afterCreatedAt, id)
	}

	var out []*types.Contact
	if err := q.Order("created_at ASC, id ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contactRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Model(&types.Contact{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *contactRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Contact{}).Error
}
