package contacts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type RelationshipRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Relationship) ([]*types.Relationship, error)

	GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.Relationship, error)

	// GetInvolvingContact returns edges where the contact sits on either
	// side. Merge rewrites both directions.
	GetInvolvingContact(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.Relationship, error)
	CountInvolvingContact(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) (int64, error)

	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type relationshipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRelationshipRepo(db *gorm.DB, baseLog *logger.Logger) RelationshipRepo {
	return &relationshipRepo{db: db, log: baseLog.With("repo", "RelationshipRepo")}
}

func (r *relationshipRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Relationship) ([]*types.Relationship, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Relationship{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *relationshipRepo) GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.Relationship, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Relationship
	if contactID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *relationshipRepo) GetInvolvingContact(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.Relationship, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Relationship
	if contactID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("contact_id = ? OR related_contact_id = ?", contactID, contactID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *relationshipRepo) CountInvolvingContact(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if contactID == uuid.Nil {
		return 0, nil
	}
	var n int64
	if err := t.WithContext(ctx).
		Model(&types.Relationship{}).
		Where("contact_id = ? OR related_contact_id = ?", contactID, contactID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *relationshipRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Model(&types.Relationship{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *relationshipRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Relationship{}).Error
}
