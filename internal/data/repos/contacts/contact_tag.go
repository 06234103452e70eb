package contacts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type ContactTagRepo interface {
	// CreateIgnoreDuplicates inserts rows, skipping ones whose
	// (contact_id, tag_id) already exists, and reports how many landed.
	CreateIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.ContactTag) (int64, error)

	GetByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) ([]*types.ContactTag, error)
	GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.ContactTag, error)

	FullDeleteByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) error
	FullDeleteByContactIDAndTagIDs(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, tagIDs []uuid.UUID) error
}

type contactTagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContactTagRepo(db *gorm.DB, baseLog *logger.Logger) ContactTagRepo {
	return &contactTagRepo{db: db, log: baseLog.With("repo", "ContactTagRepo")}
}

func (r *contactTagRepo) CreateIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.ContactTag) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contact_id"}, {Name: "tag_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *contactTagRepo) GetByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) ([]*types.ContactTag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ContactTag
	if len(contactIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("contact_id IN ?", contactIDs).
		Order("contact_id ASC, tag_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contactTagRepo) GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.ContactTag, error) {
	if contactID == uuid.Nil {
		return []*types.ContactTag{}, nil
	}
	return r.GetByContactIDs(ctx, tx, []uuid.UUID{contactID})
}

func (r *contactTagRepo) FullDeleteByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(contactIDs) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Where("contact_id IN ?", contactIDs).
		Delete(&types.ContactTag{}).Error
}

func (r *contactTagRepo) FullDeleteByContactIDAndTagIDs(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, tagIDs []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if contactID == uuid.Nil || len(tagIDs) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Where("contact_id = ? AND tag_id IN ?", contactID, tagIDs).
		Delete(&types.ContactTag{}).Error
}
