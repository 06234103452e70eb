package groups

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type ContactGroupRepo interface {
	// CreateIgnoreDuplicates inserts memberships, silently skipping rows
	// that already exist. Returns the number of rows actually inserted.
	CreateIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.ContactGroup) (int64, error)

	GetByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) ([]*types.ContactGroup, error)
	GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.ContactGroup, error)
	GetByGroupIDs(ctx context.Context, tx *gorm.DB, groupIDs []uuid.UUID) ([]*types.ContactGroup, error)

	// CountByGroupIDs returns live-contact membership counts keyed by
	// group id. Groups with no members are absent from the map.
	CountByGroupIDs(ctx context.Context, tx *gorm.DB, groupIDs []uuid.UUID) (map[uuid.UUID]int64, error)

	FullDeleteByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) error
	FullDeleteByGroupIDs(ctx context.Context, tx *gorm.DB, groupIDs []uuid.UUID) error
	FullDeleteByContactIDAndGroupIDs(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, groupIDs []uuid.UUID) (int64, error)
}

type contactGroupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContactGroupRepo(db *gorm.DB, baseLog *logger.Logger) ContactGroupRepo {
	return &contactGroupRepo{db: db, log: baseLog.With("repo", "ContactGroupRepo")}
}

func (r *contactGroupRepo) CreateIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.ContactGroup) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contact_id"}, {Name: "group_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *contactGroupRepo) GetByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) ([]*types.ContactGroup, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ContactGroup
	if len(contactIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("contact_id IN ?", contactIDs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contactGroupRepo) GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.ContactGroup, error) {
	if contactID == uuid.Nil {
		return nil, nil
	}
	return r.GetByContactIDs(ctx, tx, []uuid.UUID{contactID})
}

func (r *contactGroupRepo) GetByGroupIDs(ctx context.Context, tx *gorm.DB, groupIDs []uuid.UUID) ([]*types.ContactGroup, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ContactGroup
	if len(groupIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("group_id IN ?", groupIDs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type groupCount struct {
	GroupID uuid.UUID `gorm:"column:group_id"`
	Total   int64     `gorm:"column:total"`
}

func (r *contactGroupRepo) CountByGroupIDs(ctx context.Context, tx *gorm.DB, groupIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	out := make(map[uuid.UUID]int64, len(groupIDs))
	if len(groupIDs) == 0 {
		return out, nil
	}
	var rows []groupCount
	if err := t.WithContext(ctx).
		Model(&types.ContactGroup{}).
		Select("contact_groups.group_id AS group_id, COUNT(*) AS total").
		Joins("JOIN contacts ON contacts.id = contact_groups.contact_id AND contacts.deleted_at IS NULL").
		Where("contact_groups.group_id IN ?", groupIDs).
		Group("contact_groups.group_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.GroupID] = row.Total
	}
	return out, nil
}

func (r *contactGroupRepo) FullDeleteByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(contactIDs) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Where("contact_id IN ?", contactIDs).
		Delete(&types.ContactGroup{}).Error
}

func (r *contactGroupRepo) FullDeleteByGroupIDs(ctx context.Context, tx *gorm.DB, groupIDs []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(groupIDs) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Where("group_id IN ?", groupIDs).
		Delete(&types.ContactGroup{}).Error
}

func (r *contactGroupRepo) FullDeleteByContactIDAndGroupIDs(ctx context.Context, tx *gorm.DB, contactID uuid.UUID, groupIDs []uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if contactID == uuid.Nil || len(groupIDs) == 0 {
		return 0, nil
	}
	res := t.WithContext(ctx).
		Where("contact_id = ? AND group_id IN ?", contactID, groupIDs).
		Delete(&types.ContactGroup{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
