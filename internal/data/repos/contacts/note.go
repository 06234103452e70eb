package contacts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type NoteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Note) ([]*types.Note, error)
	GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.Note, error)
	CountByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) (int64, error)

	// ReassignContact points every live row of fromContactID at toContactID
	// and reports how many rows moved.
	ReassignContact(ctx context.Context, tx *gorm.DB, fromContactID, toContactID uuid.UUID) (int64, error)
}

type noteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	return &noteRepo{db: db, log: baseLog.With("repo", "NoteRepo")}
}

func (r *noteRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Note) ([]*types.Note, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Note{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *noteRepo) GetByContactID(ctx context.Context, tx *gorm.DB, contactID uuid.UUID) ([]*types.Note, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Note
	if contactID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *noteRepo) CountByContactIDs(ctx context.Context, tx *gorm.DB, contactIDs []uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(contactIDs) == 0 {
		return 0, nil
	}
	var n int64
	if err := t.WithContext(ctx).
		Model(&types.Note{}).
		Where("contact_id IN ?", contactIDs).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *noteRepo) ReassignContact(ctx context.Context, tx *gorm.DB, fromContactID, toContactID uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if fromContactID == uuid.Nil || toContactID == uuid.Nil {
		return 0, nil
	}
	res := t.WithContext(ctx).
		Model(&types.Note{}).
		Where("contact_id = ?", fromContactID).
		Updates(map[string]interface{}{"contact_id": toContactID})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
