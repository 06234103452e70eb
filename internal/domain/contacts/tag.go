package contacts

import (
	"time"

	"github.com/google/uuid"
)

type Tag struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"column:name;uniqueIndex;not null" json:"name"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Tag) TableName() string { return "tags" }

// ContactTag attaches a tag to a contact. Hard-deleted join rows; the
// unique index makes re-tagging idempotent via insert-ignore.
type ContactTag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContactID uuid.UUID `gorm:"type:uuid;not null;index:idx_contact_tags_member,unique,priority:1" json:"contact_id"`
	TagID     uuid.UUID `gorm:"type:uuid;not null;index;index:idx_contact_tags_member,unique,priority:2" json:"tag_id"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ContactTag) TableName() string { return "contact_tags" }
