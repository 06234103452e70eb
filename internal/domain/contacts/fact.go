package contacts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fact is a keyed piece of knowledge about a contact ("birthday", "employer").
// Keys are not unique per contact; the same key may accumulate entries.
type Fact struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContactID uuid.UUID `gorm:"type:uuid;not null;index" json:"contact_id"`
	Key       string    `gorm:"column:key;not null;index" json:"key"`
	Value     string    `gorm:"column:value;type:text" json:"value"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Fact) TableName() string { return "facts" }
