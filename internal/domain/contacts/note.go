package contacts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Note struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContactID uuid.UUID `gorm:"type:uuid;not null;index" json:"contact_id"`
	Body      string    `gorm:"column:body;type:text;not null" json:"body"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Note) TableName() string { return "notes" }
