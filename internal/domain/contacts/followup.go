package contacts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Followup is a reminder to reach out. Scheduling/notification of due
// follow-ups is handled by an external job; this is only the record.
type Followup struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContactID uuid.UUID `gorm:"type:uuid;not null;index" json:"contact_id"`

	DueAt       time.Time  `gorm:"column:due_at;not null;index" json:"due_at"`
	Note        string     `gorm:"column:note;type:text" json:"note"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Followup) TableName() string { return "followups" }
