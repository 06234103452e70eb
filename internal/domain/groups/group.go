package groups

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxDepth is the deepest allowed level in the group forest (root = 1).
const MaxDepth = 5

// Group is one node of the contact-group forest. ParentID nil means root.
type Group struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string     `gorm:"column:name;not null;index" json:"name"`
	ParentID *uuid.UUID `gorm:"type:uuid;column:parent_id;index" json:"parent_id,omitempty"`

	// FollowupDays, when set, is the reach-out cadence suggested for
	// members of this group.
	FollowupDays *int `gorm:"column:followup_days" json:"followup_days,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Group) TableName() string { return "groups" }

// ContactGroup is a hard-deleted membership join row; the unique index
// makes repeated adds idempotent via insert-ignore.
type ContactGroup struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContactID uuid.UUID `gorm:"type:uuid;not null;index:idx_contact_groups_member,unique,priority:1" json:"contact_id"`
	GroupID   uuid.UUID `gorm:"type:uuid;not null;index;index:idx_contact_groups_member,unique,priority:2" json:"group_id"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ContactGroup) TableName() string { return "contact_groups" }
