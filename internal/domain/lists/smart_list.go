package lists

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SmartList is a saved query: a name plus a serialized rule document that is
// evaluated against contacts on demand (membership is never materialized).
type SmartList struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"column:name;not null;index" json:"name"`

	// Rules holds the rule document: {"operator": "AND"|"OR", "conditions": [...]}.
	Rules datatypes.JSON `gorm:"column:rules;type:jsonb;not null" json:"rules"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SmartList) TableName() string { return "smart_lists" }
