package contacts

import (
	"time"

	"github.com/google/uuid"
)

// Relationship is a directed edge between two contacts ("colleague",
// "friend", "partner"). Edge rows are hard-deleted; the unique index keeps
// one edge per (from, to, kind).
type Relationship struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContactID        uuid.UUID `gorm:"type:uuid;not null;index;index:idx_relationships_edge,unique,priority:1" json:"contact_id"`
	RelatedContactID uuid.UUID `gorm:"type:uuid;not null;index;index:idx_relationships_edge,unique,priority:2" json:"related_contact_id"`
	Kind             string    `gorm:"column:kind;not null;index:idx_relationships_edge,unique,priority:3" json:"kind"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Relationship) TableName() string { return "relationships" }
