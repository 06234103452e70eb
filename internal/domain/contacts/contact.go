package contacts

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Contact is the root entity of the address book. Emails and phones are
// JSON string arrays so a contact can carry any number of identifiers.
// (created_at, id) is the stable pagination key.
type Contact struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DisplayName string    `gorm:"column:display_name;not null;index" json:"display_name"`
	FirstName   string    `gorm:"column:first_name" json:"first_name"`
	LastName    string    `gorm:"column:last_name" json:"last_name"`

	Starred          bool    `gorm:"column:starred;not null;default:false" json:"starred"`
	ManualImportance *int    `gorm:"column:manual_importance" json:"manual_importance,omitempty"`
	EngagementScore  float64 `gorm:"column:engagement_score;not null;default:0" json:"engagement_score"`

	Emails datatypes.JSON `gorm:"column:emails;type:jsonb" json:"emails,omitempty"`
	Phones datatypes.JSON `gorm:"column:phones;type:jsonb" json:"phones,omitempty"`

	CreatedAt time.Time      `gorm:"not null;index:idx_contacts_cursor,priority:1" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Contact) TableName() string { return "contacts" }

func (c *Contact) EmailList() []string { return decodeStringList(c.Emails) }
func (c *Contact) PhoneList() []string { return decodeStringList(c.Phones) }

// StringList encodes vals as a JSON array column value. nil encodes as [].
func StringList(vals []string) datatypes.JSON {
	if vals == nil {
		vals = []string{}
	}
	raw, err := json.Marshal(vals)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
