package contacts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Channel values for Communication.Channel.
const (
	ChannelCall    = "call"
	ChannelEmail   = "email"
	ChannelMessage = "message"
	ChannelMeeting = "meeting"
)

// Direction values for Communication.Direction.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Communication is one logged touchpoint with a contact.
type Communication struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContactID uuid.UUID `gorm:"type:uuid;not null;index" json:"contact_id"`

	Channel    string    `gorm:"column:channel;not null" json:"channel"`
	Direction  string    `gorm:"column:direction;not null" json:"direction"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null;index" json:"occurred_at"`
	Summary    string    `gorm:"column:summary;type:text" json:"summary"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Communication) TableName() string { return "communications" }

func KnownChannel(s string) bool {
	switch s {
	case ChannelCall, ChannelEmail, ChannelMessage, ChannelMeeting:
		return true
	}
	return false
}

func KnownDirection(s string) bool {
	return s == DirectionInbound || s == DirectionOutbound
}
