package domain

import (
	"github.com/touchbasehq/touchbase-backend/internal/domain/contacts"
	"github.com/touchbasehq/touchbase-backend/internal/domain/groups"
	"github.com/touchbasehq/touchbase-backend/internal/domain/lists"
)

// Flat index over the domain subpackages so callers (repos, services,
// migrations, tests) can name every model through one import.

const (
	ChannelCall    = contacts.ChannelCall
	ChannelEmail   = contacts.ChannelEmail
	ChannelMessage = contacts.ChannelMessage
	ChannelMeeting = contacts.ChannelMeeting

	DirectionInbound  = contacts.DirectionInbound
	DirectionOutbound = contacts.DirectionOutbound

	GroupMaxDepth = groups.MaxDepth
)

type Contact = contacts.Contact
type Note = contacts.Note
type Communication = contacts.Communication
type Fact = contacts.Fact
type Relationship = contacts.Relationship
type Followup = contacts.Followup
type Tag = contacts.Tag
type ContactTag = contacts.ContactTag

type Group = groups.Group
type ContactGroup = groups.ContactGroup

type SmartList = lists.SmartList

// StringList re-exports the JSON array encoder used for identifier columns.
var StringList = contacts.StringList

var (
	KnownChannel   = contacts.KnownChannel
	KnownDirection = contacts.KnownDirection
)

// AllModels is the AutoMigrate set, in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&Contact{},
		&Group{},
		&ContactGroup{},
		&SmartList{},
		&Note{},
		&Communication{},
		&Fact{},
		&Relationship{},
		&Followup{},
		&Tag{},
		&ContactTag{},
	}
}
