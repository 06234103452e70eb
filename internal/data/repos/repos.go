package repos

import (
	"github.com/touchbasehq/touchbase-backend/internal/data/repos/contacts"
	"github.com/touchbasehq/touchbase-backend/internal/data/repos/groups"
	"github.com/touchbasehq/touchbase-backend/internal/data/repos/lists"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type ContactRepo = contacts.ContactRepo
type NoteRepo = contacts.NoteRepo
type CommunicationRepo = contacts.CommunicationRepo
type FactRepo = contacts.FactRepo
type RelationshipRepo = contacts.RelationshipRepo
type FollowupRepo = contacts.FollowupRepo
type TagRepo = contacts.TagRepo
type ContactTagRepo = contacts.ContactTagRepo

type GroupRepo = groups.GroupRepo
type ContactGroupRepo = groups.ContactGroupRepo

type SmartListRepo = lists.SmartListRepo

func NewContactRepo(db *gorm.DB, baseLog *logger.Logger) ContactRepo {
	return contacts.NewContactRepo(db, baseLog)
}
func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	return contacts.NewNoteRepo(db, baseLog)
}
func NewCommunicationRepo(db *gorm.DB, baseLog *logger.Logger) CommunicationRepo {
	return contacts.NewCommunicationRepo(db, baseLog)
}
func NewFactRepo(db *gorm.DB, baseLog *logger.Logger) FactRepo {
	return contacts.NewFactRepo(db, baseLog)
}
func NewRelationshipRepo(db *gorm.DB, baseLog *logger.Logger) RelationshipRepo {
	return contacts.NewRelationshipRepo(db, baseLog)
}
func NewFollowupRepo(db *gorm.DB, baseLog *logger.Logger) FollowupRepo {
	return contacts.NewFollowupRepo(db, baseLog)
}
func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return contacts.NewTagRepo(db, baseLog)
}
func NewContactTagRepo(db *gorm.DB, baseLog *logger.Logger) ContactTagRepo {
	return contacts.NewContactTagRepo(db, baseLog)
}

func NewGroupRepo(db *gorm.DB, baseLog *logger.Logger) GroupRepo {
	return groups.NewGroupRepo(db, baseLog)
}
func NewContactGroupRepo(db *gorm.DB, baseLog *logger.Logger) ContactGroupRepo {
	return groups.NewContactGroupRepo(db, baseLog)
}

func NewSmartListRepo(db *gorm.DB, baseLog *logger.Logger) SmartListRepo {
	return lists.NewSmartListRepo(db, baseLog)
}
