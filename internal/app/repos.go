package app

import (
	"gorm.io/gorm"

	"github.com/touchbasehq/touchbase-backend/internal/data/repos"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type Repos struct {
	Contact       repos.ContactRepo
	Note          repos.NoteRepo
	Communication repos.CommunicationRepo
	Fact          repos.FactRepo
	Relationship  repos.RelationshipRepo
	Followup      repos.FollowupRepo
	Tag           repos.TagRepo
	ContactTag    repos.ContactTagRepo
	Group         repos.GroupRepo
	ContactGroup  repos.ContactGroupRepo
	SmartList     repos.SmartListRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Contact:       repos.NewContactRepo(db, log),
		Note:          repos.NewNoteRepo(db, log),
		Communication: repos.NewCommunicationRepo(db, log),
		Fact:          repos.NewFactRepo(db, log),
		Relationship:  repos.NewRelationshipRepo(db, log),
		Followup:      repos.NewFollowupRepo(db, log),
		Tag:           repos.NewTagRepo(db, log),
		ContactTag:    repos.NewContactTagRepo(db, log),
		Group:         repos.NewGroupRepo(db, log),
		ContactGroup:  repos.NewContactGroupRepo(db, log),
		SmartList:     repos.NewSmartListRepo(db, log),
	}
}
