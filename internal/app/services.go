package app

import (
	"gorm.io/gorm"

	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
	"github.com/touchbasehq/touchbase-backend/internal/services"
)

type Services struct {
	Group     services.GroupService
	SmartList services.SmartListService
	Contact   services.ContactService
	Tag       services.TagService
	Duplicate services.DuplicateService

	// AIQuery stays nil when the OpenAI client is not configured.
	AIQuery services.AIQueryService
}

func wireServices(db *gorm.DB, log *logger.Logger, clients Clients, r Repos) Services {
	log.Info("Wiring services...")

	svcs := Services{
		Group: services.NewGroupService(db, log, r.Group, r.Contact, r.ContactGroup),
		SmartList: services.NewSmartListService(
			db, log,
			r.SmartList, r.Contact, r.ContactTag, r.ContactGroup, r.Fact,
		),
		Contact: services.NewContactService(
			db, log, clients.Cache,
			r.Contact, r.Note, r.Communication, r.Fact, r.Relationship,
			r.Followup, r.Tag, r.ContactTag, r.ContactGroup,
		),
		Tag: services.NewTagService(db, log, r.Tag),
		Duplicate: services.NewDuplicateService(
			db, log, clients.Cache,
			r.Contact, r.Note, r.Communication, r.Fact, r.Relationship,
			r.Followup, r.ContactTag, r.ContactGroup,
		),
	}
	if clients.OpenAI != nil {
		svcs.AIQuery = services.NewAIQueryService(log, clients.OpenAI, r.Contact, r.ContactTag, r.ContactGroup, r.Fact)
	}
	return svcs
}
