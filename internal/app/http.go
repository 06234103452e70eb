package app

import (
	"github.com/gin-gonic/gin"

	"github.com/touchbasehq/touchbase-backend/internal/http"
	httpH "github.com/touchbasehq/touchbase-backend/internal/http/handlers"
	"github.com/touchbasehq/touchbase-backend/internal/observability"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Group     *httpH.GroupHandler
	SmartList *httpH.SmartListHandler
	Contact   *httpH.ContactHandler
	Tag       *httpH.TagHandler
	Duplicate *httpH.DuplicateHandler
	AIQuery   *httpH.AIQueryHandler
}

func wireHandlers(log *logger.Logger, svcs Services) Handlers {
	log.Info("Wiring handlers...")
	h := Handlers{
		Health:    httpH.NewHealthHandler(),
		Group:     httpH.NewGroupHandler(log, svcs.Group),
		SmartList: httpH.NewSmartListHandler(log, svcs.SmartList),
		Contact:   httpH.NewContactHandler(log, svcs.Contact),
		Tag:       httpH.NewTagHandler(log, svcs.Tag),
		Duplicate: httpH.NewDuplicateHandler(log, svcs.Duplicate),
	}
	if svcs.AIQuery != nil {
		h.AIQuery = httpH.NewAIQueryHandler(log, svcs.AIQuery)
	}
	return h
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
		ServiceName:    cfg.ServiceName,
		EnableTracing:  observability.Enabled(),

		HealthHandler:    handlers.Health,
		GroupHandler:     handlers.Group,
		SmartListHandler: handlers.SmartList,
		ContactHandler:   handlers.Contact,
		TagHandler:       handlers.Tag,
		DuplicateHandler: handlers.Duplicate,
		AIQueryHandler:   handlers.AIQuery,
	})
}
