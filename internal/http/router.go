package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/touchbasehq/touchbase-backend/internal/http/handlers"
	httpMW "github.com/touchbasehq/touchbase-backend/internal/http/middleware"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AllowedOrigins []string
	ServiceName    string
	EnableTracing  bool

	HealthHandler    *httpH.HealthHandler
	GroupHandler     *httpH.GroupHandler
	SmartListHandler *httpH.SmartListHandler
	ContactHandler   *httpH.ContactHandler
	TagHandler       *httpH.TagHandler
	DuplicateHandler *httpH.DuplicateHandler
	AIQueryHandler   *httpH.AIQueryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.EnableTracing {
		serviceName := cfg.ServiceName
		if serviceName == "" {
			serviceName = "touchbase-backend"
		}
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(httpMW.RequestID())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Groups
		if cfg.GroupHandler != nil {
			api.POST("/groups", cfg.GroupHandler.Create)
			api.GET("/groups", cfg.GroupHandler.ListTree)
			api.PATCH("/groups/:id", cfg.GroupHandler.Update)
			api.DELETE("/groups/:id", cfg.GroupHandler.Delete)
			api.POST("/groups/:id/contacts", cfg.GroupHandler.AddContact)
			api.DELETE("/groups/:id/contacts/:contactID", cfg.GroupHandler.RemoveContact)
		}

		// Smart lists
		if cfg.SmartListHandler != nil {
			api.POST("/smart-lists", cfg.SmartListHandler.Create)
			api.GET("/smart-lists", cfg.SmartListHandler.List)
			api.GET("/smart-lists/:id", cfg.SmartListHandler.Get)
			api.PATCH("/smart-lists/:id", cfg.SmartListHandler.Update)
			api.DELETE("/smart-lists/:id", cfg.SmartListHandler.Delete)
			api.GET("/smart-lists/:id/contacts", cfg.SmartListHandler.MatchingContacts)
		}

		// Contacts and child records
		if cfg.ContactHandler != nil {
			api.POST("/contacts", cfg.ContactHandler.Create)
			api.GET("/contacts", cfg.ContactHandler.List)
			api.GET("/contacts/:id", cfg.ContactHandler.Get)
			api.PATCH("/contacts/:id", cfg.ContactHandler.Update)
			api.DELETE("/contacts/:id", cfg.ContactHandler.Delete)

			api.POST("/contacts/:id/notes", cfg.ContactHandler.AddNote)
			api.GET("/contacts/:id/notes", cfg.ContactHandler.ListNotes)
			api.POST("/contacts/:id/communications", cfg.ContactHandler.AddCommunication)
			api.GET("/contacts/:id/communications", cfg.ContactHandler.ListCommunications)
			api.POST("/contacts/:id/facts", cfg.ContactHandler.AddFact)
			api.GET("/contacts/:id/facts", cfg.ContactHandler.ListFacts)
			api.POST("/contacts/:id/relationships", cfg.ContactHandler.AddRelationship)
			api.GET("/contacts/:id/relationships", cfg.ContactHandler.ListRelationships)
			api.POST("/contacts/:id/followups", cfg.ContactHandler.AddFollowup)
			api.GET("/contacts/:id/followups", cfg.ContactHandler.ListFollowups)
			api.POST("/contacts/:id/tags", cfg.ContactHandler.AddTag)
			api.GET("/contacts/:id/tags", cfg.ContactHandler.ListTags)
			api.DELETE("/contacts/:id/tags/:tagID", cfg.ContactHandler.RemoveTag)
		}

		// Tags
		if cfg.TagHandler != nil {
			api.POST("/tags", cfg.TagHandler.Create)
			api.GET("/tags", cfg.TagHandler.List)
		}

		// Duplicates
		if cfg.DuplicateHandler != nil {
			api.GET("/duplicates", cfg.DuplicateHandler.Scan)
			api.POST("/duplicates/preview", cfg.DuplicateHandler.MergePreview)
			api.POST("/duplicates/merge", cfg.DuplicateHandler.Merge)
		}

		// AI query, mounted only when the chat client is configured
		if cfg.AIQueryHandler != nil {
			api.POST("/ai/query", cfg.AIQueryHandler.Query)
		}
	}

	return r
}
