package handlers

import (
	"marketing-ops/security"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Events  *EventHandler
	Tasks   *TaskHandler
	Team    *TeamHandler
	Content *ContentHandler
	Admin   *AdminHandler
}

type RouteOptions struct {
	Production     bool
	EnableMetrics  bool
	AdminTokenHash string
	Limiter        *security.RateLimiter
}

// NewServer builds the echo instance with middleware and every route.
func NewServer(h *Handlers, opts RouteOptions) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.Recover())
	e.Use(RequestLogger())
	e.Use(middleware.CORS())

	Register(e, h, opts)
	return e
}

func Register(e *echo.Echo, h *Handlers, opts RouteOptions) {
	e.GET("/health", h.Admin.Health)
	if opts.EnableMetrics {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	api := e.Group("/api")
	limited := opts.Limiter.Middleware()

	// Events
	api.GET("/events", h.Events.ListEvents)
	api.POST("/events", h.Events.CreateEvent)
	api.GET("/events/calendar.ics", h.Events.CalendarFeed)
	api.POST("/events/import-ics", h.Events.ImportCalendar)
	api.GET("/events/:id", h.Events.GetEvent)
	api.PUT("/events/:id", h.Events.UpdateEvent)
	api.DELETE("/events/:id", h.Events.DeleteEvent)
	api.GET("/events/:id/instances", h.Events.ListInstances)
	api.POST("/events/:id/instances", h.Events.CreateInstance)
	api.DELETE("/instances/:id", h.Events.DeleteInstance)

	// Tasks
	api.GET("/events/:id/tasks", h.Tasks.ListEventTasks)
	api.POST("/events/:id/tasks/generate", h.Tasks.GenerateTasks)
	api.GET("/tasks/upcoming", h.Tasks.UpcomingTasks)
	api.POST("/tasks", h.Tasks.CreateTask)
	api.PUT("/tasks/:id", h.Tasks.UpdateTask)
	api.POST("/tasks/:id/toggle", h.Tasks.ToggleTask)
	api.DELETE("/tasks/:id", h.Tasks.DeleteTask)

	// Team
	api.GET("/team", h.Team.ListMembers)
	api.POST("/team", h.Team.CreateMember)
	api.PUT("/team/:id", h.Team.UpdateMember)
	api.DELETE("/team/:id", h.Team.DeleteMember)
	api.GET("/profiles/:id", h.Team.GetProfile)
	api.PUT("/profiles/:id", h.Team.UpsertProfile)

	// Content
	api.POST("/content/generate", h.Content.GenerateContent, limited)
	api.POST("/content/fetch-urls", h.Content.FetchURLs)
	api.GET("/content/history", h.Content.ListHistory)
	api.POST("/content/history", h.Content.SaveHistory)
	api.POST("/email/send", h.Content.SendEmail, limited)
	api.GET("/social/posts", h.Content.SocialPosts)
	api.POST("/social/import", h.Content.ImportSocial)

	// Admin
	admin := api.Group("/admin", security.RequireAdminToken(opts.AdminTokenHash))
	admin.GET("/duplicates", h.Admin.PreviewDuplicates)
	admin.POST("/duplicates/remove", h.Admin.RemoveDuplicates)
	admin.POST("/seed", h.Admin.Seed)

	if !opts.Production {
		debug := api.Group("/debug")
		debug.GET("/config", h.Admin.DebugConfig)
		debug.GET("/db", h.Admin.DebugDatabase)
	}
}
