// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/jeevamani007/data-analysis-sub000/internal/pipeline"
	"github.com/jeevamani007/data-analysis-sub000/internal/view"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Pipeline *pipeline.Manager
	Renderer *view.Renderer
	History  HistoryReader
	Version  string
}

// Handlers holds all handler instances
type Handlers struct {
	Health   *HealthHandler
	Run      *RunHandler
	View     *ViewHandler
	Timeline *TimelineHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version),
		Run:      NewRunHandler(deps.Pipeline),
		View:     NewViewHandler(deps.Pipeline, deps.Renderer, deps.History),
		Timeline: NewTimelineHandler(deps.Pipeline, deps.Renderer),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/health", handlers.Health.HandleHealth)

	// Run lifecycle
	runGroup := e.Group("/api/runs")
	runGroup.POST("", handlers.Run.HandleCreateRun)
	runGroup.GET("/:id", handlers.Run.HandleGetRun)
	runGroup.DELETE("/:id", handlers.Run.HandleDeleteRun)
	runGroup.POST("/:id/start", handlers.Run.HandleStartRun)
	runGroup.POST("/:id/continue", handlers.Run.HandleContinueRun)
	runGroup.POST("/:id/restart", handlers.Run.HandleRestartRun)
	runGroup.POST("/:id/keepalive", handlers.Run.HandleRunKeepAlive)

	// Batch staging
	runGroup.POST("/:id/files", handlers.Run.HandleAddFiles)
	runGroup.GET("/:id/files", handlers.Run.HandleListFiles)
	runGroup.DELETE("/:id/files/:index", handlers.Run.HandleRemoveFile)

	// Results partials
	runGroup.GET("/:id/table", handlers.View.HandleAccountTable)
	runGroup.POST("/:id/timeline/:kind/select", handlers.Timeline.HandleTimelineSelect)
	runGroup.GET("/:id/timeline/:kind/entries/msgpack", handlers.Timeline.HandleTimelineEntriesMsgpack)

	// Run history
	e.GET("/api/history/recent", handlers.View.HandleRecentHistory)

	// Stage views (routable so back/forward and reload work)
	e.GET("/", handlers.Run.HandleIndex)
	e.GET("/run/:id/view/:marker", handlers.View.HandleViewPage)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler
}
