package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/huytrandev/sermon-scribe/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg              *config.Config
	sermonHandler    *Sermon
	recordingHandler *Recording
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, sermonHandler *Sermon, recordingHandler *Recording) *Router {
	return &Router{
		cfg:              cfg,
		sermonHandler:    sermonHandler,
		recordingHandler: recordingHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupSermonRoutes(v1)
	rt.setupRecordingRoutes(v1)
}

// setupSermonRoutes configures sermon collection routes
func (rt *Router) setupSermonRoutes(g *echo.Group) {
	sermonGroup := g.Group("/sermons")

	sermonGroup.GET("", rt.sermonHandler.List)
	sermonGroup.DELETE("", rt.sermonHandler.DeleteAll)
	sermonGroup.GET("/:id", rt.sermonHandler.Get)
	sermonGroup.PATCH("/:id", rt.sermonHandler.Update)
	sermonGroup.DELETE("/:id", rt.sermonHandler.Delete)
}

// setupRecordingRoutes configures recording lifecycle routes
func (rt *Router) setupRecordingRoutes(g *echo.Group) {
	recordingGroup := g.Group("/recording")

	recordingGroup.POST("/start", rt.recordingHandler.Start)
	recordingGroup.POST("/pause", rt.recordingHandler.Pause)
	recordingGroup.POST("/resume", rt.recordingHandler.Resume)
	recordingGroup.POST("/stop", rt.recordingHandler.Stop)
	recordingGroup.GET("/status", rt.recordingHandler.Status)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := "development"
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": env,
	})
}
