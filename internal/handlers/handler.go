package handlers

import (
	"device_monitor/internal/logger"
	"device_monitor/internal/models"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// ReadingSource exposes the monitor's latest in-memory reading.
type ReadingSource interface {
	Latest() (models.Reading, bool)
}

// History exposes the persisted reading log.
type History interface {
	Readings() []models.Reading
}

// Handler wires the HTTP layer to the monitor and the reading log.
type Handler struct {
	source  ReadingSource
	history History
	log     *logger.Logger
}

// NewHandler constructs the HTTP handler with its dependencies.
func NewHandler(source ReadingSource, history History, log *logger.Logger) *Handler {
	return &Handler{source: source, history: history, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Versioned API endpoints (read-only)
	h.registerAPIRoutes(router)

	// WebSocket reading stream, served on the same port via HTTP upgrade
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		device := api.Group("/device")
		{
			device.GET("/reading", h.getReading)
			device.GET("/readings", h.getReadings)
		}
	}
}
