package handlers

import (
	"cbrne_dashboard/internal/logger"
	"cbrne_dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const defaultSnapshotBuffer = 64

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services       *service.Service
	log            *logger.Logger
	snapshotBuffer int
	upgrader       websocket.Upgrader
}

func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{
		services:       services,
		log:            log,
		snapshotBuffer: defaultSnapshotBuffer,
		upgrader:       newUpgrader(nil),
	}
}

// SetSnapshotBuffer bounds how many snapshots a websocket client may fall
// behind before it is disconnected.
func (h *Handler) SetSnapshotBuffer(n int) {
	if n > 0 {
		h.snapshotBuffer = n
	}
}

// SetAllowedOrigins sets the browser origins allowed to open snapshot
// streams, e.g. "https://dashboard.example.org". "*" allows any.
func (h *Handler) SetAllowedOrigins(origins []string) {
	h.upgrader = newUpgrader(origins)
}

// InitRoutes builds the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// Browsers cannot set headers on a websocket upgrade; the session id and
	// the origin allow-list guard the stream.
	router.GET("/ws/filters/:id", h.wsFilterStream)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.operatorIDMiddleware)
	{
		h.registerFilterRoutes(api)
		h.registerRecordRoutes(api)
	}
}

func (h *Handler) registerFilterRoutes(api *gin.RouterGroup) {
	filters := api.Group("/filters")
	{
		filters.GET("/config", h.getToolbarConfig)
		filters.POST("/sessions", h.openSession)

		sess := filters.Group("/sessions/:id")
		sess.GET("", h.getSession)
		sess.DELETE("", h.closeSession)
		// Body example: {"facet":"building","value":"Building A"}
		sess.POST("/toggle", h.toggleFacet)
		// Body example: {"start":"2025-02-01","end":"2025-02-15"}; omit a key to keep that bound
		sess.POST("/date-range", h.setDateRange)
		// Body example: {"token":"last7days"}
		sess.POST("/quick-range", h.selectQuickRange)
		sess.POST("/clear", h.clearAll)
		sess.GET("/records", h.visibleRecords)
	}
}

func (h *Handler) registerRecordRoutes(api *gin.RouterGroup) {
	api.POST("/records", h.ingestRecord)
}
