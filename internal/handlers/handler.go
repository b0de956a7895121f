package handlers

import (
	"net/http"

	"silo_scanner/internal/logger"
	"silo_scanner/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options toggles the optional routes.
type Options struct {
	// Metrics is served at /metrics when non-nil.
	Metrics http.Handler
	// Simulator mounts the fake sensor API under /sim.
	Simulator bool
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	return &Handler{services: services, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	if h.opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.opts.Metrics))
	}

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)
	if h.opts.Simulator {
		h.registerSimulatorRoutes(router)
	}

	// status stream, same port
	router.GET("/ws", h.wsConnect)

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
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerScanRoutes(api)
		h.registerSiloRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerScanRoutes(api *gin.RouterGroup) {
	scan := api.Group("/scan")
	{
		scan.POST("/start", h.startScan)
		scan.POST("/stop", h.stopScan)
		scan.POST("/reset", h.resetScan)
		scan.GET("/status", h.getScanStatus)
	}
	api.GET("/catalog", h.getCatalog)
}

func (h *Handler) registerSiloRoutes(api *gin.RouterGroup) {
	silos := api.Group("/silos")
	{
		silos.GET("", h.listSilos)
		silos.GET("/:id", h.getSilo)
		silos.POST("/:id/inspect", h.inspectSilo)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}

// Same path as the real sensor API, so the gateway can point at this service.
func (h *Handler) registerSimulatorRoutes(r *gin.Engine) {
	sim := r.Group("/sim")
	{
		sim.GET("/readings/avg/latest/by-silo-number", h.simReading)
	}
}
