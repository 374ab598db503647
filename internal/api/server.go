package api

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/shipstores/config"
	"example.com/shipstores/internal/assets"
	"example.com/shipstores/internal/metrics"
	"example.com/shipstores/internal/services"
	"example.com/shipstores/internal/tracing"
)

// Server represents the HTTP server
type Server struct {
	config       config.Config
	router       *gin.Engine
	httpServer   *http.Server
	users        *services.UserService
	vessels      *services.VesselService
	items        *services.ItemService
	requisitions *services.RequisitionService
	companies    *services.CompanyService
	reference    *services.ReferenceService
	assets       *assets.Store
	metrics      *metrics.Metrics
	tracer       tracing.Tracer
}

// Services bundles the service layer dependencies of the server.
type Services struct {
	Users        *services.UserService
	Vessels      *services.VesselService
	Items        *services.ItemService
	Requisitions *services.RequisitionService
	Companies    *services.CompanyService
	Reference    *services.ReferenceService
}

// NewServer creates a new HTTP server
func NewServer(cfg config.Config, svcs Services, assetStore *assets.Store, m *metrics.Metrics, tracer tracing.Tracer) *Server {
	server := &Server{
		config:       cfg,
		users:        svcs.Users,
		vessels:      svcs.Vessels,
		items:        svcs.Items,
		requisitions: svcs.Requisitions,
		companies:    svcs.Companies,
		reference:    svcs.Reference,
		assets:       assetStore,
		metrics:      m,
		tracer:       tracer,
	}

	registerValidations()
	server.router = server.setupRouter()

	server.httpServer = &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      server.router,
		ReadTimeout:  cfg.ServerTimeout,
		WriteTimeout: cfg.ServerTimeout,
	}

	return server
}

var imoPattern = regexp.MustCompile(`^[0-9]{7}$`)

// registerValidations adds custom binding validations to gin's validator.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("imo", func(fl validator.FieldLevel) bool {
			return imoPattern.MatchString(fl.Field().String())
		})
	}
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	router.GET("/health", s.handleHealthCheck)
	router.GET("/metrics", s.handleGetMetrics)
	router.Static("/media", s.config.Assets.MediaDir)

	v1 := router.Group("/api/v1")

	// Public routes: login and the vessel dropdown that feeds it.
	v1.POST("/auth/login", s.handleLogin)
	v1.GET("/vessels/active", s.handleListActiveVessels)

	authed := v1.Group("", s.authenticate())

	authed.GET("/auth/me", s.handleMe)
	authed.PUT("/auth/password", s.handleChangeOwnPassword)

	authed.GET("/items", s.handleListItems)
	authed.GET("/items/recently-ordered", s.handleRecentlyOrderedItems)
	authed.GET("/items/:id", s.handleGetItem)
	authed.POST("/items", s.handleCreateItem)
	authed.PUT("/items/:id", s.handleUpdateItem)
	authed.POST("/items/:id/image", s.handleUploadItemImage)
	authed.DELETE("/items/:id/image", s.handleDeleteItemImage)
	authed.PUT("/items/:id/global-active", s.handleSetItemGlobalActive)
	authed.PUT("/items/:id/vessel-active", s.handleSetItemVesselActive)

	authed.GET("/requisitions", s.handleListRequisitions)
	authed.POST("/requisitions", s.handleCreateRequisition)
	authed.GET("/requisitions/:id", s.handleGetRequisition)
	authed.PUT("/requisitions/:id", s.handleUpdateRequisition)
	authed.DELETE("/requisitions/:id", s.handleDeleteRequisition)
	authed.PUT("/requisitions/:id/status", s.handleChangeRequisitionStatus)
	authed.POST("/requisitions/:id/items", s.handleAddRequisitionItem)
	authed.POST("/requisitions/:id/items/:lineID/receive", s.handleReceiveRequisitionLine)

	authed.GET("/vessels", s.handleListVessels)
	authed.POST("/vessels", s.handleRegisterVessel)
	authed.GET("/vessels/:id", s.handleGetVessel)
	authed.GET("/vessels/:id/stats", s.handleGetVesselStats)
	authed.PUT("/vessels/:id", s.handleUpdateVessel)
	authed.PUT("/vessels/:id/active", s.handleSetVesselActive)

	authed.GET("/crew", s.handleListCrew)
	authed.POST("/crew", s.handleCreateCrew)
	authed.PUT("/crew/:id", s.handleUpdateCrew)
	authed.PUT("/crew/:id/active", s.handleSetCrewActive)
	authed.PUT("/crew/:id/password", s.handleSetCrewPassword)

	authed.GET("/companies", s.handleListCompanies)
	authed.POST("/companies", s.handleCreateCompany)
	authed.GET("/companies/:id", s.handleGetCompany)
	authed.PUT("/companies/:id", s.handleUpdateCompany)
	authed.POST("/companies/:id/logo", s.handleUploadCompanyLogo)

	authed.GET("/categories", s.handleListCategories)
	authed.POST("/categories", s.handleCreateCategory)

	authed.GET("/tags", s.handleListTags)
	authed.POST("/tags", s.handleCreateTag)
	authed.PUT("/tags/:id", s.handleUpdateTag)
	authed.DELETE("/tags/:id", s.handleDeleteTag)

	return router
}

// handleHealthCheck reports the component health tracked by the workers.
func (s *Server) handleHealthCheck(c *gin.Context) {
	healthChecks := s.metrics.GetHealthChecks()

	healthy := true
	for _, status := range healthChecks {
		if !status {
			healthy = false
			break
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": healthy, "details": healthChecks})
}

// handleGetMetrics returns all collected metrics.
func (s *Server) handleGetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.metrics.GetAllMetrics())
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.ServerAddress).Msg("starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("HTTP server shut down successfully")
	return nil
}
