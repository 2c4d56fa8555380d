package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/gmsas95/vitalbase/internal/config"
	"github.com/gmsas95/vitalbase/internal/cron"
	"github.com/gmsas95/vitalbase/internal/health"
	"github.com/gmsas95/vitalbase/internal/metrics"
	"github.com/gmsas95/vitalbase/internal/privacy"
	"github.com/gmsas95/vitalbase/internal/store"
)

// Server handles the HTTP API
type Server struct {
	app      *fiber.App
	config   *config.Config
	store    *store.Store
	health   *health.Store
	builder  *health.Builder
	settings *privacy.SettingsStore
	workflow *privacy.Workflow
	retainer *cron.Runner
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// New creates a new API server and wires the domain stores
func New(cfg *config.Config, st *store.Store, logger *zap.Logger) (*Server, error) {
	healthStore, err := health.NewStore(st.DB(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init health store: %w", err)
	}

	settingsStore, err := privacy.NewSettingsStore(st.DB(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init settings store: %w", err)
	}

	workflow, err := privacy.NewWorkflow(st.DB(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init access workflow: %w", err)
	}

	retainer := cron.NewRunner(cron.Config{
		CheckInterval:     cfg.Retention.CheckIntervalMinutes,
		DeniedRequestDays: cfg.Retention.DeniedRequestDays,
	}, workflow, logger)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	s := &Server{
		app:      app,
		config:   cfg,
		store:    st,
		health:   healthStore,
		builder:  health.NewBuilder(),
		settings: settingsStore,
		workflow: workflow,
		retainer: retainer,
		metrics:  metrics.Default(),
		logger:   logger,
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	// Middleware
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(s.config.Security.AllowOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	s.app.Use(s.requestIDMiddleware())
	if s.config.RateLimit.Enabled {
		s.app.Use(s.rateLimitMiddleware())
	}
	s.app.Use(s.metricsMiddleware())

	// Health check and metrics
	s.app.Get("/api/health", s.handleHealth)
	s.app.Get("/metrics", s.handlePrometheus)
	s.app.Get("/api/metrics", s.handleMetricsJSON)

	api := s.app.Group("/api")

	// Public routes
	api.Post("/auth/login", s.handleLogin)

	// Protected routes
	protected := api.Use(s.authMiddleware())

	// Profile
	protected.Post("/profile", s.handleSaveProfile)
	protected.Get("/profile", s.handleGetProfile)
	protected.Put("/profile", s.handleSaveProfile)

	// Body measurements
	protected.Post("/measurements", s.handleCreateMeasurement)
	protected.Get("/measurements", s.handleListMeasurements)
	protected.Get("/measurements/:id", s.handleGetMeasurement)
	protected.Put("/measurements/:id", s.handleUpdateMeasurement)
	protected.Delete("/measurements/:id", s.handleDeleteMeasurement)

	// Vital signs
	protected.Post("/vitals", s.handleCreateVital)
	protected.Get("/vitals", s.handleListVitals)
	protected.Get("/vitals/:id", s.handleGetVital)
	protected.Put("/vitals/:id", s.handleUpdateVital)
	protected.Delete("/vitals/:id", s.handleDeleteVital)

	// Derived views
	protected.Get("/snapshot", s.handleSnapshot)
	protected.Get("/stats", s.handleStats)

	// Privacy settings
	protected.Get("/privacy/settings", s.handleGetSettings)
	protected.Put("/privacy/settings", s.handleUpdateSettings)
	protected.Post("/privacy/settings/reset", s.handleResetSettings)
	protected.Get("/privacy/summary", s.handlePrivacySummary)

	// Access requests
	protected.Post("/privacy/requests", s.handleCreateRequest)
	protected.Get("/privacy/requests", s.handleListRequests)
	protected.Put("/privacy/requests/:id/respond", s.handleRespondRequest)

	// Disclosure-filtered view of another user
	protected.Get("/users/:id/view", s.handleViewUser)
}

// Start starts the server and its retention runner
func (s *Server) Start() error {
	if err := s.retainer.Start(); err != nil {
		return err
	}
	addr := fmt.Sprintf("%s:%d", s.config.Server.Address, s.config.Server.Port)
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.retainer.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"version":   "0.1.0",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handlePrometheus(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/plain; version=0.0.4")
	return c.SendString(s.metrics.Prometheus())
}

func (s *Server) handleMetricsJSON(c *fiber.Ctx) error {
	return c.JSON(s.metrics.Snapshot())
}
