// Package api provides the HTTP API server and handlers for Munazzam.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/munazzamapp/munazzam-server/internal/config"
	"github.com/munazzamapp/munazzam-server/internal/ratelimit"
	"github.com/munazzamapp/munazzam-server/internal/service"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the business services used by handlers.
type Services struct {
	Tag      *service.TagService
	Contact  *service.ContactService
	Audience *service.AudienceService
	Campaign *service.CampaignService
	Template *service.TemplateService
	Import   *service.ImportService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       Pinger
	services *Services
	cfg      *config.Config
	router   *chi.Mux
	api      huma.API
	limiter  *ratelimit.KeyedRateLimiter
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(db Pinger, services *Services, cfg *config.Config, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	s := &Server{
		db:       db,
		services: services,
		cfg:      cfg,
		router:   chi.NewRouter(),
		limiter:  limiter,
		logger:   logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Munazzam API", Version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI generation.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", headerExportID, headerRecipientCount},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerTagRoutes()
	s.registerContactRoutes()
	s.registerCampaignRoutes()
	s.registerTemplateRoutes()

	// File transfer endpoints bypass huma: multipart in, spreadsheet out.
	s.router.Group(func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/api/v1/contacts/import", s.handleImportContacts)
		r.Post("/api/v1/campaigns/export", s.handleExportCampaign)
	})
}
