package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/horror-movies-api/internal/config"
	"github.com/Clark-Hu/horror-movies-api/internal/links"
	"github.com/Clark-Hu/horror-movies-api/internal/repository"
	"github.com/Clark-Hu/horror-movies-api/internal/store"
)

const apiPrefix = "/api/v1.0"

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// repositories groups the persistence dependencies the handlers rely on.
type repositories struct {
	directors directorRepository
	actors    actorRepository
	movies    movieRepository
	castings  castingRepository
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg        config.Config
	health     healthChecker
	directors  directorRepository
	actors     actorRepository
	movies     movieRepository
	castings   castingRepository
	logger     zerolog.Logger
	router     chi.Router
	links      *links.Registry
	publicBase *url.URL
	httpSrv    *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, st *store.Store, repo *repository.Repository, logger zerolog.Logger) *Server {
	return newServer(cfg, st, repositories{
		directors: repo.Directors,
		actors:    repo.Actors,
		movies:    repo.Movies,
		castings:  repo.Castings,
	}, logger)
}

func newServer(cfg config.Config, health healthChecker, repos repositories, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		health:    health,
		directors: repos.directors,
		actors:    repos.actors,
		movies:    repos.movies,
		castings:  repos.castings,
		logger:    logger,
	}
	if cfg.PublicBaseURL != "" {
		if base, err := url.Parse(cfg.PublicBaseURL); err == nil && base.Host != "" {
			s.publicBase = base
		} else {
			logger.Warn().Str("public_base_url", cfg.PublicBaseURL).Msg("ignoring invalid public base url")
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			ExposedHeaders: []string{"Location"},
			MaxAge:         300,
		}))
	}
	s.router = r
	s.registerRoutes()
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.links = links.NewRegistry()

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Group(func(r chi.Router) {
		if s.cfg.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RateLimitRequests, time.Duration(s.cfg.RateLimitWindowSecs)*time.Second))
		}
		r.Use(s.requireBearer)

		s.route(r, directorRoutes.List, http.MethodGet, apiPrefix+"/directors", s.handleListDirectors)
		s.route(r, directorRoutes.Create, http.MethodPost, apiPrefix+"/directors", s.handleCreateDirector)
		s.route(r, directorRoutes.Get, http.MethodGet, apiPrefix+"/directors/{id}", s.handleGetDirector)
		s.route(r, directorRoutes.Update, http.MethodPut, apiPrefix+"/directors/{id}", s.handleUpdateDirector)
		s.route(r, directorRoutes.Delete, http.MethodDelete, apiPrefix+"/directors/{id}", s.handleDeleteDirector)

		s.route(r, actorRoutes.List, http.MethodGet, apiPrefix+"/actors", s.handleListActors)
		s.route(r, actorRoutes.Create, http.MethodPost, apiPrefix+"/actors", s.handleCreateActor)
		s.route(r, actorRoutes.Get, http.MethodGet, apiPrefix+"/actors/{id}", s.handleGetActor)
		s.route(r, actorRoutes.Update, http.MethodPut, apiPrefix+"/actors/{id}", s.handleUpdateActor)
		s.route(r, actorRoutes.Delete, http.MethodDelete, apiPrefix+"/actors/{id}", s.handleDeleteActor)

		s.route(r, movieRoutes.List, http.MethodGet, apiPrefix+"/movies", s.handleListMovies)
		s.route(r, movieRoutes.Create, http.MethodPost, apiPrefix+"/movies", s.handleCreateMovie)
		s.route(r, movieRoutes.Get, http.MethodGet, apiPrefix+"/movies/{id}", s.handleGetMovie)
		s.route(r, movieRoutes.Update, http.MethodPut, apiPrefix+"/movies/{id}", s.handleUpdateMovie)
		s.route(r, movieRoutes.Delete, http.MethodDelete, apiPrefix+"/movies/{id}", s.handleDeleteMovie)

		s.route(r, routeUpsertCasting, http.MethodPut, apiPrefix+"/movies/{id}/castings/{actorId}", s.handleUpsertCasting)
		s.route(r, routeDeleteCasting, http.MethodDelete, apiPrefix+"/movies/{id}/castings/{actorId}", s.handleDeleteCasting)
	})
}

// route mounts h on r and records it under name for link generation.
func (s *Server) route(r chi.Router, name, method, pattern string, h http.HandlerFunc) {
	s.links.Register(name, method, pattern)
	r.Method(method, pattern, h)
}

// Start boots the HTTP server asynchronously.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpSrv.Addr).Msg("http server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.health == nil {
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database not configured")
		return
	}
	if err := s.health.HealthCheck(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("health check failed")
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", http.StatusText(http.StatusServiceUnavailable))
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
