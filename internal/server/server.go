// Package server is the composition root: it opens the database, builds
// services and handlers, and mounts them on a chi router.
//
// DEPENDENCY FLOW:
//
//	config.Config → sqlite.DB → services (repository interfaces) → handlers → routes
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/sparko/internal/auth"
	"github.com/sakif/sparko/internal/config"
	"github.com/sakif/sparko/internal/handler"
	"github.com/sakif/sparko/internal/middleware"
	"github.com/sakif/sparko/internal/profile"
	sqliteRepo "github.com/sakif/sparko/internal/repository/sqlite"
	"github.com/sakif/sparko/internal/service"
)

// Services is every business service, wired against one database. The seed
// command builds the same set without an HTTP server.
type Services struct {
	Auth      *service.AuthService
	Profiles  *service.ProfileService
	Discovery *service.DiscoveryService
	Matches   *service.MatchService
	Swipes    *service.SwipeService
	Quota     *service.QuotaService
	Tokens    *auth.TokenService
}

// NewServices wires the service layer on db.
func NewServices(cfg *config.Config, db *sqliteRepo.DB, logger *slog.Logger) (*Services, error) {
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	profiles := service.NewProfileService(db, db, profile.NewEvaluator(), logger)
	matches := service.NewMatchService(db, db, db, logger)
	return &Services{
		Auth:      service.NewAuthService(db, db, tokens, auth.NewPasswordService(), logger),
		Profiles:  profiles,
		Discovery: service.NewDiscoveryService(db, profiles, db, logger),
		Matches:   matches,
		Swipes:    service.NewSwipeService(db, matches, logger),
		Quota:     service.NewQuotaService(db, logger),
		Tokens:    tokens,
	}, nil
}

// OpenDB opens the configured database, creating its directory if needed.
func OpenDB(path string) (*sqliteRepo.DB, error) {
	if path != sqliteRepo.MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sqliteRepo.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// Server represents the HTTP server and all its dependencies. It owns the
// database connection and closes it on shutdown.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	services *Services
}

// New opens the database and builds the router.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := OpenDB(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	services, err := NewServices(cfg, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		db:       db,
		services: services,
	}
	s.setupRoutes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz                          → liveness + DB ping
// POST   /auth/register, /auth/login       → password accounts
// GET    /auth/github/login, /callback     → GitHub OAuth (when configured)
// POST   /auth/logout                      → clear cookie
// GET    /api/me, PUT /api/me              → account
// GET    /api/profiles                     → all role profiles
// GET    /api/profiles/{role}              → one role profile
// PUT    /api/profiles/{role}              → replace a role profile
// GET    /api/profiles/{role}/completion   → completeness report
// POST   /api/switch-role                  → change active role
// GET    /api/discover                     → next candidates
// POST   /api/swipe                        → like / skip / super_spark
// GET    /api/matches, /api/matches/{id}   → matches in the current role
// POST   /api/matches/{id}/unlock          → open chat
// GET    /api/super-spark                  → quota status
// POST   /api/super-spark/reset            → weekly refill check
//
// Middleware order: RequestID, RealIP, Logger, Recoverer. Logger sits
// outside Recoverer so a recovered panic is still logged as a 500.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	svc := s.services

	var github handler.GitHubAuthenticator
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.config.GitHub.ClientID, s.config.GitHub.ClientSecret, s.config.GitHub.CallbackURL)
	}

	authHandler := handler.NewAuthHandler(svc.Auth, github, svc.Tokens.TTL(), s.config.Auth.SecureCookies, s.logger)
	profileHandler := handler.NewProfileHandler(svc.Profiles, s.logger)
	discoveryHandler := handler.NewDiscoveryHandler(svc.Discovery, s.logger)
	swipeHandler := handler.NewSwipeHandler(svc.Swipes, s.logger)
	matchHandler := handler.NewMatchHandler(svc.Matches, s.logger)
	quotaHandler := handler.NewQuotaHandler(svc.Quota, s.logger)

	s.router.Get("/healthz", handler.HandleHealth(s.db, s.logger))

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(svc.Tokens))

		r.Get("/me", authHandler.HandleMe)
		r.Put("/me", authHandler.HandleUpdateMe)

		r.Get("/profiles", profileHandler.HandleList)
		r.Get("/profiles/{role}", profileHandler.HandleGet)
		r.Put("/profiles/{role}", profileHandler.HandleUpdate)
		r.Get("/profiles/{role}/completion", profileHandler.HandleCompletion)
		r.Post("/switch-role", profileHandler.HandleSwitchRole)

		r.Get("/discover", discoveryHandler.HandleDiscover)
		r.Post("/swipe", swipeHandler.HandleSwipe)

		r.Get("/matches", matchHandler.HandleList)
		r.Get("/matches/{id}", matchHandler.HandleGet)
		r.Post("/matches/{id}/unlock", matchHandler.HandleUnlock)

		r.Get("/super-spark", quotaHandler.HandleStatus)
		r.Post("/super-spark/reset", quotaHandler.HandleReset)
	})
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully:
// stop accepting connections, let in-flight requests finish within the
// shutdown timeout, close the database.
func (s *Server) Run(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("database", s.config.Database.Path),
			slog.Bool("github", s.config.GitHubEnabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}
