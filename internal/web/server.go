// Package web provides the HTTP console for the SmartMart admin tools.
//
// The console fronts the remote SmartMart API for the SPA: it classifies
// CSV uploads before forwarding them, encodes listings as CSV, serves the
// dashboard summary and passes reports through after checking them.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/JonMunkholm/smartmart/internal/config"
	"github.com/JonMunkholm/smartmart/internal/core"
	"github.com/JonMunkholm/smartmart/internal/pages"
	"github.com/JonMunkholm/smartmart/internal/web/middleware"
)

// Server is the HTTP console.
type Server struct {
	cfg        *config.Config
	backend    pages.Backend
	classifier *core.Classifier
	imports    *core.ImportLimiter
	router     *chi.Mux
	server     *http.Server
}

// NewServer creates a console serving backend with cfg.
func NewServer(backend pages.Backend, cfg *config.Config) *Server {
	s := &Server{
		cfg:        cfg,
		backend:    backend,
		classifier: core.NewClassifier(cfg.CSV.MatchThreshold, cfg.Import.MaxFileSize),
		imports:    core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		router:     chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		perMinute := rate.Every(time.Minute / time.Duration(s.cfg.Rate.RequestsPerMinute))
		limiter := newRateLimiter(perMinute, s.cfg.Rate.Burst, 5*time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/kinds", s.handleListKinds)

		// CSV
		r.Post("/validate/{kind}", s.handleValidate)
		r.Post("/import/{kind}", s.handleImport)
		r.Get("/export/{kind}", s.handleExport)

		// Listings and edits
		r.Get("/products", s.handleListProducts)
		r.Post("/products", s.handleSaveProduct)
		r.Put("/products/{id}", s.handleSaveProduct)
		r.Delete("/products/{id}", s.handleDeleteProduct)
		r.Post("/categories", s.handleSaveCategory)
		r.Put("/categories/{id}", s.handleSaveCategory)
		r.Post("/sales", s.handleCreateSale)
		r.Put("/sales/{id}", s.handleUpdateSale)

		// Dashboard and reports
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/report.xlsx", s.handleReport)
		r.Get("/collection", s.handleCollection)
	})
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("console listening", "addr", s.server.Addr, "api", s.cfg.API.BaseURL)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown waits for in-flight imports, then stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if active := s.imports.ActiveCount(); active > 0 {
		slog.Info("waiting for imports to complete", "active", active)
		if err := s.imports.WaitForDrain(ctx); err != nil {
			slog.Warn("imports did not complete in time", "error", err)
		}
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Imports exposes the import limiter for health reporting.
func (s *Server) Imports() *core.ImportLimiter {
	return s.imports
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// rateLimiter keeps one token bucket per client IP.
// Entries idle for longer than ttl are swept on access.
type rateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(limit rate.Limit, burst int, ttl time.Duration) *rateLimiter {
	return &rateLimiter{
		visitors:  make(map[string]*visitor),
		limit:     limit,
		burst:     burst,
		ttl:       ttl,
		lastSweep: time.Now(),
	}
}

// allow consumes a token for ip.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	now := time.Now()
	if now.Sub(rl.lastSweep) > rl.ttl {
		for key, v := range rl.visitors {
			if now.Sub(v.lastSeen) > rl.ttl {
				delete(rl.visitors, key)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	return v.limiter.Allow()
}

// middleware rejects requests over the per-IP budget with 429.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
