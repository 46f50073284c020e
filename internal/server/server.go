package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/pcrm/legacy-migrate/internal/config"
	"github.com/pcrm/legacy-migrate/internal/logging"
)

// Server exposes the migration engine over HTTP.
type Server struct {
	svc Service
	cfg *config.ServerConfig
}

func New(svc Service, cfg *config.ServerConfig) *Server {
	return &Server{svc: svc, cfg: cfg}
}

// Router builds the route table. Split from Run so tests can drive the
// handlers through httptest without binding a port.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         900,
	})
	r.Use(c.Handler)

	r.Get("/health", s.handleHealth)
	r.Get("/migration-status", s.handleMigrationStatus)
	r.Post("/test-connection", s.handleTestConnection)
	r.Post("/migrate-data", s.handleMigrateData)
	r.Post("/sync-data", s.handleSyncData)
	r.Post("/import-sql", s.handleImportSQL)

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("HTTP API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logging.Info("shutting down HTTP API")
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Debug("%s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond))
	})
}
