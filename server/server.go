package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/personascope/personascope/pkg/domain"
	"github.com/personascope/personascope/pkg/repository"
)

// Server exposes the persona archive over a read-only HTTP API. It never
// triggers fetching or generation.
type Server struct {
	config   ConfigProvider
	personas PersonaReader
	version  string
	debug    bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// PersonaReader provides read access to archived personas
type PersonaReader interface {
	List(ctx context.Context, limit int) ([]domain.PersonaRecord, error)
	GetLatest(ctx context.Context, username string) (*domain.PersonaRecord, error)
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// New initializes a new server instance
func New(cfg ConfigProvider, personas PersonaReader, version string, debug bool) *Server {
	s := &Server{
		config:   cfg,
		personas: personas,
		version:  version,
		debug:    debug,
		router:   routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server, blocks until ctx is canceled and shuts down
// gracefully
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] persona server listening on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down persona server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("personascope", "personascope", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /personas", s.listPersonasHandler)
		r.HandleFunc("GET /personas/{username}", s.getPersonaHandler)
		r.HandleFunc("GET /personas/{username}/report", s.getReportHandler)
	})
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	RenderJSON(w, r, http.StatusOK, status)
}

// listPersonasHandler returns archived personas, newest first
func (s *Server) listPersonasHandler(w http.ResponseWriter, r *http.Request) {
	records, err := s.personas.List(r.Context(), 50)
	if err != nil {
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}
	RenderJSON(w, r, http.StatusOK, records)
}

// getPersonaHandler returns the latest persona for a username
func (s *Server) getPersonaHandler(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	rec, err := s.personas.GetLatest(r.Context(), username)
	if errors.Is(err, repository.ErrNotFound) {
		RenderError(w, r, err, http.StatusNotFound)
		return
	}
	if err != nil {
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}
	RenderJSON(w, r, http.StatusOK, rec)
}

// getReportHandler serves the report file written for a username
func (s *Server) getReportHandler(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	rec, err := s.personas.GetLatest(r.Context(), username)
	if errors.Is(err, repository.ErrNotFound) {
		RenderError(w, r, err, http.StatusNotFound)
		return
	}
	if err != nil {
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}

	data, err := os.ReadFile(rec.ReportPath) //nolint:gosec // path comes from our own archive
	if err != nil {
		RenderError(w, r, fmt.Errorf("report file unavailable"), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// RenderJSON writes data as a JSON response with the given status code
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[ERROR] can't encode response to JSON: %v", err)
	}
}

// RenderError writes err as a JSON error body with the given status code
func RenderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	RenderJSON(w, r, code, map[string]string{"error": msg})
}
