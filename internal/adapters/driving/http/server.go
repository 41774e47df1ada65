package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/custodia-labs/lexcore/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	authService     driving.AuthService
	processService  driving.ProcessService
	contractService driving.ContractService

	// Infrastructure
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authService driving.AuthService,
	processService driving.ProcessService,
	contractService driving.ContractService,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:          http.NewServeMux(),
		version:         cfg.Version,
		authService:     authService,
		processService:  processService,
		contractService: contractService,
		db:              db,
		redisClient:     redisClient,
	}

	logging := NewLoggingMiddleware()
	recovery := NewRecoveryMiddleware()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      recovery.Handler(logging.Handler(s.router)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // synchronous analysis can be slow
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoint (public)
	s.router.HandleFunc("POST /api/v1/auth/token", s.handleToken)

	// Contract endpoints (authenticated)
	s.router.Handle("POST /api/v1/contracts",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleProcessContract)))
	s.router.Handle("POST /api/v1/contracts/segment",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleSegmentPreview)))
	s.router.Handle("GET /api/v1/contracts",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListContracts)))
	s.router.Handle("GET /api/v1/contracts/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetContract)))
	s.router.Handle("GET /api/v1/contracts/{id}/clauses",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetClauses)))
	s.router.Handle("GET /api/v1/contracts/{id}/findings",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetFindings)))
	s.router.Handle("GET /api/v1/contracts/{id}/analyses/{kind}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetAnalysis)))
	s.router.Handle("DELETE /api/v1/contracts/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDeleteContract)))
	s.router.Handle("POST /api/v1/contracts/{id}/analyze",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleAnalyzeContract)))

	// Task endpoints (authenticated)
	s.router.Handle("GET /api/v1/tasks/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetTask)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
