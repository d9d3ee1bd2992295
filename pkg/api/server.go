package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/r3d91ll/heddle/pkg/config"
	herrors "github.com/r3d91ll/heddle/pkg/errors"
)

// shutdownTimeout bounds graceful shutdown in Serve.
const shutdownTimeout = 5 * time.Second

// Server represents the HTTP host for mounted visualizations.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	router     *Router
	config     *ServerConfig

	// mu protects server state
	mu      sync.RWMutex
	running bool
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	// Host is the interface to bind to (default: "localhost")
	Host string `yaml:"host" json:"host"`

	// Port is the port to listen on (default: 8090). Zero after defaults
	// picks a free port.
	Port int `yaml:"port" json:"port"`

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration `yaml:"read_timeout" json:"readTimeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response
	WriteTimeout time.Duration `yaml:"write_timeout" json:"writeTimeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration `yaml:"idle_timeout" json:"idleTimeout"`

	// CORSOrigins is a list of allowed origins for CORS requests
	CORSOrigins []string `yaml:"cors_origins" json:"corsOrigins"`

	// EnableLogging enables request logging middleware
	EnableLogging bool `yaml:"enable_logging" json:"enableLogging"`
}

// DefaultServerConfig returns sensible defaults for the API server.
func DefaultServerConfig() *ServerConfig {
	return FromConfig(config.Default().Server)
}

// FromConfig converts the server section of the configuration file.
func FromConfig(c config.ServerConfig) *ServerConfig {
	return &ServerConfig{
		Host:          c.Host,
		Port:          c.Port,
		ReadTimeout:   c.ReadTimeout,
		WriteTimeout:  c.WriteTimeout,
		IdleTimeout:   c.IdleTimeout,
		CORSOrigins:   c.CORSOrigins,
		EnableLogging: c.EnableLogging,
	}
}

// NewServer creates a new API server with the given configuration.
func NewServer(cfg *ServerConfig) *Server {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}

	// Apply defaults for zero values
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	return &Server{
		router: NewRouter(),
		config: cfg,
	}
}

// Address returns the configured address in host:port format.
func (s *Server) Address() string {
	return net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
}

// ListenAddress returns the bound address once the server is running, or
// the configured one otherwise.
func (s *Server) ListenAddress() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.Address()
}

// Router returns the underlying router for registering handlers.
func (s *Server) Router() *Router {
	return s.router
}

// Config returns the server configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Handler returns the router wrapped in the configured middleware.
func (s *Server) Handler() http.Handler {
	middlewares := []Middleware{RequestIDMiddleware, RecoveryMiddleware}
	if s.config.EnableLogging {
		middlewares = append(middlewares, LoggingMiddleware)
	}
	if len(s.config.CORSOrigins) > 0 {
		middlewares = append(middlewares, CORSMiddleware(s.config.CORSOrigins))
		SetUpgraderCheckOrigin(makeOriginChecker(s.config.CORSOrigins))
	}
	middlewares = append(middlewares, ContentTypeMiddleware)
	return Chain(s.router, middlewares...)
}

// Start binds the listener and serves in a goroutine. Bind errors are
// returned directly.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.Address())
	if err != nil {
		return herrors.ServerStartFailed(s.Address(), err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.running = true

	srv := s.httpServer
	go func() {
		log.Printf("[api] Starting server on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[api] Server error: %v", err)
		}
	}()
	return nil
}

// Serve starts the server and blocks until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down the server with a timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	log.Printf("[api] Shutting down server...")
	s.running = false
	s.listener = nil

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// IsRunning returns true if the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// makeOriginChecker creates a function that validates WebSocket origins
// against the configured CORS origins list.
func makeOriginChecker(allowedOrigins []string) func(*http.Request) bool {
	allowed := make(map[string]bool)
	for _, origin := range allowedOrigins {
		if origin == "*" {
			return func(r *http.Request) bool {
				return true
			}
		}
		allowed[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Same-origin request.
			return true
		}
		return allowed[origin]
	}
}
