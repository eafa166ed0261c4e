package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hyperterse/graphgate/core/infrastructure/logging"
	httpmiddleware "github.com/hyperterse/graphgate/core/infrastructure/transport/http/middleware"
)

const shutdownTimeout = 15 * time.Second

// Options tunes optional middleware
type Options struct {
	// RateLimit is applied to every route when set
	RateLimit func(http.Handler) http.Handler
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	port   string
	mu     sync.Mutex
	addr   net.Addr
}

// NewServer creates a new HTTP server
func NewServer(port string, opts Options) *Server {
	if port == "" {
		port = "8080"
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger)
	r.Use(middleware.Recoverer)

	// Preflight requests are answered here; a plain OPTIONS without the
	// preflight headers falls through to the route handler.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Use(httpmiddleware.Metrics)
	r.Use(httpmiddleware.Tracing)
	if opts.RateLimit != nil {
		r.Use(opts.RateLimit)
	}

	return &Server{
		router: r,
		port:   port,
	}
}

// Router returns the chi router
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.StartAsync()
}

// StartAsync binds the port and serves in the background. Bind errors are
// returned; serve errors after that are logged.
func (s *Server) StartAsync() error {
	log := logging.New("http")
	log.Infof("Starting HTTP server on port %s", s.port)

	lis, err := net.Listen("tcp", ":"+s.port)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.addr = lis.Addr()
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	go func() {
		log.Successf("HTTP server listening on http://127.0.0.1:%s", s.port)
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Addr returns the bound address once started
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop() error {
	log := logging.New("http")

	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	log.Infof("Shutting down HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Error shutting down HTTP server: %v", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorf("Error force closing HTTP server: %v", closeErr)
		}
		return err
	}

	log.Infof("HTTP server stopped")
	return nil
}
