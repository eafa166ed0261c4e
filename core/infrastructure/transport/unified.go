package transport

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hyperterse/graphgate/core/domain/interfaces"
	"github.com/hyperterse/graphgate/core/infrastructure/logging"
	grpctransport "github.com/hyperterse/graphgate/core/infrastructure/transport/grpc"
	httptransport "github.com/hyperterse/graphgate/core/infrastructure/transport/http"
)

// UnifiedServer runs the HTTP server and, when a gRPC port is set, the gRPC
// health server alongside it.
type UnifiedServer struct {
	httpServer *httptransport.Server
	grpcServer *grpctransport.Server
	httpPort   string
	grpcPort   string
}

// NewUnifiedServer creates a new unified server. An empty grpcPort disables gRPC.
func NewUnifiedServer(httpPort, grpcPort string, opts httptransport.Options) *UnifiedServer {
	s := &UnifiedServer{
		httpServer: httptransport.NewServer(httpPort, opts),
		httpPort:   httpPort,
		grpcPort:   grpcPort,
	}
	if grpcPort != "" {
		s.grpcServer = grpctransport.NewServer(grpcPort)
	}
	return s
}

// RegisterRoutes registers HTTP routes
func (s *UnifiedServer) RegisterRoutes(gateway interfaces.Gateway) {
	httptransport.RegisterRoutes(s.httpServer.Router(), gateway)
}

// HTTP returns the HTTP server
func (s *UnifiedServer) HTTP() *httptransport.Server {
	return s.httpServer
}

// GRPC returns the gRPC server, or nil when disabled
func (s *UnifiedServer) GRPC() *grpctransport.Server {
	return s.grpcServer
}

// Start starts both servers and blocks until SIGINT or SIGTERM
func (s *UnifiedServer) Start() error {
	if err := s.StartAsync(); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	<-quit

	return s.Stop()
}

// StartAsync starts both servers without blocking
func (s *UnifiedServer) StartAsync() error {
	log := logging.New("server")
	if s.grpcServer != nil {
		log.Infof("Starting unified server (HTTP: %s, gRPC: %s)", s.httpPort, s.grpcPort)
	} else {
		log.Infof("Starting server (HTTP: %s)", s.httpPort)
	}

	if err := s.httpServer.StartAsync(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if s.grpcServer != nil {
		if err := s.grpcServer.StartAsync(); err != nil {
			_ = s.httpServer.Stop()
			return fmt.Errorf("failed to start gRPC server: %w", err)
		}
	}

	return nil
}

// Stop stops both servers gracefully
func (s *UnifiedServer) Stop() error {
	log := logging.New("server")
	log.Infof("Shutting down unified server")

	var errs []error
	if s.grpcServer != nil {
		if err := s.grpcServer.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("gRPC server shutdown error: %w", err))
		}
	}
	if err := s.httpServer.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("HTTP server shutdown error: %w", err))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	log.Infof("Unified server stopped")
	return nil
}
