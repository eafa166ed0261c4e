package grpc

import (
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/hyperterse/graphgate/core/infrastructure/logging"
)

// ServiceName is the name reported by the health service for the gateway
const ServiceName = "graphgate.Gateway"

// Server serves the standard gRPC health service and reflection
type Server struct {
	server   *grpc.Server
	health   *health.Server
	port     string
	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a new gRPC server
func NewServer(port string) *Server {
	if port == "" {
		port = "9090"
	}

	s := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Server{
		server: s,
		health: hs,
		port:   port,
	}
}

// Start starts the gRPC server
func (s *Server) Start() error {
	return s.StartAsync()
}

// StartAsync binds the port, marks the gateway SERVING and serves in the background
func (s *Server) StartAsync() error {
	log := logging.New("grpc")
	log.Infof("Starting gRPC server on port %s", s.port)

	lis, err := net.Listen("tcp", ":"+s.port)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.mu.Lock()
	s.listener = lis
	s.mu.Unlock()

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		log.Successf("gRPC server listening on :%s", s.port)
		if err := s.server.Serve(lis); err != nil {
			log.Errorf("gRPC server error: %v", err)
		}
	}()

	return nil
}

// Addr returns the bound address once started
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop reports NOT_SERVING and then stops the server gracefully
func (s *Server) Stop() error {
	log := logging.New("grpc")
	log.Infof("Shutting down gRPC server")

	// Shutdown flips every registered service to NOT_SERVING and ignores later updates
	s.health.Shutdown()
	s.server.GracefulStop()

	log.Infof("gRPC server stopped")
	return nil
}
