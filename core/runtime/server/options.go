package server

import "github.com/hyperterse/graphgate/core/infrastructure/connectors"

type RuntimeOption func(*Runtime)

// WithPort overrides the HTTP port from the model
func WithPort(port string) RuntimeOption {
	return func(r *Runtime) {
		r.port = port
	}
}

// WithGRPCPort enables the gRPC health server on port
func WithGRPCPort(port string) RuntimeOption {
	return func(r *Runtime) {
		r.grpcPort = port
	}
}

// WithConnectorFactory replaces the connector factory, mainly for tests
func WithConnectorFactory(factory connectors.Factory) RuntimeOption {
	return func(r *Runtime) {
		r.factory = factory
	}
}
