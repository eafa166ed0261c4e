package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hyperterse/graphgate/core/domain"
	"github.com/hyperterse/graphgate/core/infrastructure/connectors"
	"github.com/hyperterse/graphgate/core/infrastructure/di"
	"github.com/hyperterse/graphgate/core/infrastructure/transport"
	httptransport "github.com/hyperterse/graphgate/core/infrastructure/transport/http"
	httpmiddleware "github.com/hyperterse/graphgate/core/infrastructure/transport/http/middleware"
	"github.com/hyperterse/graphgate/core/logger"
	"github.com/hyperterse/graphgate/core/shared/envsubst"
)

// Runtime owns the dependency container and the servers in front of it
type Runtime struct {
	container *di.Container
	server    *transport.UnifiedServer
	limiter   *redis.Client
	port      string
	grpcPort  string
	factory   connectors.Factory
}

// NewRuntime opens the model's adapters and prepares the servers. Nothing
// listens until Start or StartAsync.
func NewRuntime(ctx context.Context, model *domain.Model, opts ...RuntimeOption) (*Runtime, error) {
	r := &Runtime{
		port:     model.Server.Port,
		grpcPort: model.Server.GRPCPort,
		factory:  connectors.NewConnector,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.port == "" {
		r.port = "8080"
	}

	log := logger.New("runtime")
	if len(model.Adapters) == 0 {
		log.Infof("No adapters to initialize")
	}

	container, err := di.NewContainerWithFactory(ctx, model, r.factory)
	if err != nil {
		return nil, err
	}
	r.container = container

	var httpOpts httptransport.Options
	if rl := model.Server.RateLimit; rl != nil {
		client, err := newRedisClient(rl.RedisURL)
		if err != nil {
			_ = container.Close()
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		r.limiter = client
		httpOpts.RateLimit = httpmiddleware.RateLimitByIP(httpmiddleware.NewRedisRateLimiter(client), rl.Requests, rl.Window)
		log.Infof("Rate limiting enabled: %d request(s) per %s", rl.Requests, rl.Window)
	}

	r.server = transport.NewUnifiedServer(r.port, r.grpcPort, httpOpts)
	r.server.RegisterRoutes(container.Gateway)
	return r, nil
}

func newRedisClient(rawURL string) (*redis.Client, error) {
	resolved, err := envsubst.Substitute(rawURL)
	if err != nil {
		return nil, err
	}
	opts, err := redis.ParseURL(resolved)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

// Container returns the dependency container
func (r *Runtime) Container() *di.Container {
	return r.container
}

// Server returns the unified server
func (r *Runtime) Server() *transport.UnifiedServer {
	return r.server
}

// Start starts the runtime and blocks until SIGTERM/SIGINT
func (r *Runtime) Start() error {
	if err := r.server.Start(); err != nil {
		return errors.Join(err, r.closeResources())
	}
	return r.closeResources()
}

// StartAsync starts the runtime without blocking
func (r *Runtime) StartAsync() error {
	return r.server.StartAsync()
}

// ReloadModel swaps in a new model without restarting the listeners. Server
// settings (ports, timeout, rate limit) keep their startup values.
func (r *Runtime) ReloadModel(ctx context.Context, model *domain.Model) error {
	log := logger.New("runtime")
	log.Infof("Reloading model...")

	if err := r.container.Reload(ctx, model); err != nil {
		return err
	}

	log.Successf("Model reloaded successfully")
	return nil
}

// Stop shuts the servers down and releases connectors
func (r *Runtime) Stop() error {
	return errors.Join(r.server.Stop(), r.closeResources())
}

func (r *Runtime) closeResources() error {
	var errs []error
	if err := r.container.Close(); err != nil {
		errs = append(errs, err)
	}
	if r.limiter != nil {
		if err := r.limiter.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
