package di

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperterse/graphgate/core/application/engine"
	"github.com/hyperterse/graphgate/core/application/gateway"
	"github.com/hyperterse/graphgate/core/domain"
	"github.com/hyperterse/graphgate/core/domain/interfaces"
	infraconnectors "github.com/hyperterse/graphgate/core/infrastructure/connectors"
	"github.com/hyperterse/graphgate/core/infrastructure/logging"
)

// Container holds all dependencies
type Container struct {
	mu sync.Mutex

	Model            *domain.Model
	ConnectorManager interfaces.ConnectorManager
	Engine           *engine.Engine
	Holder           *engine.Holder
	Gateway          *gateway.Gateway

	factory infraconnectors.Factory
}

// NewContainer opens every adapter and wires the engine and gateway for model
func NewContainer(ctx context.Context, model *domain.Model) (*Container, error) {
	return NewContainerWithFactory(ctx, model, infraconnectors.NewConnector)
}

// NewContainerWithFactory is NewContainer with a custom connector factory
func NewContainerWithFactory(ctx context.Context, model *domain.Model, factory infraconnectors.Factory) (*Container, error) {
	manager, eng, err := build(ctx, model, factory)
	if err != nil {
		return nil, err
	}

	holder := engine.NewHolder(eng)
	gw := gateway.New(holder, logging.New("gateway"), gateway.WithTimeout(model.Server.ExecutionTimeout))

	return &Container{
		Model:            model,
		ConnectorManager: manager,
		Engine:           eng,
		Holder:           holder,
		Gateway:          gw,
		factory:          factory,
	}, nil
}

func build(ctx context.Context, model *domain.Model, factory infraconnectors.Factory) (*infraconnectors.ConnectorManager, *engine.Engine, error) {
	manager := infraconnectors.NewConnectorManagerWithFactory(factory)
	if err := manager.InitializeAll(ctx, model.Adapters); err != nil {
		return nil, nil, err
	}

	eng, err := engine.New(model, manager)
	if err != nil {
		if closeErr := manager.CloseAll(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return nil, nil, err
	}
	return manager, eng, nil
}

// Reload builds connectors and an engine for model and swaps them in. On
// failure the running engine is left untouched. The previous engine and its
// connectors are closed once the last request running on them returns.
func (c *Container) Reload(ctx context.Context, model *domain.Model) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	manager, eng, err := build(ctx, model, c.factory)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	oldEngine, oldManager := c.Engine, c.ConnectorManager
	c.Model, c.Engine, c.ConnectorManager = model, eng, manager
	c.Holder.Swap(eng, func() {
		if oldEngine != nil {
			oldEngine.Close()
		}
		if oldManager != nil {
			if err := oldManager.CloseAll(); err != nil {
				logging.New("di").Warnf("Errors closing previous connectors: %v", err)
			}
		}
	})
	return nil
}

// Close closes all resources
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Engine != nil {
		c.Engine.Close()
	}
	if c.ConnectorManager != nil {
		return c.ConnectorManager.CloseAll()
	}
	return nil
}
