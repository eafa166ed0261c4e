package connectors

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hyperterse/graphgate/core/domain"
	"github.com/hyperterse/graphgate/core/domain/interfaces"
	"github.com/hyperterse/graphgate/core/infrastructure/logging"
)

// Factory opens a connector for an adapter
type Factory func(ctx context.Context, adapter *domain.Adapter) (interfaces.Connector, error)

// ConnectorManager implements the ConnectorManager interface
type ConnectorManager struct {
	connectors map[string]interfaces.Connector
	factory    Factory
	mu         sync.RWMutex
}

// NewConnectorManager creates a new ConnectorManager instance
func NewConnectorManager() *ConnectorManager {
	return NewConnectorManagerWithFactory(NewConnector)
}

// NewConnectorManagerWithFactory creates a manager that opens connectors with factory
func NewConnectorManagerWithFactory(factory Factory) *ConnectorManager {
	return &ConnectorManager{
		connectors: make(map[string]interfaces.Connector),
		factory:    factory,
	}
}

// InitializeAll creates all connectors in parallel from the given adapters.
// If any connector fails to open, the ones already opened are closed and the
// first error is returned.
func (m *ConnectorManager) InitializeAll(ctx context.Context, adapters []*domain.Adapter) error {
	if len(adapters) == 0 {
		return nil
	}

	log := logging.New("connector")
	log.Debugf("Initializing %d adapter(s)", len(adapters))

	g, gctx := errgroup.WithContext(ctx)
	for _, adapter := range adapters {
		g.Go(func() error {
			connLog := logging.New("connector:" + adapter.Name)
			connLog.Debugf("Initializing %s connector", adapter.Connector)
			if len(adapter.Options) > 0 {
				connLog.Debugf("Options provided: %d option(s)", len(adapter.Options))
			}

			conn, err := m.factory(gctx, adapter)
			if err != nil {
				connLog.Errorf("Failed to create connector: %v", err)
				return fmt.Errorf("adapter '%s': %w", adapter.Name, err)
			}

			m.mu.Lock()
			m.connectors[adapter.Name] = conn
			m.mu.Unlock()

			connLog.Debugf("Connector initialized successfully")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Errorf("Initialization failed, closing all connectors: %v", err)
		if closeErr := m.CloseAll(); closeErr != nil {
			log.Warnf("Errors closing connectors: %v", closeErr)
		}
		return err
	}

	log.Debugf("All connectors initialized successfully")
	return nil
}

// CloseAll closes all connectors in parallel
func (m *ConnectorManager) CloseAll() error {
	m.mu.Lock()
	connectors := m.connectors
	m.connectors = make(map[string]interfaces.Connector)
	m.mu.Unlock()

	if len(connectors) == 0 {
		return nil
	}

	log := logging.New("connector")
	log.Debugf("Closing %d connector(s)", len(connectors))

	var wg sync.WaitGroup
	errChan := make(chan error, len(connectors))
	for name, conn := range connectors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			connLog := logging.New("connector:" + name)
			connLog.Debugf("Closing connector")
			if err := conn.Close(); err != nil {
				errChan <- fmt.Errorf("connector '%s': %w", name, err)
				return
			}
			connLog.Debugf("Connector closed successfully")
		}()
	}

	wg.Wait()
	close(errChan)

	return collectErrors(errChan)
}

// Get returns a connector by name
func (m *ConnectorManager) Get(name string) (interfaces.Connector, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conn, exists := m.connectors[name]
	return conn, exists
}

// GetAll returns a copy of the connectors map
func (m *ConnectorManager) GetAll() map[string]interfaces.Connector {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]interfaces.Connector, len(m.connectors))
	maps.Copy(result, m.connectors)
	return result
}

// Count returns the number of managed connectors
func (m *ConnectorManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connectors)
}

func collectErrors(errChan <-chan error) error {
	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
