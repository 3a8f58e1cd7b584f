package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/restadapter/component"
)

// Manager runs several test components together. Start and stop ordering
// follows component.Registry: registration order up, reverse order down.
type Manager struct {
	ctx        context.Context
	registry   *component.Registry
	components []TestComponent
	mu         sync.RWMutex
}

// NewManager creates a new test component manager.
func NewManager(ctx context.Context) *Manager {
	return &Manager{
		ctx:      ctx,
		registry: component.NewRegistry(),
	}
}

// Add registers a test component. Names must be unique.
func (m *Manager) Add(c TestComponent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.registry.Register(c); err != nil {
		return err
	}
	m.components = append(m.components, c)
	return nil
}

// Components returns all registered components.
func (m *Manager) Components() []TestComponent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]TestComponent, len(m.components))
	copy(result, m.components)
	return result
}

// Get returns a component by name, or nil.
func (m *Manager) Get(name string) TestComponent {
	c, _ := m.registry.Get(name).(TestComponent)
	return c
}

// StartAll starts all registered components in order.
func (m *Manager) StartAll() error {
	return m.registry.StartAll(m.ctx)
}

// StopAll stops all started components in reverse order, joining errors.
func (m *Manager) StopAll() error {
	return m.registry.StopAll(m.ctx)
}

// ResetAll resets every component, stopping at the first failure.
func (m *Manager) ResetAll() error {
	for _, c := range m.Components() {
		if err := c.Reset(m.ctx); err != nil {
			return fmt.Errorf("failed to reset component %s: %w", c.Name(), err)
		}
	}
	return nil
}

// Health reports the health of every component.
func (m *Manager) Health() []component.Health {
	return m.registry.HealthAll(m.ctx)
}

// Cleanup is StopAll, shaped for defer and t.Cleanup.
func (m *Manager) Cleanup() error {
	return m.StopAll()
}
