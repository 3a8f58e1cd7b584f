package httpadapter

import (
	"context"
	"fmt"

	"github.com/kbukum/restadapter/component"
)

// Component wraps an Adapter with lifecycle management.
type Component struct {
	adapter *Adapter
	config  Config
	opts    []Option
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a new HTTP adapter component.
// The adapter is created lazily in Start().
func NewComponent(cfg Config, opts ...Option) *Component {
	return &Component{config: cfg, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string {
	if c.config.Name == "" {
		return defaultName
	}
	return c.config.Name
}

// Start initializes the HTTP adapter.
func (c *Component) Start(_ context.Context) error {
	a, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}
	c.adapter = a
	return nil
}

// Stop closes the HTTP adapter and releases idle connections.
func (c *Component) Stop(ctx context.Context) error {
	if c.adapter != nil {
		return c.adapter.Close(ctx)
	}
	return nil
}

// Health returns the adapter health status.
func (c *Component) Health(ctx context.Context) component.Health {
	status := component.StatusHealthy
	if c.adapter == nil || !c.adapter.IsAvailable(ctx) {
		status = component.StatusUnhealthy
	}
	return component.Health{
		Name:   c.Name(),
		Status: status,
	}
}

// Describe returns the component description.
func (c *Component) Describe() component.Description {
	details := "proxy=direct"
	if c.adapter != nil {
		details = fmt.Sprintf("proxy=%s redirects=%t", c.adapter.Proxy(), c.adapter.FollowRedirects())
	} else if c.config.Proxy != "" {
		if p, err := ParseProxy(c.config.Proxy); err == nil {
			details = "proxy=" + p.String()
		}
	}
	if c.config.TLS.IsEnabled() {
		details += " tls=[" + c.config.TLS.Summary() + "]"
	}
	return component.Description{
		Name:    c.Name(),
		Type:    "http-adapter",
		Details: details,
	}
}

// Adapter returns the underlying adapter. Must be called after Start().
func (c *Component) Adapter() *Adapter {
	return c.adapter
}
