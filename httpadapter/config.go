package httpadapter

import (
	"time"

	"github.com/kbukum/restadapter/security"
	"github.com/kbukum/restadapter/util"
	"github.com/kbukum/restadapter/validation"
	"github.com/kbukum/restadapter/version"
)

const (
	defaultName         = "httpadapter"
	defaultTimeout      = 10 * time.Second
	defaultMaxRedirects = 10
)

// Config configures the HTTP adapter. Zero timeouts mean "no timeout".
type Config struct {
	// Name identifies the adapter in logs, spans and metrics. Defaults to "httpadapter".
	Name string `yaml:"name" mapstructure:"name"`

	// ConnectTimeout bounds establishing a connection (including a SOCKS handshake).
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout" validate:"gte=0"`

	// ReadTimeout bounds each socket read.
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" validate:"gte=0"`

	// WriteTimeout bounds each socket write.
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" validate:"gte=0"`

	// FollowRedirects enables redirect following. Defaults to true.
	FollowRedirects *bool `yaml:"follow_redirects" mapstructure:"follow_redirects"`

	// MaxRedirects caps the redirect chain when following. Zero selects the
	// default of 10; use FollowRedirects to disable following.
	MaxRedirects int `yaml:"max_redirects" mapstructure:"max_redirects" validate:"gte=0"`

	// Proxy is a proxy URL (http, https or socks5). Empty means direct.
	Proxy string `yaml:"proxy" mapstructure:"proxy"`

	// TLS configures TLS settings for the HTTP transport.
	TLS *security.TLSConfig `yaml:"tls,omitempty" mapstructure:"tls"`

	// Headers are the initial default headers applied to all requests.
	Headers map[string]string `yaml:"headers,omitempty" mapstructure:"headers"`

	// UserAgent is sent unless a default or request header overrides it.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Auth installs a Basic challenge responder at construction.
	Auth *Credentials `yaml:"auth,omitempty" mapstructure:"auth"`
}

// DefaultConfig returns a config with 10s connect/read/write timeouts.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout: defaultTimeout,
		ReadTimeout:    defaultTimeout,
		WriteTimeout:   defaultTimeout,
	}
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
// Timeouts are left alone since zero is meaningful.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.FollowRedirects == nil {
		c.FollowRedirects = util.Ptr(true)
	}
	if c.MaxRedirects == 0 {
		c.MaxRedirects = defaultMaxRedirects
	}
	if c.UserAgent == "" {
		c.UserAgent = version.UserAgent("restadapter")
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return &ConfigurationError{Field: "config", Message: err.Error(), Err: err}
	}
	if _, err := ParseProxy(c.Proxy); err != nil {
		return err
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return &ConfigurationError{Field: "tls", Message: err.Error(), Err: err}
		}
	}
	return nil
}
