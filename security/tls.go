package security

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidTLS is wrapped by every configuration error returned from
// Validate and Build.
var ErrInvalidTLS = errors.New("tls: invalid configuration")

var tlsVersions = map[string]uint16{
	"1.0": tls.VersionTLS10,
	"1.1": tls.VersionTLS11,
	"1.2": tls.VersionTLS12,
	"1.3": tls.VersionTLS13,
}

// TLSConfig configures server verification and client certificates for
// outbound connections.
type TLSConfig struct {
	// SkipVerify disables server certificate verification.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`

	// CAFile is a PEM bundle trusted in place of the system roots.
	CAFile string `yaml:"ca_file,omitempty" mapstructure:"ca_file"`

	// CertFile and KeyFile are the client certificate for mutual TLS.
	// Both or neither must be set.
	CertFile string `yaml:"cert_file,omitempty" mapstructure:"cert_file"`
	KeyFile  string `yaml:"key_file,omitempty" mapstructure:"key_file"`

	// ServerName overrides the name checked against the server certificate.
	ServerName string `yaml:"server_name,omitempty" mapstructure:"server_name"`

	// MinVersion is "1.0" through "1.3". Defaults to "1.2".
	MinVersion string `yaml:"min_version,omitempty" mapstructure:"min_version"`
}

// Build creates a *tls.Config, or nil when c is nil or has no settings.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if !c.IsEnabled() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify, //nolint:gosec // opt-in
		ServerName:         c.ServerName,
		MinVersion:         c.minVersion(),
	}
	if err := c.loadCA(cfg); err != nil {
		return nil, err
	}
	if err := c.loadClientCert(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that can be checked without reading files.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile != "") != (c.KeyFile != "") {
		return fmt.Errorf("%w: cert_file and key_file must be set together", ErrInvalidTLS)
	}
	if c.MinVersion != "" {
		if _, ok := tlsVersions[c.MinVersion]; !ok {
			return fmt.Errorf("%w: unknown min_version %q", ErrInvalidTLS, c.MinVersion)
		}
	}
	return nil
}

// IsEnabled reports whether any setting is configured.
func (c *TLSConfig) IsEnabled() bool {
	if c == nil {
		return false
	}
	return c.SkipVerify || c.CAFile != "" || c.CertFile != "" || c.KeyFile != "" ||
		c.ServerName != "" || c.MinVersion != ""
}

// Summary is a one-line description for startup output, e.g.
// "verify=ca mtls=on min=1.3".
func (c *TLSConfig) Summary() string {
	if !c.IsEnabled() {
		return "default"
	}
	verify := "system"
	switch {
	case c.SkipVerify:
		verify = "off"
	case c.CAFile != "":
		verify = "ca"
	}
	parts := []string{"verify=" + verify}
	if c.CertFile != "" {
		parts = append(parts, "mtls=on")
	}
	if c.MinVersion != "" {
		parts = append(parts, "min="+c.MinVersion)
	}
	return strings.Join(parts, " ")
}

func (c *TLSConfig) minVersion() uint16 {
	if v, ok := tlsVersions[c.MinVersion]; ok {
		return v
	}
	return tls.VersionTLS12
}

func (c *TLSConfig) loadCA(cfg *tls.Config) error {
	if c.CAFile == "" {
		return nil
	}
	ca, err := os.ReadFile(c.CAFile)
	if err != nil {
		return fmt.Errorf("%w: reading ca_file: %w", ErrInvalidTLS, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(ca) {
		return fmt.Errorf("%w: no certificates in ca_file %s", ErrInvalidTLS, c.CAFile)
	}
	cfg.RootCAs = pool
	return nil
}

func (c *TLSConfig) loadClientCert(cfg *tls.Config) error {
	if c.CertFile == "" {
		return nil
	}
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return fmt.Errorf("%w: loading client certificate: %w", ErrInvalidTLS, err)
	}
	cfg.Certificates = []tls.Certificate{cert}
	return nil
}
