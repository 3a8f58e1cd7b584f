package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kbukum/restadapter/config"
	"github.com/kbukum/restadapter/httpadapter"
	"github.com/kbukum/restadapter/util"
)

// appConfig is the CLI's config.yml layout.
type appConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	HTTP                 httpadapter.Config `yaml:"http" mapstructure:"http"`
	Telemetry            telemetryConfig    `yaml:"telemetry" mapstructure:"telemetry"`
}

// telemetryConfig enables OTLP export when Endpoint is set.
type telemetryConfig struct {
	Endpoint string `yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
}

func configDefaults() map[string]any {
	def := httpadapter.DefaultConfig()
	return map[string]any{
		"name":                 serviceName,
		"environment":          "production",
		"logging.level":        "warn",
		"http.name":            serviceName,
		"http.connect_timeout": def.ConnectTimeout.String(),
		"http.read_timeout":    def.ReadTimeout.String(),
		"http.write_timeout":   def.WriteTimeout.String(),
		"telemetry.insecure":   true,
	}
}

// loadAppConfig reads config.yml, .env and the environment on top of the
// CLI defaults, then applies and validates defaults.
func loadAppConfig(path string) (*appConfig, error) {
	cfg := &appConfig{}
	opts := []config.LoaderOption{config.WithDefaults(configDefaults())}
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}

	cfg.ServiceConfig.ApplyDefaults()
	cfg.HTTP.ApplyDefaults()
	if err := cfg.ServiceConfig.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.HTTP.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// redacted returns a copy safe to print.
func (c appConfig) redacted() appConfig {
	if c.HTTP.Auth != nil {
		auth := *c.HTTP.Auth
		auth.Password = util.MaskSecret(auth.Password, 0)
		c.HTTP.Auth = &auth
	}
	if c.HTTP.Proxy != "" {
		if p, err := httpadapter.ParseProxy(c.HTTP.Proxy); err == nil {
			c.HTTP.Proxy = p.String()
		}
	}
	return c
}

func newConfigCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadAppConfig(global.configFile)
			if err != nil {
				return withExitCode(ExitConfigError, err)
			}
			out, err := yaml.Marshal(cfg.redacted())
			if err != nil {
				return withExitCode(ExitConfigError, fmt.Errorf("encoding config: %w", err))
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
