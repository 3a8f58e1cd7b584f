package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kbukum/restadapter/logger"
)

const serviceName = "restadapter"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configFile string
	logLevel   string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "Execute HTTP requests through the restadapter transport",
		Long: `restadapter sends a single HTTP request through the transport adapter,
honouring proxies, timeouts, cookies, redirects and Basic authentication
from flags, config.yml and the environment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: search ./config.yml, ./cmd/restadapter/config.yml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(newFetchCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// setupLogger initializes the global logger, registers component loggers
// for names and returns the CLI's own logger.
func setupLogger(cfg logger.Config, level string, names ...string) *logger.Logger {
	if level != "" {
		cfg.Level = level
	}
	cfg.ApplyDefaults()
	logger.Init(cfg)
	log := logger.New(&cfg, serviceName)
	logger.Register(serviceName, log)
	logger.RegisterDefaults(names...)
	return log
}
