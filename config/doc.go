// Package config loads restadapter configuration from YAML files, .env files
// and environment variables using Viper.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("restadapter", &cfg,
//	    config.WithConfigFile("./config.yml"),
//	    config.WithDefaults(map[string]any{"http.connect_timeout": "10s"}),
//	)
//
// Environment variables override file values. Only variables carrying the
// service prefix are read: RESTADAPTER_HTTP_READ_TIMEOUT is bound to both
// http_read_timeout and http.read_timeout, while a bare HTTP_PROXY is not.
package config
