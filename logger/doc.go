// Package logger provides structured logging for restadapter using zerolog.
//
// It supports JSON and console output, log level configuration,
// component-scoped loggers and request-scoped fields carried on a context.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("httpadapter")
//	log.Info("request completed", logger.Fields(logger.FieldStatus, 200))
package logger
