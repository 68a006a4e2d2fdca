// Package logger provides structured logging built on zerolog.
//
// A single global logger is initialized from config at startup; components
// derive tagged sub-loggers via WithComponent. Console output uses compact
// [INF]-style level tags, JSON output is available for machine consumption.
package logger
