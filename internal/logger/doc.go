// Package logger wraps a process-wide zap logger.
// Call sites pass a context so that request-scoped fields can be attached later
// without changing signatures; the level can be changed at runtime from the configuration.
package logger
