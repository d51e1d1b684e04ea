// Package app wires the web service: configuration, logging, OpenTelemetry,
// the labeling processor and the HTTP router, plus graceful shutdown.
package app
