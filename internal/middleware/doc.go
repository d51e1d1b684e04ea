// Package middleware holds the HTTP middleware chain of the web service:
// request ids, structured request logs, panic recovery, rate limiting,
// body limits and OpenTelemetry instrumentation.
package middleware
