// Package http exposes the labeling pipeline over HTTP.
//
// Routes:
//
//	POST /api/v1/analyze   label a CSV body or multipart "file" upload
//	GET  /api/health       liveness
//	GET  /api/version      build information
//	GET  /metrics          Prometheus exposition
//
// Errors are RFC 7807 problem details rendered by internal/errors.
package http
