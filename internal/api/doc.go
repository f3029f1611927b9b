// Package api implements the HTTP REST API for HomeHub Core.
//
// This package provides:
//   - Account registration, login and token refresh
//   - Location, room and light CRUD, including light state changes
//   - A bearer-token guard on every route except health, metrics and auth
//   - Middleware stack (request ID, logging and metrics, recovery, CORS, body limit)
//   - Prometheus metrics on /metrics
//
// # Errors
//
// Handlers never choose a status code for a domain error themselves.
// classify in errors.go maps every error to one of a fixed set of kinds,
// and writeServiceError turns the kind into a status and JSON body:
//
//	{"status": 404, "code": "not_found", "message": "light not found"}
//
// Internal failures are logged in full and answered with a generic message.
package api
