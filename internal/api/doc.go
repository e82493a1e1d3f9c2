// Package api holds the HTTP handlers of the taskboard API. Handlers decode
// and validate requests, call the service layer and map service errors to
// status codes and client-safe messages.
package api
