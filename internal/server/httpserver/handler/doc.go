// Package handler provides the admin HTTP request handlers.
//
// Every JSON response uses the standard envelope from types.go except
// /metrics, which speaks the Prometheus exposition format and is
// mounted by the router directly.
package handler
