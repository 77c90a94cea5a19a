package handler

import (
	"time"

	"github.com/keyline-io/keyline/internal/storage/memory"
)

// Response is the standard API response envelope. All JSON responses
// use this format.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// HealthResponse is the response body for GET /health and GET /ready.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// PurgeRequest is the optional request body for POST /purge.
type PurgeRequest struct {
	// DryRun counts the expired entries without evicting them.
	DryRun bool `json:"dry_run"`
}

// PurgeResponse is the response body for POST /purge.
type PurgeResponse struct {
	PurgedKeys int  `json:"purged_keys"`
	DryRun     bool `json:"dry_run"`
}

// StatsResponse is the response body for GET /stats.
type StatsResponse struct {
	Version       string       `json:"version"`
	Commit        string       `json:"commit"`
	GoVersion     string       `json:"go_version"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	Connections   int          `json:"connections"`
	Store         memory.Stats `json:"store"`
}
