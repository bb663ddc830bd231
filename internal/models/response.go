package models

import (
	"time"
)

// ErrorResponse is the standard error payload for all endpoints
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

// SearchResponse wraps a search outcome with request bookkeeping
type SearchResponse struct {
	QueryID    int64         `json:"query_id,omitempty"`
	Outcome    SearchOutcome `json:"outcome"`
	DurationMs int64         `json:"duration_ms"`
	Timestamp  time.Time     `json:"timestamp"`
}

// QueryListResponse is the paginated search history payload
type QueryListResponse struct {
	Queries  []Query `json:"queries"`
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// HealthResponse reports the health of the API and its dependencies
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Services  map[string]ServiceInfo `json:"services"`
}

// ServiceInfo describes a single dependency inside a health response
type ServiceInfo struct {
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	LastCheck time.Time `json:"last_check"`
}
