package models

// ParseResponse is the response for POST /api/v1/playlist.
type ParseResponse struct {
	// Success is false when Playlist is the fallback value.
	Success bool `json:"success"`

	// Playlist is always present once an extraction ran.
	Playlist *Playlist `json:"playlist,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when the request was refused before an
	// extraction could start (bad input, auth, rate limit, busy).
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent handling a request.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"` // "idle" or "busy"
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
