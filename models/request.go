package models

// ParseRequest is the payload for POST /api/v1/playlist.
type ParseRequest struct {
	// URL is the playlist page to parse. Required. Its shape is not
	// validated here: malformed URLs come back as a fallback playlist.
	URL string `json:"url" binding:"required"`
}
