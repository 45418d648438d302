package models

// FallbackName is the sentinel playlist name carried by a failed extraction.
const FallbackName = "Parsing exception"

// Playlist is the result of one extraction run.
//
// It is either a success value (fields read from the page, zero or more
// tracks) or the fallback value built by NewFallbackPlaylist. It is never
// modified after it is handed to the caller.
type Playlist struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CoverURL    string  `json:"cover_url"`
	Tracks      []Track `json:"tracks"`

	fallback bool
}

// Track is one row of the playlist. Title is never empty.
type Track struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Duration string `json:"duration,omitempty"`
}

// NewFallbackPlaylist builds the value returned when a run fails. The
// requested URL is kept in CoverURL for traceability and the error message
// is preserved verbatim in Description.
func NewFallbackPlaylist(url string, err error) *Playlist {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &Playlist{
		Name:        FallbackName,
		Description: "Failed to parse data.\nReason: " + msg,
		CoverURL:    url,
		Tracks:      []Track{},
		fallback:    true,
	}
}

// IsFallback reports whether p was built by NewFallbackPlaylist. A page
// whose own name happens to equal FallbackName is not a fallback. The mark
// does not survive JSON; decoded responses carry it in their success flag.
func (p *Playlist) IsFallback() bool {
	return p != nil && p.fallback
}
