package landing

import (
	"DENAC/internal/auth"
	"DENAC/internal/overlay"
)

// Data is everything the scroll page needs to render.
type Data struct {
	User       *auth.User
	Timeline   *overlay.Timeline
	FrameCount int
	// FrameURL is the browser-side frame pattern, with %d for the index.
	FrameURL   string
	Width      int
	Height     int
	Background string
}
