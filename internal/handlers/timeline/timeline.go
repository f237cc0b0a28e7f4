package timeline

import (
	"encoding/json"
	"net/http"

	"DENAC/internal/overlay"
	"DENAC/internal/services"
)

type Response struct {
	FrameCount int             `json:"frame_count"`
	FrameURL   string          `json:"frame_url"`
	CrossFade  bool            `json:"crossfade"`
	CTA        overlay.CTA     `json:"cta"`
	Panels     []overlay.Panel `json:"panels"`
}

// Handler serves the overlay timeline so the page can run without the
// websocket.
func Handler(svc *services.Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		_ = json.NewEncoder(w).Encode(Response{
			FrameCount: svc.Mapper.Count(),
			FrameURL:   svc.FrameURL,
			CrossFade:  svc.Timeline.CrossFade,
			CTA:        svc.Timeline.CTA,
			Panels:     svc.Timeline.Panels,
		})
	}
}
