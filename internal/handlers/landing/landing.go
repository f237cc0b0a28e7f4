package landing

import (
	"fmt"
	"net/http"

	"github.com/a-h/templ"

	"DENAC/internal/auth"
	"DENAC/internal/services"
	pages "DENAC/web/templates/pages/landing"
)

// Handler renders the scroll page, with the user menu when signed in.
func Handler(svc *services.Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		user, _ := auth.CurrentUser(r)
		templ.Handler(pages.Landing(pages.Data{
			User:       user,
			Timeline:   svc.Timeline,
			FrameCount: svc.Mapper.Count(),
			FrameURL:   svc.FrameURL,
			Width:      svc.Width,
			Height:     svc.Height,
			Background: hexColor(svc),
		})).ServeHTTP(w, r)
	}
}

func hexColor(svc *services.Services) string {
	c := svc.Background
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
