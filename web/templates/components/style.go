// Package components holds the page fragments shared by the landing and
// login pages.
package components

import (
	"fmt"

	"github.com/a-h/templ"

	"DENAC/internal/auth"
	"DENAC/internal/overlay"
)

func panelStyle(st overlay.PanelState) string {
	visibility := "hidden"
	if st.Opacity > 0 {
		visibility = "visible"
	}
	return fmt.Sprintf("opacity:%g;transform:translateY(%gpx);visibility:%s", st.Opacity, st.Y, visibility)
}

// accentStyle goes through templ's CSS sanitizer, so an accent that is not a
// plain colour value renders as an inert placeholder.
func accentStyle(accent string) templ.KeyValue[string, string] {
	return templ.KeyValue[string, string]{Key: "background-color", Value: accent}
}

func ctaLabel(cta overlay.CTA) string {
	if cta.Label == "" {
		return "Pre-order Now"
	}
	return cta.Label
}

func avatarAlt(u auth.User) string {
	if u.Name == "" {
		return "User"
	}
	return u.Name
}

func hasAccents(items []overlay.Item) bool {
	for _, it := range items {
		if it.Accent != "" {
			return true
		}
	}
	return false
}
