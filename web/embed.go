// Package web embeds the browser assets served under /static/.
package web

import "embed"

// Static holds the stylesheet and the scroll client.
//
//go:embed static
var Static embed.FS
