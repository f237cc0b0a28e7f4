package cta

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/skip2/go-qrcode"
)

const (
	defaultSize = 256
	minSize     = 64
	maxSize     = 1024
)

// QRHandler serves a PNG QR code for the call-to-action link.
func QRHandler(url string, lg *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if url == "" {
			http.NotFound(w, r)
			return
		}
		size := defaultSize
		if s := r.URL.Query().Get("size"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				http.Error(w, "invalid size", http.StatusBadRequest)
				return
			}
			size = min(max(n, minSize), maxSize)
		}
		png, err := qrcode.Encode(url, qrcode.Medium, size)
		if err != nil {
			lg.Error("qr encode", "error", err)
			http.Error(w, "qr encode failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		_, _ = w.Write(png)
	}
}
