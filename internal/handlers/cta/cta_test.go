package cta

import (
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestQRHandler(t *testing.T) {
	h := QRHandler("https://amzn.in/d/j8upomy", slog.Default())

	tests := []struct {
		query  string
		status int
		size   int
	}{
		{"", http.StatusOK, defaultSize},
		{"?size=128", http.StatusOK, 128},
		{"?size=5", http.StatusOK, minSize},
		{"?size=99999", http.StatusOK, maxSize},
		{"?size=big", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/cta/qr.png"+tt.query, nil))
		if rec.Code != tt.status {
			t.Errorf("%q: status %d, want %d", tt.query, rec.Code, tt.status)
			continue
		}
		if tt.status != http.StatusOK {
			continue
		}
		img, err := png.Decode(rec.Body)
		if err != nil {
			t.Fatalf("%q: %v", tt.query, err)
		}
		if w := img.Bounds().Dx(); w != tt.size {
			t.Errorf("%q: width %d, want %d", tt.query, w, tt.size)
		}
	}
}

func TestQRHandlerWithoutURL(t *testing.T) {
	rec := httptest.NewRecorder()
	QRHandler("", slog.Default())(rec, httptest.NewRequest(http.MethodGet, "/cta/qr.png", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}
