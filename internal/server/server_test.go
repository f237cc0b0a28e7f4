package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"DENAC/internal/config"
	"DENAC/internal/handlers/timeline"
	"DENAC/internal/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "frame_1.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Defaults()
	cfg.FramesDir = dir
	cfg.InstanceName = "denac-test"
	lg := slog.New(slog.NewJSONHandler(io.Discard, nil))
	svc, err := services.New(cfg, lg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { svc.Close() })

	ts := httptest.NewServer(New(cfg, svc, lg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestRoutes(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/", http.StatusOK, `id="frame-canvas"`},
		{"/login", http.StatusOK, "Continue with Google"},
		{"/static/scroll.js", http.StatusOK, "requestAnimationFrame"},
		{"/static/style.css", http.StatusOK, ".scroll-region"},
		{"/frames/frame_1.jpg", http.StatusOK, "jpeg"},
		{"/health", http.StatusOK, `"instance":"denac-test"`},
		{"/auth/google", http.StatusServiceUnavailable, "not configured"},
		{"/logout/google", http.StatusServiceUnavailable, "not configured"},
		{"/render?frame=1", http.StatusServiceUnavailable, "frame not loaded"},
		{"/nope", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		resp, body := get(t, ts.URL+tt.path)
		if resp.StatusCode != tt.status {
			t.Errorf("%s: status %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
		if !strings.Contains(body, tt.want) {
			t.Errorf("%s: body missing %q", tt.path, tt.want)
		}
		if resp.Header.Get("X-Request-ID") == "" {
			t.Errorf("%s: no request id", tt.path)
		}
	}
}

func TestTimelineAPI(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts.URL+"/api/timeline")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var tl timeline.Response
	if err := json.Unmarshal([]byte(body), &tl); err != nil {
		t.Fatal(err)
	}
	if tl.FrameCount != 120 || len(tl.Panels) != 7 || tl.CTA.URL != "https://amzn.in/d/j8upomy" {
		t.Fatalf("unexpected timeline %+v", tl)
	}
	if tl.FrameURL != "/frames/frame_%d.jpg" {
		t.Errorf("frame url %q", tl.FrameURL)
	}
}

func TestQRRoute(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := get(t, ts.URL+"/cta/qr.png")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}
