package render

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"DENAC/internal/config"
	"DENAC/internal/services"
)

func writeFrame(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	for y := 0; y < 9; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func loadedServices(t *testing.T, missing int) *services.Services {
	t.Helper()
	dir := t.TempDir()
	colors := []color.RGBA{{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255}}
	for i, c := range colors {
		if i+1 == missing {
			continue
		}
		writeFrame(t, filepath.Join(dir, "frame_"+string(rune('1'+i))+".png"), c)
	}

	cfg := config.Defaults()
	cfg.FramesDir = dir
	cfg.FramePattern = "frame_%d.png"
	cfg.FrameCount = len(colors)
	cfg.CanvasWidth, cfg.CanvasHeight = 32, 18
	cfg.Interpolation = "nearest"

	svc, err := services.New(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { svc.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	svc.Start(ctx)
	if err := svc.Frames.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestRenderByProgress(t *testing.T) {
	svc := loadedServices(t, 0)
	h := Handler(svc, slog.Default())

	tests := []struct {
		query string
		frame string
		want  color.RGBA
	}{
		{"?progress=0&format=png", "1", color.RGBA{R: 255, A: 255}},
		{"?progress=0.5&format=png", "2", color.RGBA{G: 255, A: 255}},
		{"?progress=1&format=png", "3", color.RGBA{B: 255, A: 255}},
		{"?frame=2&format=png", "2", color.RGBA{G: 255, A: 255}},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/render"+tt.query, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", tt.query, rec.Code)
		}
		if got := rec.Header().Get("X-Frame-Index"); got != tt.frame {
			t.Errorf("%s: frame %s, want %s", tt.query, got, tt.frame)
		}
		img, err := png.Decode(rec.Body)
		if err != nil {
			t.Fatal(err)
		}
		if got := color.RGBAModel.Convert(img.At(16, 9)); got != tt.want {
			t.Errorf("%s: centre pixel %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestRenderJPEGAndErrors(t *testing.T) {
	svc := loadedServices(t, 2)
	h := Handler(svc, slog.Default())

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/render?progress=0", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/jpeg" {
		t.Fatalf("jpeg render: %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}

	for query, want := range map[string]int{
		"?frame=2":        http.StatusServiceUnavailable,
		"?frame=0":        http.StatusBadRequest,
		"?frame=4":        http.StatusBadRequest,
		"?progress=abc":   http.StatusBadRequest,
		"?progress=1":     http.StatusOK,
	} {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/render"+query, nil))
		if rec.Code != want {
			t.Errorf("%s: status %d, want %d", query, rec.Code, want)
		}
	}
}
