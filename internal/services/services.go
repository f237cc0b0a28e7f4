package services

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"net/http"
	"time"

	xdraw "golang.org/x/image/draw"

	"DENAC/internal/canvas"
	"DENAC/internal/config"
	"DENAC/internal/frames"
	"DENAC/internal/overlay"
)

// Services holds the long-lived pieces shared by every request: the frame
// store, the progress mapper and the overlay timeline.
type Services struct {
	Frames     *frames.Store
	Mapper     frames.Mapper
	Timeline   *overlay.Timeline
	Sequencer  *overlay.Sequencer
	Scaler     xdraw.Scaler
	Background color.RGBA
	Width      int
	Height     int
	// FrameURL is the browser-side frame pattern.
	FrameURL    string
	RefreshRate int

	pool   *canvas.SurfacePool
	logger *slog.Logger
}

// New builds the frame store, timeline and canvas settings from cfg. Frames
// are not loaded until Start.
func New(cfg config.Config, lg *slog.Logger) (*Services, error) {
	if lg == nil {
		lg = slog.Default()
	}

	mapper, err := frames.NewMapper(cfg.FrameCount)
	if err != nil {
		return nil, err
	}

	timeline := overlay.DefaultTimeline()
	if cfg.TimelinePath != "" {
		if timeline, err = overlay.LoadTimeline(cfg.TimelinePath); err != nil {
			return nil, fmt.Errorf("load timeline: %w", err)
		}
	}

	scaler, err := canvas.ParseScaler(cfg.Interpolation)
	if err != nil {
		return nil, err
	}
	bg, err := canvas.ParseHexColor(cfg.Background)
	if err != nil {
		return nil, err
	}

	var fetcher frames.Fetcher
	frameURL := "/frames/" + cfg.FramePattern
	if cfg.FrameURL != "" {
		fetcher = frames.NewHTTPFetcher(&http.Client{Timeout: 30 * time.Second}, cfg.FrameURL)
		frameURL = cfg.FrameURL
	} else {
		fetcher = frames.NewDirFetcher(cfg.FramesDir, cfg.FramePattern)
	}

	store, err := frames.NewStore(cfg.FrameCount, fetcher,
		frames.WithWorkers(cfg.PreloadWorkers),
		frames.WithLogger(lg.With("component", "frames")),
	)
	if err != nil {
		return nil, err
	}

	return &Services{
		Frames:      store,
		Mapper:      mapper,
		Timeline:    timeline,
		Sequencer:   overlay.NewSequencer(timeline),
		Scaler:      scaler,
		Background:  bg,
		Width:       cfg.CanvasWidth,
		Height:      cfg.CanvasHeight,
		FrameURL:    frameURL,
		RefreshRate: cfg.RefreshRate,
		pool:        canvas.NewSurfacePool(),
		logger:      lg,
	}, nil
}

// Start begins preloading frames in the background.
func (s *Services) Start(ctx context.Context) {
	s.logger.Info("preloading frames", "count", s.Frames.Count())
	s.Frames.Load(ctx)
}

// NewRenderer returns a renderer over the frame store with a pooled surface.
// The caller must Release it.
func (s *Services) NewRenderer() *canvas.Renderer {
	return canvas.NewRenderer(s.Frames,
		canvas.WithSize(s.Width, s.Height),
		canvas.WithBackground(s.Background),
		canvas.WithScaler(s.Scaler),
		canvas.WithPool(s.pool),
	)
}

func (s *Services) Close() error {
	return s.Frames.Close()
}
