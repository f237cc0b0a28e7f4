package server

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"DENAC/internal/auth"
	"DENAC/internal/config"
	appAuth "DENAC/internal/handlers/auth"
	"DENAC/internal/handlers/cta"
	"DENAC/internal/handlers/health"
	"DENAC/internal/handlers/landing"
	"DENAC/internal/handlers/render"
	"DENAC/internal/handlers/scroll"
	"DENAC/internal/handlers/timeline"
	"DENAC/internal/middleware"
	"DENAC/internal/services"
	"DENAC/web"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	config      config.Config
	logger      *slog.Logger
	googleAuth  *auth.GoogleAuth
	authHandler *appAuth.AuthHandler
	services    *services.Services
}

func New(cfg config.Config, svc *services.Services, lg *slog.Logger) *Server {
	if lg == nil {
		lg = slog.Default()
	}
	googleAuth := auth.NewGoogleAuth(auth.Config{
		GoogleKey:       cfg.GoogleKey,
		GoogleSecret:    cfg.GoogleSecret,
		CallbackURL:     cfg.CallbackURL(),
		SecretKey:       []byte(cfg.SessionSecret),
		SessionDuration: cfg.SessionDuration,
		Secure:          cfg.Scheme == "https",
	})
	if !googleAuth.Enabled() {
		lg.Warn("GOOGLE_KEY or GOOGLE_SECRET not set, sign-in is disabled")
	}

	return &Server{
		config:      cfg,
		logger:      lg,
		googleAuth:  googleAuth,
		authHandler: appAuth.NewAuthHandler(googleAuth, lg.With("component", "auth")),
		services:    svc,
	}
}

// Handler returns the full route tree wrapped in the common middleware.
func (s *Server) Handler() http.Handler {
	return middleware.Chain(s.createHandler(),
		middleware.RequestID,
		middleware.Logging(s.logger.With("component", "http")),
		middleware.Recover(s.logger),
	)
}

func (s *Server) createHandler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		panic("embedded static directory missing: " + err.Error())
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	if s.config.FrameURL == "" {
		mux.Handle("GET /frames/", http.StripPrefix("/frames/",
			http.FileServer(http.Dir(s.config.FramesDir))))
	}

	mux.HandleFunc("GET /health", health.Handler(s.config.InstanceName, s.services.Frames))

	// Authentication routes
	mux.HandleFunc("GET /login", s.authHandler.LoginPage)
	mux.HandleFunc("GET /auth/google", s.authHandler.BeginAuthHandler)
	mux.HandleFunc("GET /auth/google/callback", s.authHandler.CallbackHandler)
	mux.HandleFunc("GET /logout/google", s.authHandler.LogoutHandler)

	// Application routes
	mux.Handle("GET /", s.withUserContext(landing.Handler(s.services)))
	mux.HandleFunc("GET /api/timeline", timeline.Handler(s.services))
	mux.HandleFunc("GET /ws/scroll", scroll.Handler(s.services, s.logger.With("component", "scroll")))
	mux.HandleFunc("GET /render", render.Handler(s.services, s.logger.With("component", "render")))
	mux.HandleFunc("GET /cta/qr.png", cta.QRHandler(s.services.Timeline.CTA.URL, s.logger))

	return mux
}

// Middleware to add user to context
func (s *Server) withUserContext(next http.Handler) http.Handler {
	return s.googleAuth.WithUser(next)
}

// ListenAndServe serves until ctx is cancelled, then drains connections.
func (s *Server) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
