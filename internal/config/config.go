package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything the server and the CLI commands need.
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	InstanceName string
	LogLevel     string

	// Domain is the public host[:port] used to build the OAuth callback URL.
	Domain string
	Scheme string

	GoogleKey       string
	GoogleSecret    string
	SessionSecret   string
	SessionDuration time.Duration

	FramesDir      string
	FramePattern   string
	FrameCount     int
	FrameURL       string
	PreloadWorkers int

	CanvasWidth   int
	CanvasHeight  int
	Background    string
	Interpolation string
	RefreshRate   int

	// TimelinePath points at a YAML panel timeline. Empty means the built-in one.
	TimelinePath string
}

// Defaults returns the configuration used when neither a file nor the
// environment says otherwise.
func Defaults() Config {
	return Config{
		Port:            "8080",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		InstanceName:    "denac-1",
		LogLevel:        "info",
		Domain:          "localhost:8080",
		Scheme:          "http",
		SessionDuration: 24 * time.Hour,
		FramesDir:       "public/frames",
		FramePattern:    "frame_%d.jpg",
		FrameCount:      120,
		PreloadWorkers:  8,
		CanvasWidth:     1920,
		CanvasHeight:    1080,
		Background:      "#050505",
		Interpolation:   "bilinear",
		RefreshRate:     60,
	}
}

// Load reads the optional TOML file at path (DENAC_CONFIG when path is
// empty) and then applies environment overrides.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv("DENAC_CONFIG")
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	return FromEnv(cfg), nil
}

// LoadFile decodes path over the defaults. An empty path returns the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	var file fileConfig
	if err := toml.Unmarshal(raw, &file); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	file.apply(&cfg)
	return cfg, nil
}

// FromEnv overrides base with any environment variables that are set.
func FromEnv(base Config) Config {
	return Config{
		Port:         getEnv("BACKEND_PORT", base.Port),
		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", base.ReadTimeout),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", base.WriteTimeout),
		IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", base.IdleTimeout),
		InstanceName: getEnv("INSTANCE_NAME", base.InstanceName),
		LogLevel:     getEnv("LOG_LEVEL", base.LogLevel),

		Domain: getEnv("DOMAIN", base.Domain),
		Scheme: getEnv("SCHEME", base.Scheme),

		GoogleKey:       getEnv("GOOGLE_KEY", base.GoogleKey),
		GoogleSecret:    getEnv("GOOGLE_SECRET", base.GoogleSecret),
		SessionSecret:   getEnv("SESSION_SECRET", base.SessionSecret),
		SessionDuration: getEnvAsDuration("SESSION_DURATION", base.SessionDuration),

		FramesDir:      getEnv("FRAMES_DIR", base.FramesDir),
		FramePattern:   getEnv("FRAME_PATTERN", base.FramePattern),
		FrameCount:     getEnvAsInt("FRAME_COUNT", base.FrameCount),
		FrameURL:       getEnv("FRAME_URL", base.FrameURL),
		PreloadWorkers: getEnvAsInt("PRELOAD_WORKERS", base.PreloadWorkers),

		CanvasWidth:   getEnvAsInt("CANVAS_WIDTH", base.CanvasWidth),
		CanvasHeight:  getEnvAsInt("CANVAS_HEIGHT", base.CanvasHeight),
		Background:    getEnv("CANVAS_BACKGROUND", base.Background),
		Interpolation: getEnv("CANVAS_INTERPOLATION", base.Interpolation),
		RefreshRate:   getEnvAsInt("REFRESH_RATE", base.RefreshRate),

		TimelinePath: getEnv("TIMELINE_PATH", base.TimelinePath),
	}
}

// CallbackURL is the Google OAuth redirect target for this deployment.
func (c Config) CallbackURL() string {
	scheme := c.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + c.Domain + "/auth/google/callback"
}

// fileConfig mirrors Config with durations as strings so the TOML file can
// say "15s" instead of nanoseconds.
type fileConfig struct {
	Port            string `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	IdleTimeout     string `toml:"idle_timeout"`
	InstanceName    string `toml:"instance_name"`
	LogLevel        string `toml:"log_level"`
	Domain          string `toml:"domain"`
	Scheme          string `toml:"scheme"`
	GoogleKey       string `toml:"google_key"`
	GoogleSecret    string `toml:"google_secret"`
	SessionSecret   string `toml:"session_secret"`
	SessionDuration string `toml:"session_duration"`

	Frames struct {
		Dir     string `toml:"dir"`
		Pattern string `toml:"pattern"`
		Count   int    `toml:"count"`
		URL     string `toml:"url"`
		Workers int    `toml:"workers"`
	} `toml:"frames"`

	Canvas struct {
		Width         int    `toml:"width"`
		Height        int    `toml:"height"`
		Background    string `toml:"background"`
		Interpolation string `toml:"interpolation"`
		RefreshRate   int    `toml:"refresh_rate"`
	} `toml:"canvas"`

	TimelinePath string `toml:"timeline_path"`
}

func (f fileConfig) apply(cfg *Config) {
	setString(&cfg.Port, f.Port)
	setDuration(&cfg.ReadTimeout, f.ReadTimeout)
	setDuration(&cfg.WriteTimeout, f.WriteTimeout)
	setDuration(&cfg.IdleTimeout, f.IdleTimeout)
	setString(&cfg.InstanceName, f.InstanceName)
	setString(&cfg.LogLevel, f.LogLevel)
	setString(&cfg.Domain, f.Domain)
	setString(&cfg.Scheme, f.Scheme)
	setString(&cfg.GoogleKey, f.GoogleKey)
	setString(&cfg.GoogleSecret, f.GoogleSecret)
	setString(&cfg.SessionSecret, f.SessionSecret)
	setDuration(&cfg.SessionDuration, f.SessionDuration)

	setString(&cfg.FramesDir, f.Frames.Dir)
	setString(&cfg.FramePattern, f.Frames.Pattern)
	setInt(&cfg.FrameCount, f.Frames.Count)
	setString(&cfg.FrameURL, f.Frames.URL)
	setInt(&cfg.PreloadWorkers, f.Frames.Workers)

	setInt(&cfg.CanvasWidth, f.Canvas.Width)
	setInt(&cfg.CanvasHeight, f.Canvas.Height)
	setString(&cfg.Background, f.Canvas.Background)
	setString(&cfg.Interpolation, f.Canvas.Interpolation)
	setInt(&cfg.RefreshRate, f.Canvas.RefreshRate)

	setString(&cfg.TimelinePath, f.TimelinePath)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) {
	if v == "" {
		return
	}
	if dur, err := time.ParseDuration(v); err == nil {
		*dst = dur
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if dur, err := time.ParseDuration(value); err == nil {
			return dur
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
