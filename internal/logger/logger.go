package logger

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Options configures New.
type Options struct {
	Level     string
	Writer    io.Writer
	Instance  string
	Component string
}

// New returns a JSON slog logger tagged with the instance name, matching the
// line shape JSONLogger produces for the standard log package.
func New(opts Options) *slog.Logger {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}
	h := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: ParseLevel(opts.Level)})
	lg := slog.New(h)
	if opts.Instance != "" {
		lg = lg.With("instance", opts.Instance)
	}
	if c := strings.TrimSpace(opts.Component); c != "" {
		lg = lg.With("component", c)
	}
	return lg
}

// ParseLevel maps a config string to a slog level. Unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// JSONLogger is an io.Writer for log.SetOutput that wraps every line from the
// standard logger (goth, net/http) into a JSON record.
type JSONLogger struct {
	Instance string
	Out      io.Writer

	mu sync.Mutex
}

func (l *JSONLogger) Write(p []byte) (n int, err error) {
	logEntry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"level":     "info",
		"instance":  l.Instance,
		"message":   strings.TrimRight(string(p), "\n"),
	}

	jsonBytes, err := json.Marshal(logEntry)
	if err != nil {
		return 0, err
	}

	out := l.Out
	if out == nil {
		out = os.Stdout
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := out.Write(append(jsonBytes, '\n')); err != nil {
		return 0, err
	}
	return len(p), nil
}
