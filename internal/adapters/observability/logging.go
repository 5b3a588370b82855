package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the process logger for one binary. Every entry carries
// the service name. APP_ENV=dev (or development) switches to the console
// writer; anything else logs JSON. Unknown levels fall back to info.
func NewLogger(service, env, level string) zerolog.Logger {
	return newLogger(os.Stdout, service, env, level)
}

func newLogger(w io.Writer, service, env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if env == "dev" || env == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("service", service).
		Logger()
}
