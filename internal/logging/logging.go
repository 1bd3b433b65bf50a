// Package logging configures the global zerolog logger for the dmn command.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects the level and format of log output.
type Config struct {
	Level   string // debug, info, warn, error
	Format  string // console, json
	NoColor bool
}

// InitDefault sets up a console logger at info level, used until flags are parsed.
func InitDefault() {
	Init(Config{Level: "info", Format: "console"}, os.Stderr)
}

// Init replaces the global logger. Unknown levels fall back to info.
func Init(cfg Config, w io.Writer) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = New(cfg, w)
}

// New returns a logger writing to w in the configured format.
func New(cfg Config, w io.Writer) zerolog.Logger {
	if strings.EqualFold(cfg.Format, "json") {
		return zerolog.New(w).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    cfg.NoColor,
		TimeFormat: time.TimeOnly,
	}).With().Timestamp().Logger()
}
