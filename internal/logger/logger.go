// Package logger configures the global zerolog logger from CLI options.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger holds logging options, embedded into command options as a flags group.
type Logger struct {
	Level   string `long:"log-level"    env:"LOG_LEVEL"    description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
	Format  string `long:"log-format"   env:"LOG_FORMAT"   description:"Log format" choice:"text" choice:"json" default:"text"`
	NoColor bool   `long:"log-no-color" env:"LOG_NO_COLOR" description:"Disable colored text output"`
}

// Setup applies the options to the global logger.
func (l Logger) Setup() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(l.level())

	log.Logger = zerolog.New(l.writer(os.Stderr)).With().Timestamp().Logger()
}

func (l Logger) writer(out io.Writer) io.Writer {
	if l.Format == "json" {
		return out
	}

	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    l.NoColor,
		TimeFormat: time.DateTime,
	}
}

func (l Logger) level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		return zerolog.InfoLevel
	}

	return lvl
}
