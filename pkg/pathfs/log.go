package pathfs

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates a plain console logger writing to w at level.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return newConsoleLogger(w, level, true)
}

// NewColorLogger is NewLogger with ANSI colors, meant for terminals.
func NewColorLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return newConsoleLogger(w, level, false)
}

func newConsoleLogger(w io.Writer, level zerolog.Level, noColor bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}
	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("lib", "pathfs").
		Logger()
}

// LevelFromVerbosity maps a count of -v flags to a level: none is warn,
// then info, debug and trace.
func LevelFromVerbosity(verbose int) zerolog.Level {
	switch {
	case verbose <= 0:
		return zerolog.WarnLevel
	case verbose == 1:
		return zerolog.InfoLevel
	case verbose == 2:
		return zerolog.DebugLevel
	}
	return zerolog.TraceLevel
}

// NewTestLogger creates a logger for tests with the given verbosity.
func NewTestLogger(w io.Writer, verbose int) zerolog.Logger {
	return NewLogger(w, LevelFromVerbosity(verbose))
}

// LogLevelFromString parses a level name such as "debug" or "WARN".
func LogLevelFromString(levelStr string) (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(levelStr)))
}

// DefaultLogger logs warnings and errors to stderr.
func DefaultLogger() zerolog.Logger {
	return NewLogger(os.Stderr, zerolog.WarnLevel)
}
