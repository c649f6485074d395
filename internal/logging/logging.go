// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger with a console writer on stderr.
// level is one of debug, info, warn, error (default: info).
func Init(level string) {
	InitWithWriter(level, zerolog.ConsoleWriter{Out: os.Stderr})
}

// InitWithFile is Init that also appends JSON lines to path, rotated at
// 10 MB with three old files kept. The returned closer releases the file.
func InitWithFile(level, path string) io.Closer {
	file := newRotatingFile(path)
	InitWithWriter(level, zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stderr}, file))
	return file
}

func newRotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
}

// InitWithWriter is Init with a caller-supplied output.
func InitWithWriter(level string, w io.Writer) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
