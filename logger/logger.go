// Package logger configures the zerolog logger shared by the server and CLI.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps a zerolog.Logger whose output can be swapped at runtime.
type Logger struct {
	logger zerolog.Logger
	mutex  sync.RWMutex
	out    io.Writer
}

// New builds a console logger at debug or info level and installs it as
// the global zerolog logger.
func New(debug bool) *Logger {
	return NewWithWriter(debug, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
}

// NewWithWriter is New with an explicit console writer.
func NewWithWriter(debug bool, out io.Writer) *Logger {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	l := &Logger{out: out}
	l.logger = build(zerolog.MultiLevelWriter(out))
	log.Logger = l.logger
	return l
}

// GetLogger returns a sub-logger tagged with the component name.
func (l *Logger) GetLogger(component string) zerolog.Logger {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.logger.With().
		Str("component", component).
		Logger()
}

// SetLogOutput adds a rotated log file next to the console output.
func (l *Logger) SetLogOutput(logFilePath string) {
	fileWriter := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    100, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.logger = build(zerolog.MultiLevelWriter(l.out, fileWriter))
	log.Logger = l.logger
}

// Provide builds the logger described by the log config section.
func Provide(debug bool, logFile string) *Logger {
	l := New(debug)
	if logFile != "" {
		l.SetLogOutput(logFile)
	}
	return l
}

func build(w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Logger()
}
