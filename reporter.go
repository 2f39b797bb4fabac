package taskflow

import "github.com/rs/zerolog"

// Reporter receives editor operations that were rejected.
type Reporter interface {
	Report(op string, err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(op string, err error)

// Report calls f(op, err).
func (f ReporterFunc) Report(op string, err error) { f(op, err) }

// LogReporter writes rejections to a zerolog logger at warn level.
type LogReporter struct {
	Log zerolog.Logger
}

func (r LogReporter) Report(op string, err error) {
	r.Log.Warn().Str("op", op).Err(err).Msg("editor operation rejected")
}

type nopReporter struct{}

func (nopReporter) Report(string, error) {}
