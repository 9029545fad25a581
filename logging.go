package plc

import (
	"io"
	"time"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// Logger is the structured logging facade used throughout this module. It
// is a thin alias over logiface.Logger, parameterized on the izerolog event
// type so that callers never need to reference the backend directly.
type Logger = logiface.Logger[*izerolog.Event]

// NewLogger builds a Logger backed by a colorized zerolog console writer,
// suitable for interactive use. Pass w = os.Stdout (or any io.Writer) and
// the minimum level to emit.
func NewLogger(w io.Writer, level logiface.Level) *Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()
	return logiface.New[*izerolog.Event](
		izerolog.WithZerolog(zl),
		logiface.WithLevel[*izerolog.Event](level),
	)
}

// NewJSONLogger builds a Logger backed by a plain (non-colorized) zerolog
// JSON writer, suitable for production/non-terminal use.
func NewJSONLogger(w io.Writer, level logiface.Level) *Logger {
	zl := zerolog.New(w).With().Timestamp().Logger()
	return logiface.New[*izerolog.Event](
		izerolog.WithZerolog(zl),
		logiface.WithLevel[*izerolog.Event](level),
	)
}

// NoopLogger returns a Logger configured at logiface.LevelDisabled, so that
// every call is a no-op. Used as the default when no logger is supplied.
func NoopLogger() *Logger {
	return logiface.New[*izerolog.Event](
		logiface.WithLevel[*izerolog.Event](logiface.LevelDisabled),
	)
}

// logTolerated records an error that the scheduler swallowed rather than
// propagated: is_ready failures and program step failures. Actions skipped
// inside a Modbus master sweep are logged by the mbtransport adapters.
func logTolerated(log *Logger, component, name string, err error) {
	log.Warning().Str("component", component).Str("name", name).Err(err).Log("tolerated error")
}

// logTimeout records a cyclic task exceeding its configured period.
func logTimeout(log *Logger, task string, period time.Duration, elapsed time.Duration) {
	log.Err().
		Str("task", task).
		Dur("period", period).
		Dur("elapsed", elapsed).
		Log("task exceeded cycle period")
}
