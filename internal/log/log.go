// Package log provides package-level structured logging for pppoed.
// Call sites pass a message followed by alternating key/value pairs.
package log

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

// Configure sets the global log level and output format.
// Level is one of trace, debug, info, warn, error; format is console or json.
func Configure(level, format string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "json" {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
}

// Trace logs at trace level
func Trace(msg string, kv ...interface{}) {
	emit(logger.Trace(), msg, kv)
}

// Debug logs at debug level
func Debug(msg string, kv ...interface{}) {
	emit(logger.Debug(), msg, kv)
}

// Info logs at info level
func Info(msg string, kv ...interface{}) {
	emit(logger.Info(), msg, kv)
}

// Warn logs at warn level
func Warn(msg string, kv ...interface{}) {
	emit(logger.Warn(), msg, kv)
}

// Error logs at error level
func Error(msg string, kv ...interface{}) {
	emit(logger.Error(), msg, kv)
}

func emit(ev *zerolog.Event, msg string, kv []interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		switch v := kv[i+1].(type) {
		case string:
			ev = ev.Str(key, v)
		case int:
			ev = ev.Int(key, v)
		case int64:
			ev = ev.Int64(key, v)
		case float64:
			ev = ev.Float64(key, v)
		case bool:
			ev = ev.Bool(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		case time.Time:
			ev = ev.Time(key, v)
		case error:
			ev = ev.AnErr(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}
