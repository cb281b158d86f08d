package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Setup configures level ("debug", "info", "warn", "error") and format
// ("console" or "json"). Unknown values fall back to info/console.
func Setup(level, format string) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	if strings.EqualFold(format, "json") {
		out = os.Stdout
	}

	log = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// SetOutput redirects the global logger to w as JSON at debug level.
func SetOutput(w io.Writer) {
	log = zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// Entry is a logger carrying pre-bound fields.
type Entry struct {
	l zerolog.Logger
}

func WithError(err error) Entry {
	return Entry{l: log.With().Err(err).Logger()}
}

func With(kv ...interface{}) Entry {
	return Entry{l: log.With().Fields(pairs(kv)).Logger()}
}

// With returns a copy of e with more fields bound.
func (e Entry) With(kv ...interface{}) Entry {
	return Entry{l: e.l.With().Fields(pairs(kv)).Logger()}
}

func (e Entry) Info(msg string, kv ...interface{})  { emit(e.l.Info(), msg, kv) }
func (e Entry) Warn(msg string, kv ...interface{})  { emit(e.l.Warn(), msg, kv) }
func (e Entry) Error(msg string, kv ...interface{}) { emit(e.l.Error(), msg, kv) }
func (e Entry) Debug(msg string, kv ...interface{}) { emit(e.l.Debug(), msg, kv) }

func Info(msg string, kv ...interface{}) {
	emit(log.Info(), msg, kv)
}

func Infof(format string, v ...interface{}) {
	log.Info().Msgf(format, v...)
}

func Warn(msg string, kv ...interface{}) {
	emit(log.Warn(), msg, kv)
}

func Error(msg string, kv ...interface{}) {
	emit(log.Error(), msg, kv)
}

func Errorf(format string, v ...interface{}) {
	log.Error().Msgf(format, v...)
}

func Debug(msg string, kv ...interface{}) {
	emit(log.Debug(), msg, kv)
}

func Fatal(msg string, kv ...interface{}) {
	emit(log.Fatal(), msg, kv)
}

func Fatalf(format string, v ...interface{}) {
	log.Fatal().Msgf(format, v...)
}

func emit(ev *zerolog.Event, msg string, kv []interface{}) {
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 >= len(kv) {
			ev = ev.Interface("!BADKEY", kv[i])
			break
		}
		if err, ok := kv[i+1].(error); ok {
			ev = ev.AnErr(key, err)
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}

func pairs(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
