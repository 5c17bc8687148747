package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Fields carries structured context for a single log line.
type Fields map[string]interface{}

var base = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Setup configures the package logger. In development it switches to the
// human readable console writer.
func Setup(appEnv, level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if appEnv == "development" && level == "" {
		lvl = zerolog.DebugLevel
	}

	var out io.Writer = os.Stdout
	if appEnv == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	base = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// SetOutput redirects the logger, mostly for tests.
func SetOutput(w io.Writer) {
	base = base.Output(w)
}

// Get returns the underlying zerolog logger.
func Get() *zerolog.Logger {
	return &base
}

func Debug(msg string, fields ...Fields) {
	withFields(base.Debug(), fields).Msg(msg)
}

func Info(msg string, fields ...Fields) {
	withFields(base.Info(), fields).Msg(msg)
}

func Warn(msg string, fields ...Fields) {
	withFields(base.Warn(), fields).Msg(msg)
}

func Error(msg string, err error, fields ...Fields) {
	ev := base.Error()
	if err != nil {
		ev = ev.Err(err)
	}
	withFields(ev, fields).Msg(msg)
}

func withFields(ev *zerolog.Event, fields []Fields) *zerolog.Event {
	for _, f := range fields {
		if f != nil {
			ev = ev.Fields(map[string]interface{}(f))
		}
	}
	return ev
}
