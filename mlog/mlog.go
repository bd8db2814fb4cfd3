// Package mlog is a generic, leveled logging library built on top of
// zerolog. Log methods take a message string and zero or more annotated
// Contexts (see mctx); any key/value pairs found on those Contexts are
// rendered alongside the message.
package mlog

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/mediocregopher/tiniredis/mctx"
)

// Level describes the severity of a log message.
type Level int

// All predefined log levels, most to least severe.
const (
	FatalLevel Level = iota
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

func (l Level) String() string {
	switch l {
	case FatalLevel:
		return "FATAL"
	case ErrorLevel:
		return "ERROR"
	case WarnLevel:
		return "WARN"
	case InfoLevel:
		return "INFO"
	case DebugLevel:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case FatalLevel:
		return zerolog.FatalLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case InfoLevel:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

// LevelFromString takes a string describing one of the predefined Levels
// (e.g. "debug" or "INFO") and returns it, along with true. If the string
// doesn't describe any predefined Level then false is returned.
func LevelFromString(s string) (Level, bool) {
	switch normalizeLevel(s) {
	case "DEBUG":
		return DebugLevel, true
	case "INFO":
		return InfoLevel, true
	case "WARN":
		return WarnLevel, true
	case "ERROR":
		return ErrorLevel, true
	case "FATAL":
		return FatalLevel, true
	default:
		return 0, false
	}
}

func normalizeLevel(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c != ' ' && c != '\t' {
			out = append(out, c)
		}
	}
	return string(out)
}

// Message describes a single message to be logged.
type Message struct {
	Level       Level
	Description string
	Contexts    []context.Context
}

// Logger directs Messages to an underlying zerolog.Logger. All methods are
// thread-safe (zerolog.Logger itself is safe for concurrent use).
type Logger struct {
	zl       zerolog.Logger
	maxLevel Level
}

// NewLogger initializes and returns a new Logger which writes
// human-readable lines to os.Stderr at InfoLevel and above.
func NewLogger() *Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: false}).With().Timestamp().Logger()
	return &Logger{zl: zl, maxLevel: InfoLevel}
}

// NewJSONLogger initializes and returns a new Logger which writes
// structured JSON lines to w.
func NewJSONLogger(w zerolog.LevelWriter) *Logger {
	zl := zerolog.New(w).With().Timestamp().Logger()
	return &Logger{zl: zl, maxLevel: InfoLevel}
}

// SetMaxLevel sets the maximum Level which will be handled, suppressing
// anything less severe (i.e. with a higher Level value).
func (l *Logger) SetMaxLevel(level Level) {
	l.maxLevel = level
}

// Log handles a Message constructed manually, for callers which need a
// Level not known until runtime.
func (l *Logger) Log(msg Message) {
	if msg.Level > l.maxLevel {
		return
	}

	ev := l.zl.WithLevel(msg.Level.zerolog())
	for _, kv := range mctx.StringSlice(mctx.Merge(context.Background(), msg.Contexts...)) {
		ev = ev.Str(kv[0], kv[1])
	}
	ev.Msg(msg.Description)

	if msg.Level == FatalLevel {
		os.Exit(1)
	}
}

func mkMsg(lvl Level, descr string, ctxs []context.Context) Message {
	return Message{Level: lvl, Description: descr, Contexts: ctxs}
}

// Debug logs a DebugLevel message.
func (l *Logger) Debug(descr string, ctxs ...context.Context) {
	l.Log(mkMsg(DebugLevel, descr, ctxs))
}

// Info logs an InfoLevel message.
func (l *Logger) Info(descr string, ctxs ...context.Context) {
	l.Log(mkMsg(InfoLevel, descr, ctxs))
}

// Warn logs a WarnLevel message.
func (l *Logger) Warn(descr string, ctxs ...context.Context) {
	l.Log(mkMsg(WarnLevel, descr, ctxs))
}

// Error logs an ErrorLevel message.
func (l *Logger) Error(descr string, ctxs ...context.Context) {
	l.Log(mkMsg(ErrorLevel, descr, ctxs))
}

// Fatal logs a FatalLevel message and then calls os.Exit(1).
func (l *Logger) Fatal(descr string, ctxs ...context.Context) {
	l.Log(mkMsg(FatalLevel, descr, ctxs))
}

// WithErr returns a Context annotated with err's message, suitable for
// passing into Warn/Error alongside any other annotated Contexts.
func WithErr(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	return mctx.Annotate(ctx, "err", err.Error())
}
