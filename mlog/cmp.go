package mlog

import (
	"github.com/mediocregopher/tiniredis/mcmp"
)

type cmpKey int

const (
	cmpKeyLogger cmpKey = iota
	cmpKeyFromLogger
)

// SetLogger sets the given Logger onto the Component. The Logger can later
// be retrieved from the Component, or any of its children, using From.
func SetLogger(cmp *mcmp.Component, l *Logger) {
	cmp.SetValue(cmpKeyLogger, l)
}

// DefaultLogger is the Logger returned by From when none has ever been set
// with SetLogger on the Component or one of its ancestors.
var DefaultLogger = NewLogger()

// GetLogger returns the Logger which was set on the Component, or on one of
// its ancestors, using SetLogger. If no Logger was ever set, DefaultLogger
// is returned.
func GetLogger(cmp *mcmp.Component) *Logger {
	if l, ok := cmp.InheritedValue(cmpKeyLogger); ok {
		return l.(*Logger)
	}
	return DefaultLogger
}

// From returns the result of GetLogger, along with an implicit annotation
// of the Component's path on every Message logged through it.
func From(cmp *mcmp.Component) *Logger {
	if l, _ := cmp.Value(cmpKeyFromLogger).(*Logger); l != nil {
		return l
	}

	base := GetLogger(cmp)
	wrapped := &Logger{
		zl:       base.zl.With().Str("component", pathOrRoot(cmp)).Logger(),
		maxLevel: base.maxLevel,
	}
	cmp.SetValue(cmpKeyFromLogger, wrapped)
	return wrapped
}

func pathOrRoot(cmp *mcmp.Component) string {
	path := cmp.Path()
	if len(path) == 0 {
		return "/"
	}
	out := "/"
	for i, p := range path {
		if i > 0 {
			out += "/"
		}
		out += p
	}
	return out
}
