package mlog

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/mediocregopher/tiniredis/mcmp"
	"github.com/mediocregopher/tiniredis/mctx"
)

func TestLevelFromString(t *testing.T) {
	lvl, ok := LevelFromString("debug")
	assert.True(t, ok)
	assert.Equal(t, DebugLevel, lvl)

	_, ok = LevelFromString("bogus")
	assert.False(t, ok)
}

func TestLoggerWritesAboveMaxLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: &buf, NoColor: true}))
	l.SetMaxLevel(WarnLevel)

	l.Debug("should not appear")
	l.Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
}

func TestFromAnnotatesComponentPath(t *testing.T) {
	var buf bytes.Buffer
	root := new(mcmp.Component)
	SetLogger(root, NewJSONLogger(zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: &buf, NoColor: true})))

	child := root.Child("store")
	From(child).Info("hello", mctx.Annotate(child.Context(), "key", "val"))

	assert.Contains(t, buf.String(), "/store")
	assert.Contains(t, buf.String(), "hello")
}
