// Package merr extends the builtin errors package with contextual
// annotations and an embedded stack trace, so that an -ERR reply surfaced
// to a RESP client can still be logged with full context on the server
// side.
//
// As is recommended for Go projects generally, errors.Is and errors.As
// should be used for equality checking against wrapped errors.
package merr

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/mediocregopher/tiniredis/mctx"
)

var strBuilderPool = sync.Pool{
	New: func() interface{} { return new(strings.Builder) },
}

// Error wraps an error such that contextual and stack trace information is
// captured alongside it.
type Error struct {
	Err        error
	Ctx        context.Context
	Stacktrace Stacktrace
}

// Error implements the error interface.
func (e Error) Error() string {
	sb := strBuilderPool.Get().(*strings.Builder)
	defer func() {
		sb.Reset()
		strBuilderPool.Put(sb)
	}()

	sb.WriteString(strings.TrimSpace(e.Err.Error()))

	kvs := mctx.StringSlice(e.Ctx)
	if line := e.Stacktrace.String(); line != "" {
		kvs = append(kvs, [2]string{"line", line})
	}

	for _, kv := range kvs {
		sb.WriteString("\n\t* ")
		sb.WriteString(kv[0])
		sb.WriteString(": ")
		sb.WriteString(kv[1])
	}

	return sb.String()
}

// Unwrap implements the interface errors.Unwrap looks for.
func (e Error) Unwrap() error {
	return e.Err
}

// WrapSkip is like Wrap but allows skipping extra stack frames when
// embedding the stack into the error, for helpers which themselves wrap
// Wrap (see New).
func WrapSkip(ctx context.Context, err error, skip int) error {
	if err == nil {
		return nil
	}

	if e := (Error{}); errors.As(err, &e) {
		e.Err = err
		e.Ctx = mctx.Merge(e.Ctx, ctx)
		return e
	}

	return Error{
		Err:        err,
		Ctx:        ctx,
		Stacktrace: newStacktrace(skip + 1),
	}
}

// Wrap returns a copy of the given error wrapped in an Error, embedding the
// annotations found on ctx. If the given error is (or wraps) an Error, the
// returned Error wraps it, keeps that Error's stack trace, and carries its
// annotations merged with ctx's rather than capturing a new stack trace.
//
// Wrapping nil returns nil.
func Wrap(err error, ctx context.Context) error {
	return WrapSkip(ctx, err, 1)
}

// New is a shortcut for merr.Wrap(errors.New(str), ctx).
func New(str string, ctx context.Context) error {
	return WrapSkip(ctx, errors.New(str), 1)
}
