package merr

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// MaxStackSize indicates the maximum number of stack frames which will be
// stored when embedding stack traces in errors.
var MaxStackSize = 50

// Stacktrace represents a stack trace at a particular point in execution.
type Stacktrace struct {
	frames []uintptr
}

func newStacktrace(skip int) Stacktrace {
	stackSlice := make([]uintptr, MaxStackSize+skip)
	// incr skip once for newStacktrace, and once for runtime.Callers
	l := runtime.Callers(skip+2, stackSlice)
	return Stacktrace{frames: stackSlice[:l]}
}

// Frame returns the first frame in the stack.
func (s Stacktrace) Frame() runtime.Frame {
	if len(s.frames) == 0 {
		return runtime.Frame{}
	}
	frame, _ := runtime.CallersFrames(s.frames).Next()
	return frame
}

// String returns a string identifying the top-most frame of the stack, in
// the form pkgDir/file.go:line.
func (s Stacktrace) String() string {
	if len(s.frames) == 0 {
		return ""
	}
	frame := s.Frame()
	file, dir := filepath.Base(frame.File), filepath.Dir(frame.File)
	dir = filepath.Base(dir)
	return fmt.Sprintf("%s/%s:%d", dir, file, frame.Line)
}
