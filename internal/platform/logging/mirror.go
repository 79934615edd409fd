package logging

import (
	"context"
	"sync/atomic"
)

// MirrorFunc receives every emitted log line. Used by the OTLP log bridge.
type MirrorFunc func(ctx context.Context, level Level, msg string, args ...any)

var mirrorFn atomic.Pointer[MirrorFunc]

// SetMirror installs (or removes, when nil) the process-wide log mirror.
func SetMirror(fn MirrorFunc) {
	if fn == nil {
		mirrorFn.Store(nil)
		return
	}
	mirrorFn.Store(&fn)
}

func mirrorLog(ctx context.Context, level Level, msg string, args ...any) {
	fn := mirrorFn.Load()
	if fn == nil {
		return
	}
	(*fn)(ctx, level, msg, args...)
}
