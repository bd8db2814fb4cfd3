package mrun

import (
	"context"

	"github.com/mediocregopher/tiniredis/mcmp"
)

// Hook describes a function which can be registered to trigger on an event
// via AddHook.
type Hook func(context.Context) error

type hookKey struct{ key interface{} }

// AddHook registers a Hook under a typed key. The Hook will be called when
// TriggerHooks is called with that same key.
//
// AddHook always registers onto the root of cmp's Component tree, so Hooks
// trigger in the global order they were added: if a Hook is added on a
// Component, then one is added on a child of that Component, then another is
// added on the original Component again, the three will trigger in that same
// order (parent, child, parent), not grouped by Component.
func AddHook(cmp *mcmp.Component, key interface{}, hook Hook) {
	root := mcmp.Root(cmp)
	root.UpdateValue(hookKey{key}, func(v interface{}) interface{} {
		hooks, _ := v.([]Hook)
		return append(hooks, hook)
	})
}

func triggerHooks(ctx context.Context, cmp *mcmp.Component, key interface{}, next func([]Hook) (Hook, []Hook)) error {
	root := mcmp.Root(cmp)
	// the hooks are taken off root before running, so a hook may itself read
	// or write root's values without deadlocking on root's lock.
	var hooks []Hook
	root.UpdateValue(hookKey{key}, func(i interface{}) interface{} {
		hooks, _ = i.([]Hook)
		return nil
	})
	var err error
	for len(hooks) > 0 {
		var hook Hook
		hook, hooks = next(hooks)
		if err = hook(ctx); err != nil {
			break
		}
	}
	// hooks which ran are dropped; any left (because of an error) stay
	// registered so a retry only re-runs what didn't complete.
	if err != nil {
		root.UpdateValue(hookKey{key}, func(i interface{}) interface{} {
			added, _ := i.([]Hook)
			return append(hooks, added...)
		})
	}
	return err
}

// TriggerHooks calls every Hook added with AddHook under key, in the order
// they were added, using ctx as their input. If any Hook returns an error,
// no further Hooks are called and that error is returned; any Hooks which
// didn't get to run remain registered for a future TriggerHooks call.
func TriggerHooks(ctx context.Context, cmp *mcmp.Component, key interface{}) error {
	return triggerHooks(ctx, cmp, key, func(hooks []Hook) (Hook, []Hook) {
		return hooks[0], hooks[1:]
	})
}

// TriggerHooksReverse is like TriggerHooks but calls Hooks in the reverse of
// the order they were added.
func TriggerHooksReverse(ctx context.Context, cmp *mcmp.Component, key interface{}) error {
	return triggerHooks(ctx, cmp, key, func(hooks []Hook) (Hook, []Hook) {
		last := len(hooks) - 1
		return hooks[last], hooks[:last]
	})
}

type builtinEvent int

const (
	initEvent builtinEvent = iota
	startEvent
	shutdownEvent
)

// InitHook registers hook to run when Init is called. Init hooks are for
// cheap, synchronous setup (opening a listener, loading an RDB snapshot from
// disk) which must succeed before the process is considered up.
func InitHook(cmp *mcmp.Component, hook Hook) {
	AddHook(cmp, initEvent, hook)
}

// Init runs every Hook registered with InitHook, in the order they were
// registered.
func Init(ctx context.Context, cmp *mcmp.Component) error {
	return TriggerHooks(ctx, cmp, initEvent)
}

// StartHook registers hook to run when Start is called. Start hooks are for
// spawning long-running background work (the accept loop, the expire-cycle
// ticker) via Thread; they should return quickly themselves.
func StartHook(cmp *mcmp.Component, hook Hook) {
	AddHook(cmp, startEvent, hook)
}

// Start runs every Hook registered with StartHook, in the order they were
// registered.
func Start(ctx context.Context, cmp *mcmp.Component) error {
	return TriggerHooks(ctx, cmp, startEvent)
}

// ShutdownHook registers hook to run when Shutdown is called.
func ShutdownHook(cmp *mcmp.Component, hook Hook) {
	AddHook(cmp, shutdownEvent, hook)
}

// Shutdown runs every Hook registered with ShutdownHook, in the reverse of
// the order they were registered, so that the most recently started piece of
// work is the first to be torn down.
func Shutdown(ctx context.Context, cmp *mcmp.Component) error {
	return TriggerHooksReverse(ctx, cmp, shutdownEvent)
}
