// Package mctx provides a single piece of functionality on top of the
// standard context package: annotating a Context with loggable key/value
// pairs without requiring the annotator to know anything about how (or
// whether) those pairs will ever be logged.
//
// This is a trimmed-down descendant of the original mctx package, which also
// organized Contexts into a parent/child hierarchy; that responsibility has
// moved to the mcmp package, whose Component already forms a tree. Annotate
// remains Context-based, rather than Component-based, so that values
// produced deep inside a single command's execution (e.g. merr.Wrap call
// sites) can be attached without a Component in hand.
package mctx

import (
	"context"
	"fmt"
	"sort"
)

type annotation struct {
	key, val interface{}
	prev     *annotation
}

type annotationKey int

// Annotate takes in one or more key/value pairs (kvs must have an even
// length) and returns a Context carrying them alongside whatever was
// already annotated onto ctx.
func Annotate(ctx context.Context, kvs ...interface{}) context.Context {
	if len(kvs)%2 != 0 {
		panic("mctx.Annotate called with an odd number of key/value arguments")
	} else if len(kvs) == 0 {
		return ctx
	}

	prev, _ := ctx.Value(annotationKey(0)).(*annotation)
	var curr *annotation
	for i := 0; i < len(kvs); i += 2 {
		curr = &annotation{key: kvs[i], val: kvs[i+1], prev: prev}
		prev = curr
	}
	return context.WithValue(ctx, annotationKey(0), curr)
}

// Annotated is a convenience function which returns Annotate(context.Background(), kvs...).
func Annotated(kvs ...interface{}) context.Context {
	return Annotate(context.Background(), kvs...)
}

// Annotation is a single key/value pair which was attached via Annotate.
type Annotation struct {
	Key, Value interface{}
}

// Annotations returns every Annotation which has been attached to ctx, most
// recently attached first. If the same key was annotated more than once,
// only the most recent value for it is included.
func Annotations(ctx context.Context) []Annotation {
	a, _ := ctx.Value(annotationKey(0)).(*annotation)
	if a == nil {
		return nil
	}

	seen := map[interface{}]bool{}
	var out []Annotation
	for a != nil {
		if !seen[a.key] {
			seen[a.key] = true
			out = append(out, Annotation{Key: a.key, Value: a.val})
		}
		a = a.prev
	}
	return out
}

// StringMap formats every Annotation on ctx into a string/string map via
// fmt.Sprint. If two keys format to the same string only one survives; this
// is acceptable for the annotation's intended use (human-readable log
// lines), where collisions are rare and not worth the bookkeeping the
// original mctx package did to avoid them.
func StringMap(ctx context.Context) map[string]string {
	aa := Annotations(ctx)
	m := make(map[string]string, len(aa))
	for _, a := range aa {
		m[fmt.Sprint(a.Key)] = fmt.Sprint(a.Value)
	}
	return m
}

// StringSlice is like StringMap but returns a slice of key/value pairs,
// sorted by key, suitable for deterministic log-line rendering.
func StringSlice(ctx context.Context) [][2]string {
	m := StringMap(ctx)
	out := make([][2]string, 0, len(m))
	for k, v := range m {
		out = append(out, [2]string{k, v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Merge returns a Context carrying the annotations of both ctx and the
// overlay Contexts, with later overlays taking precedence over earlier ones
// and over ctx itself.
func Merge(ctx context.Context, overlays ...context.Context) context.Context {
	for _, overlay := range overlays {
		a, _ := overlay.Value(annotationKey(0)).(*annotation)
		if a == nil {
			continue
		}
		// collect overlay's chain (oldest-first) and re-apply it on top of
		// ctx so precedence (most-recent-wins) is preserved.
		var chain []*annotation
		for ; a != nil; a = a.prev {
			chain = append(chain, a)
		}
		for i := len(chain) - 1; i >= 0; i-- {
			ctx = Annotate(ctx, chain[i].key, chain[i].val)
		}
	}
	return ctx
}
