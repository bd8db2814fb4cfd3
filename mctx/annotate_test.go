package mctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnotate(t *testing.T) {
	ctx := context.Background()
	ctx = Annotate(ctx, "a", 1, "b", 2)
	ctx = Annotate(ctx, "b", 3)

	m := StringMap(ctx)
	assert.Equal(t, "1", m["a"])
	assert.Equal(t, "3", m["b"])
}

func TestMerge(t *testing.T) {
	base := Annotate(context.Background(), "a", 1)
	overlay := Annotate(context.Background(), "a", 2, "c", 3)

	merged := Merge(base, overlay)
	m := StringMap(merged)
	assert.Equal(t, "2", m["a"])
	assert.Equal(t, "3", m["c"])
}

func TestStringSliceSorted(t *testing.T) {
	ctx := Annotate(context.Background(), "z", 1, "a", 2)
	ss := StringSlice(ctx)
	assert.Equal(t, [][2]string{{"a", "2"}, {"z", "1"}}, ss)
}
