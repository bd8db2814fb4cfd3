package txn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediocregopher/tiniredis/internal/command"
	"github.com/mediocregopher/tiniredis/internal/resp"
	"github.com/mediocregopher/tiniredis/internal/store"
	"github.com/mediocregopher/tiniredis/internal/waiter"
)

func newTestDispatcher() *command.Dispatcher {
	s := store.New()
	return &command.Dispatcher{
		Store: s,
		Pop:   waiter.NewPopQueue(s),
		XRead: waiter.NewXReadQueue(s),
		Hub:   waiter.NewHub(),
	}
}

func argv(parts ...string) [][]byte {
	out := make([][]byte, len(parts))
	for i, p := range parts {
		out[i] = []byte(p)
	}
	return out
}

func TestExecRunsQueuedCommandsInOrder(t *testing.T) {
	d := newTestDispatcher()
	cs := command.NewConnState(waiter.ClientID("c1"))

	var q Queue
	q.Begin()
	assert.True(t, q.Active())

	q.Queue(argv("SET", "k", "v"))
	q.Queue(argv("GET", "k"))
	q.Queue(argv("INCR", "n"))

	results := q.Exec(d, cs)
	require.Len(t, results, 3)
	assert.Equal(t, "OK", string(results[0].Str))
	assert.Equal(t, "v", string(results[1].Bulk))
	assert.Equal(t, int64(1), results[2].Int)
	assert.False(t, q.Active())
}

func TestExecRejectsBlockingCommand(t *testing.T) {
	d := newTestDispatcher()
	cs := command.NewConnState(waiter.ClientID("c1"))

	var q Queue
	q.Begin()
	q.Queue(argv("BLPOP", "missing", "0.01"))

	results := q.Exec(d, cs)
	require.Len(t, results, 1)
	assert.True(t, resp.NewError("ERR Unsupported operation in MULTI block").Equal(results[0]))
}

func TestDiscardClearsQueue(t *testing.T) {
	d := newTestDispatcher()
	cs := command.NewConnState(waiter.ClientID("c1"))

	var q Queue
	q.Begin()
	q.Queue(argv("SET", "k", "v"))
	q.Discard()
	assert.False(t, q.Active())

	results := q.Exec(d, cs)
	assert.Len(t, results, 0)
}
