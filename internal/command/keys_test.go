package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeDelExists(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	exec(t, d, cs, "SET", "k", "v")
	r := exec(t, d, cs, "TYPE", "k")
	assert.Equal(t, "string", string(r.Value.Str))

	r = exec(t, d, cs, "EXISTS", "k", "missing")
	assert.Equal(t, int64(1), r.Value.Int)

	r = exec(t, d, cs, "DEL", "k")
	assert.Equal(t, int64(1), r.Value.Int)

	r = exec(t, d, cs, "EXISTS", "k")
	assert.Equal(t, int64(0), r.Value.Int)
}

func TestTTLNoExpirationVsMissing(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	r := exec(t, d, cs, "TTL", "missing")
	assert.Equal(t, int64(-2), r.Value.Int)

	exec(t, d, cs, "SET", "k", "v")
	r = exec(t, d, cs, "TTL", "k")
	assert.Equal(t, int64(-1), r.Value.Int)

	exec(t, d, cs, "EXPIRE", "k", "100")
	r = exec(t, d, cs, "TTL", "k")
	assert.Greater(t, r.Value.Int, int64(0))
}

func TestExpirePersist(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	exec(t, d, cs, "SET", "k", "v")
	r := exec(t, d, cs, "EXPIRE", "k", "100")
	assert.Equal(t, int64(1), r.Value.Int)

	r = exec(t, d, cs, "PERSIST", "k")
	assert.Equal(t, int64(1), r.Value.Int)

	r = exec(t, d, cs, "TTL", "k")
	assert.Equal(t, int64(-1), r.Value.Int)
}

func TestRename(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	r := exec(t, d, cs, "RENAME", "missing", "dst")
	assert.Contains(t, string(r.Value.Str), "no such key")

	exec(t, d, cs, "SET", "src", "v")
	r = exec(t, d, cs, "RENAME", "src", "dst")
	assert.Equal(t, "OK", string(r.Value.Str))

	r = exec(t, d, cs, "GET", "dst")
	assert.Equal(t, "v", string(r.Value.Bulk))
}

func TestKeysDBSizeFlushDB(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	exec(t, d, cs, "SET", "a", "1")
	exec(t, d, cs, "SET", "b", "2")

	r := exec(t, d, cs, "DBSIZE")
	assert.Equal(t, int64(2), r.Value.Int)

	r = exec(t, d, cs, "KEYS", "*")
	assert.Len(t, r.Value.Elems, 2)

	r = exec(t, d, cs, "FLUSHDB")
	assert.Equal(t, "OK", string(r.Value.Str))

	r = exec(t, d, cs, "DBSIZE")
	assert.Equal(t, int64(0), r.Value.Int)
}

func TestShutdown(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	r := exec(t, d, cs, "SHUTDOWN", "NOSAVE")
	assert.Equal(t, KindShutdown, r.Kind)
	assert.True(t, r.ShutdownNoSave)
}

func TestWaitStub(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	r := exec(t, d, cs, "WAIT", "0", "100")
	assert.Equal(t, int64(0), r.Value.Int)
}
