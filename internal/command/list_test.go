package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushPopRange(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	r := exec(t, d, cs, "RPUSH", "l", "a", "b", "c")
	assert.Equal(t, int64(3), r.Value.Int)

	r = exec(t, d, cs, "LLEN", "l")
	assert.Equal(t, int64(3), r.Value.Int)

	r = exec(t, d, cs, "LRANGE", "l", "0", "-1")
	require.Len(t, r.Value.Elems, 3)
	assert.Equal(t, "a", string(r.Value.Elems[0].Bulk))

	r = exec(t, d, cs, "LPOP", "l")
	assert.Equal(t, "a", string(r.Value.Bulk))

	r = exec(t, d, cs, "RPOP", "l", "2")
	require.Len(t, r.Value.Elems, 2)
	assert.Equal(t, "c", string(r.Value.Elems[0].Bulk))
}

func TestLPopEmptyIsNil(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	r := exec(t, d, cs, "LPOP", "missing")
	assert.True(t, r.Value.IsNil())
}

func TestBLPopImmediateData(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	exec(t, d, cs, "RPUSH", "l", "x")
	r := exec(t, d, cs, "BLPOP", "l", "0")
	require.Equal(t, KindBlock, r.Kind)

	select {
	case v := <-r.Block:
		require.Len(t, v.Elems, 2)
		assert.Equal(t, "l", string(v.Elems[0].Bulk))
		assert.Equal(t, "x", string(v.Elems[1].Bulk))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for BLPOP result")
	}
}

func TestBLPopTimesOut(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	r := exec(t, d, cs, "BLPOP", "missing", "0.05")
	require.Equal(t, KindBlock, r.Kind)

	select {
	case v := <-r.Block:
		assert.True(t, v.IsNil())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for BLPOP result")
	}
}

func TestBLPopWakesOnPush(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	r := exec(t, d, cs, "BLPOP", "l", "1")
	require.Equal(t, KindBlock, r.Kind)

	go func() {
		time.Sleep(20 * time.Millisecond)
		exec(t, d, newTestConnState(), "RPUSH", "l", "late")
	}()

	select {
	case v := <-r.Block:
		require.Len(t, v.Elems, 2)
		assert.Equal(t, "late", string(v.Elems[1].Bulk))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for BLPOP result")
	}
}
