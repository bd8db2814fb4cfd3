package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSAddSRemSCard(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	r := exec(t, d, cs, "SADD", "s", "a", "b", "a")
	assert.Equal(t, int64(2), r.Value.Int)

	r = exec(t, d, cs, "SCARD", "s")
	assert.Equal(t, int64(2), r.Value.Int)

	r = exec(t, d, cs, "SISMEMBER", "s", "a")
	assert.Equal(t, int64(1), r.Value.Int)

	r = exec(t, d, cs, "SREM", "s", "a")
	assert.Equal(t, int64(1), r.Value.Int)

	r = exec(t, d, cs, "SISMEMBER", "s", "a")
	assert.Equal(t, int64(0), r.Value.Int)
}

func TestSMembers(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	exec(t, d, cs, "SADD", "s", "a", "b", "c")
	r := exec(t, d, cs, "SMEMBERS", "s")
	require.Len(t, r.Value.Elems, 3)
}

func TestSPopNoCountReturnsBulk(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	exec(t, d, cs, "SADD", "s", "only")
	r := exec(t, d, cs, "SPOP", "s")
	assert.Equal(t, "only", string(r.Value.Bulk))

	r = exec(t, d, cs, "SCARD", "s")
	assert.Equal(t, int64(0), r.Value.Int)
}

func TestSPopWithCountReturnsArray(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	exec(t, d, cs, "SADD", "s", "a", "b", "c")
	r := exec(t, d, cs, "SPOP", "s", "2")
	require.Len(t, r.Value.Elems, 2)
}

func TestSRandMemberDoesNotRemove(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	exec(t, d, cs, "SADD", "s", "a")
	r := exec(t, d, cs, "SRANDMEMBER", "s")
	assert.Equal(t, "a", string(r.Value.Bulk))

	r = exec(t, d, cs, "SCARD", "s")
	assert.Equal(t, int64(1), r.Value.Int)
}
