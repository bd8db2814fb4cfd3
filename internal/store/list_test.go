package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLPushRPush(t *testing.T) {
	s := New()

	n, err := s.RPushVals("k", [][]byte{[]byte("a"), []byte("b")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.LPushVals("k", [][]byte{[]byte("x"), []byte("y")})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	vals, err := s.LRange("k", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("y"), []byte("x"), []byte("a"), []byte("b")}, vals)
}

func TestLPopRPop(t *testing.T) {
	s := New()
	_, err := s.RPushVals("k", [][]byte{[]byte("a"), []byte("b"), []byte("c")})
	require.NoError(t, err)

	popped, err := s.LPop("k", 2)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, popped)

	popped, err = s.RPop("k", 1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("c")}, popped)

	assert.False(t, s.Exists("k"))
}

func TestListWrongType(t *testing.T) {
	s := New()
	_, err := s.Set("k", []byte("v"), SetOpts{})
	require.NoError(t, err)

	_, err = s.LPushVals("k", [][]byte{[]byte("a")})
	assert.ErrorIs(t, err, ErrWrongType{})
}

func TestLRangeIndexSemantics(t *testing.T) {
	s := New()
	_, err := s.RPushVals("k", [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d")})
	require.NoError(t, err)

	vals, err := s.LRange("k", -2, -1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("c"), []byte("d")}, vals)

	vals, err = s.LRange("k", 5, 10)
	require.NoError(t, err)
	assert.Empty(t, vals)

	vals, err = s.LRange("missing", 0, -1)
	require.NoError(t, err)
	assert.Nil(t, vals)
}

func TestLLen(t *testing.T) {
	s := New()
	n, err := s.LLen("missing")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = s.RPushVals("k", [][]byte{[]byte("a")})
	require.NoError(t, err)
	n, err = s.LLen("k")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
