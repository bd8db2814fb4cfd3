package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSet(t *testing.T) {
	s := New()

	_, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Set("k", []byte("v"), SetOpts{})
	require.NoError(t, err)
	assert.True(t, ok)

	v, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

func TestSetNXXX(t *testing.T) {
	s := New()

	ok, err := s.Set("k", []byte("v1"), SetOpts{OnlyIfPresent: true})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Set("k", []byte("v1"), SetOpts{OnlyIfAbsent: true})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Set("k", []byte("v2"), SetOpts{OnlyIfAbsent: true})
	require.NoError(t, err)
	assert.False(t, ok)

	v, _, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)
}

func TestSetExpiresAt(t *testing.T) {
	s := New()
	past := time.Now().Add(-time.Minute)
	_, err := s.Set("k", []byte("v"), SetOpts{ExpiresAt: past})
	require.NoError(t, err)

	assert.False(t, s.Exists("k"))
}

func TestGetSetOp(t *testing.T) {
	s := New()
	_, err := s.Set("k", []byte("old"), SetOpts{})
	require.NoError(t, err)

	prev, had, err := s.GetSet("k", []byte("new"))
	require.NoError(t, err)
	assert.True(t, had)
	assert.Equal(t, []byte("old"), prev)

	v, _, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestAppendStrLen(t *testing.T) {
	s := New()
	n, err := s.Append("k", []byte("Hello "))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	n, err = s.Append("k", []byte("World"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	l, err := s.StrLen("k")
	require.NoError(t, err)
	assert.Equal(t, 11, l)
}

func TestIncrByDecr(t *testing.T) {
	s := New()
	n, err := s.IncrBy("k", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.IncrBy("k", -5)
	require.NoError(t, err)
	assert.Equal(t, int64(-4), n)
}

func TestIncrByNotInteger(t *testing.T) {
	s := New()
	_, err := s.Set("k", []byte("notanumber"), SetOpts{})
	require.NoError(t, err)

	_, err = s.IncrBy("k", 1)
	assert.ErrorIs(t, err, ErrNotInteger{})
}

func TestIncrByFloat(t *testing.T) {
	s := New()
	out, err := s.IncrByFloat("k", 1.5)
	require.NoError(t, err)
	assert.Equal(t, "1.5", string(out))

	out, err = s.IncrByFloat("k", 0.5)
	require.NoError(t, err)
	assert.Equal(t, "2", string(out))
}

func TestStringWrongType(t *testing.T) {
	s := New()
	_, err := s.SAdd("k", "a")
	require.NoError(t, err)

	_, _, err = s.Get("k")
	assert.ErrorIs(t, err, ErrWrongType{})
}
