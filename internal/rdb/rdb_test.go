package rdb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediocregopher/tiniredis/internal/store"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	s := store.New()
	_, err := s.Set("foo", []byte("bar"), store.SetOpts{})
	require.NoError(t, err)
	_, err = s.SAdd("s", "a", "b")
	require.NoError(t, err)
	_, err = s.LPushVals("l", [][]byte{[]byte("y"), []byte("x")})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dump.rdb")
	require.NoError(t, Save(s, path))

	loaded := store.New()
	require.NoError(t, Load(path, loaded))

	v, ok, err := loaded.Get("foo")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("bar"), v)

	members, err := loaded.SMembers("s")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, members)

	vals, err := loaded.LRange("l", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("x"), []byte("y")}, vals)
}

func TestSaveLoadPreservesExpiry(t *testing.T) {
	s := store.New()
	_, err := s.Set("k", []byte("v"), store.SetOpts{ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dump.rdb")
	require.NoError(t, Save(s, path))

	loaded := store.New()
	require.NoError(t, Load(path, loaded))

	d, ok, err := loaded.TTL("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Greater(t, d, 50*time.Minute)
}

func TestLoadSkipsAlreadyExpiredKeys(t *testing.T) {
	s := store.New()
	_, err := s.Set("gone", []byte("v"), store.SetOpts{ExpiresAt: time.Now().Add(time.Millisecond)})
	require.NoError(t, err)
	_, err = s.Set("alive", []byte("v"), store.SetOpts{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dump.rdb")

	time.Sleep(5 * time.Millisecond)
	// Snapshot is taken fresh from s, which already lazily expires "gone" on
	// access, but we want to exercise Load's own skip-if-expired path, so
	// bypass that by saving a store that still thinks the key is live: we
	// can't force that through the public API, so this test instead just
	// confirms a normal save/load excludes it via the store's own
	// lazy-expiry, and that Load tolerates an RDB with no expired keys at
	// all.
	require.NoError(t, Save(s, path))

	loaded := store.New()
	require.NoError(t, Load(path, loaded))

	assert.False(t, loaded.Exists("gone"))
	assert.True(t, loaded.Exists("alive"))
}

func TestLoadRejectsBadChecksum(t *testing.T) {
	s := store.New()
	_, err := s.Set("k", []byte("v"), store.SetOpts{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dump.rdb")
	require.NoError(t, Save(s, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded := store.New()
	err = Load(path, loaded)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCRC64Deterministic(t *testing.T) {
	a := crc64([]byte("hello world"))
	b := crc64([]byte("hello world"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, crc64([]byte("hello worlD")))
}
