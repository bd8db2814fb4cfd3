package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXAddRejectsZeroID(t *testing.T) {
	s := New()
	_, err := s.XAdd("k", StreamID{}, nil)
	assert.ErrorIs(t, err, ErrInvalidStreamID{})
}

func TestXAddRejectsNonIncreasingID(t *testing.T) {
	s := New()
	_, err := s.XAdd("k", StreamID{Ms: 5, Seq: 0}, nil)
	require.NoError(t, err)

	_, err = s.XAdd("k", StreamID{Ms: 5, Seq: 0}, nil)
	assert.ErrorIs(t, err, ErrInvalidStreamID{})

	_, err = s.XAdd("k", StreamID{Ms: 4, Seq: 0}, nil)
	assert.ErrorIs(t, err, ErrInvalidStreamID{})
}

func TestXAddXLen(t *testing.T) {
	s := New()
	_, err := s.XAdd("k", StreamID{Ms: 1, Seq: 0}, []StreamField{{Field: "f", Value: []byte("v")}})
	require.NoError(t, err)
	_, err = s.XAdd("k", StreamID{Ms: 2, Seq: 0}, nil)
	require.NoError(t, err)

	n, err := s.XLen("k")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestXRange(t *testing.T) {
	s := New()
	ids := []StreamID{{Ms: 1}, {Ms: 2}, {Ms: 3}}
	for _, id := range ids {
		_, err := s.XAdd("k", id, nil)
		require.NoError(t, err)
	}

	entries, err := s.XRange("k", StreamID{Ms: 2}, StreamID{Ms: 3})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, StreamID{Ms: 2}, entries[0].ID)
	assert.Equal(t, StreamID{Ms: 3}, entries[1].ID)
}

func TestXRangeEmptyWhenStartAfterEnd(t *testing.T) {
	s := New()
	_, err := s.XAdd("k", StreamID{Ms: 1}, nil)
	require.NoError(t, err)

	entries, err := s.XRange("k", StreamID{Ms: 5}, StreamID{Ms: 1})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestXReadAfterExclusive(t *testing.T) {
	s := New()
	_, err := s.XAdd("k", StreamID{Ms: 1}, nil)
	require.NoError(t, err)
	_, err = s.XAdd("k", StreamID{Ms: 2}, nil)
	require.NoError(t, err)

	entries, err := s.XReadAfter("k", StreamID{Ms: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, StreamID{Ms: 2}, entries[0].ID)

	entries, err = s.XReadAfter("k", StreamID{Ms: 2})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestXTopID(t *testing.T) {
	s := New()
	_, ok, err := s.XTopID("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.XAdd("k", StreamID{Ms: 7, Seq: 2}, nil)
	require.NoError(t, err)

	top, ok, err := s.XTopID("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, StreamID{Ms: 7, Seq: 2}, top)
}

func TestStreamWrongType(t *testing.T) {
	s := New()
	_, err := s.Set("k", []byte("v"), SetOpts{})
	require.NoError(t, err)

	_, err = s.XAdd("k", StreamID{Ms: 1}, nil)
	assert.ErrorIs(t, err, ErrWrongType{})
}
