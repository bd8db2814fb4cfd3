package waiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediocregopher/tiniredis/internal/store"
)

func TestXReadQueueServesOnAppend(t *testing.T) {
	s := store.New()
	q := NewXReadQueue(s)

	ch := q.Wait([]StreamQuery{{Key: "k", Start: store.StreamID{Ms: 0}}}, 0)

	_, err := s.XAdd("k", store.StreamID{Ms: 1}, nil)
	require.NoError(t, err)
	q.Notify("k")

	select {
	case res := <-ch:
		require.Len(t, res.Results, 1)
		assert.Equal(t, "k", res.Results[0].Key)
		assert.Len(t, res.Results[0].Entries, 1)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for xread result")
	}
}

func TestXReadQueueImmediateData(t *testing.T) {
	s := store.New()
	_, err := s.XAdd("k", store.StreamID{Ms: 1}, nil)
	require.NoError(t, err)

	q := NewXReadQueue(s)
	ch := q.Wait([]StreamQuery{{Key: "k", Start: store.StreamID{Ms: 0}}}, 0)

	select {
	case res := <-ch:
		require.Len(t, res.Results, 1)
	case <-time.After(time.Second):
		t.Fatal("expected immediate delivery")
	}
}

func TestXReadQueueExclusiveStart(t *testing.T) {
	s := store.New()
	_, err := s.XAdd("k", store.StreamID{Ms: 1}, nil)
	require.NoError(t, err)

	q := NewXReadQueue(s)
	ch := q.Wait([]StreamQuery{{Key: "k", Start: store.StreamID{Ms: 1}}}, 20*time.Millisecond)

	select {
	case res := <-ch:
		assert.True(t, res.TimedOut, "entry at exactly the start id must not be delivered")
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestXReadQueueMultiStream(t *testing.T) {
	s := store.New()
	q := NewXReadQueue(s)

	ch := q.Wait([]StreamQuery{
		{Key: "a", Start: store.StreamID{Ms: 0}},
		{Key: "b", Start: store.StreamID{Ms: 0}},
	}, 0)

	_, err := s.XAdd("b", store.StreamID{Ms: 1}, nil)
	require.NoError(t, err)
	q.Notify("b")

	select {
	case res := <-ch:
		require.Len(t, res.Results, 1)
		assert.Equal(t, "b", res.Results[0].Key)
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestXReadQueueTimeout(t *testing.T) {
	s := store.New()
	q := NewXReadQueue(s)

	ch := q.Wait([]StreamQuery{{Key: "k", Start: store.StreamID{Ms: 0}}}, 20*time.Millisecond)

	select {
	case res := <-ch:
		assert.True(t, res.TimedOut)
	case <-time.After(time.Second):
		t.Fatal("expected timeout result")
	}
}
