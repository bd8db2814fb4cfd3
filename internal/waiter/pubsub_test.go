package waiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeAck(t *testing.T) {
	h := NewHub()
	ch := h.Register("c1")
	_ = ch

	acks := h.Subscribe("c1", []string{"foo", "bar"})
	require.Len(t, acks, 2)

	assert.True(t, acks[0].Equal(subAckFrame("subscribe", "foo", 1)))
	assert.True(t, acks[1].Equal(subAckFrame("subscribe", "bar", 2)))
}

func TestUnsubscribeAll(t *testing.T) {
	h := NewHub()
	h.Register("c1")
	h.Subscribe("c1", []string{"foo", "bar"})

	acks := h.Unsubscribe("c1", nil)
	assert.Len(t, acks, 2)

	acks = h.Subscribe("c1", []string{"baz"})
	require.Len(t, acks, 1)
	assert.True(t, acks[0].Equal(subAckFrame("subscribe", "baz", 1)))
}

func TestPublishDeliversToSubscribers(t *testing.T) {
	h := NewHub()
	ch := h.Register("c1")
	h.Subscribe("c1", []string{"foo"})

	n := h.Publish("foo", []byte("hello"))
	assert.Equal(t, 1, n)

	select {
	case v := <-ch:
		assert.True(t, v.Equal(messageFrame("foo", []byte("hello"))))
	default:
		t.Fatal("expected a message frame")
	}
}

func TestPublishNoSubscribersReturnsZero(t *testing.T) {
	h := NewHub()
	n := h.Publish("nobody-listening", []byte("x"))
	assert.Equal(t, 0, n)
}

func TestPSubscribeMatchesGlob(t *testing.T) {
	h := NewHub()
	ch := h.Register("c1")
	h.PSubscribe("c1", []string{"news.*"})

	n := h.Publish("news.sports", []byte("goal"))
	assert.Equal(t, 1, n)

	select {
	case v := <-ch:
		assert.True(t, v.Equal(pmessageFrame("news.*", "news.sports", []byte("goal"))))
	default:
		t.Fatal("expected a pmessage frame")
	}
}

func TestUnregisterClosesChannel(t *testing.T) {
	h := NewHub()
	ch := h.Register("c1")
	h.Unregister("c1")

	_, ok := <-ch
	assert.False(t, ok)
}

func TestPublishOrderingPerSubscriber(t *testing.T) {
	h := NewHub()
	ch := h.Register("c1")
	h.Subscribe("c1", []string{"foo", "bar"})

	h.Publish("foo", []byte("1"))
	h.Publish("bar", []byte("2"))

	v1 := <-ch
	v2 := <-ch
	assert.True(t, v1.Equal(messageFrame("foo", []byte("1"))))
	assert.True(t, v2.Equal(messageFrame("bar", []byte("2"))))
}
