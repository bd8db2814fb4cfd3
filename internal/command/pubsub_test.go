package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeUnsubscribeReturnKindSubscribe(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	r := exec(t, d, cs, "SUBSCRIBE", "news", "sports")
	require.Equal(t, KindSubscribe, r.Kind)
	assert.Equal(t, SubOpSubscribe, r.SubOp)
	assert.Equal(t, []string{"news", "sports"}, r.Channels)

	r = exec(t, d, cs, "UNSUBSCRIBE", "news")
	require.Equal(t, KindSubscribe, r.Kind)
	assert.Equal(t, SubOpUnsubscribe, r.SubOp)
	assert.Equal(t, []string{"news"}, r.Channels)
}

func TestPSubscribeRequiresAPattern(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	r := exec(t, d, cs, "PSUBSCRIBE")
	assert.Contains(t, string(r.Value.Str), "wrong number of arguments")
}

func TestPublishCountsSubscribers(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	ch := d.Hub.Register(cs.ClientID)
	d.Hub.Subscribe(cs.ClientID, []string{"news"})

	r := exec(t, d, cs, "PUBLISH", "news", "hello")
	assert.Equal(t, int64(1), r.Value.Int)

	select {
	case v := <-ch:
		require.Len(t, v.Elems, 3)
		assert.Equal(t, "message", string(v.Elems[0].Bulk))
	default:
		t.Fatal("expected a message frame to be delivered")
	}
}

func TestPublishNoSubscribersReturnsZero(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	r := exec(t, d, cs, "PUBLISH", "nobody", "hello")
	assert.Equal(t, int64(0), r.Value.Int)
}
