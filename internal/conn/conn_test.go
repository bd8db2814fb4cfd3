package conn

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediocregopher/tiniredis/internal/command"
	"github.com/mediocregopher/tiniredis/internal/resp"
	"github.com/mediocregopher/tiniredis/internal/store"
	"github.com/mediocregopher/tiniredis/internal/waiter"
)

func newTestDispatcher() *command.Dispatcher {
	s := store.New()
	return &command.Dispatcher{
		Store: s,
		Pop:   waiter.NewPopQueue(s),
		XRead: waiter.NewXReadQueue(s),
		Hub:   waiter.NewHub(),
	}
}

// serveOnPipe starts a Conn serving one end of a net.Pipe against d, and
// returns the other end's buffered reader/writer for the test to drive.
func serveOnPipe(t *testing.T, d *command.Dispatcher) (*bufio.Reader, *bufio.Writer, func()) {
	t.Helper()
	server, client := net.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	c := New(server, d, nil)
	done := make(chan struct{})
	go func() {
		c.Serve(ctx)
		close(done)
	}()

	cleanup := func() {
		cancel()
		client.Close()
		<-done
	}
	return bufio.NewReader(client), bufio.NewWriter(client), cleanup
}

func sendCmd(t *testing.T, w *bufio.Writer, args ...string) {
	t.Helper()
	vs := make([]resp.Value, len(args))
	for i, a := range args {
		vs[i] = resp.NewBulkStringFromString(a)
	}
	require.NoError(t, resp.Encode(w, resp.NewArray(vs...)))
	require.NoError(t, w.Flush())
}

func readReply(t *testing.T, r *bufio.Reader) resp.Value {
	t.Helper()
	v, err := resp.Decode(r)
	require.NoError(t, err)
	return v
}

func TestPingPong(t *testing.T) {
	d := newTestDispatcher()
	r, w, cleanup := serveOnPipe(t, d)
	defer cleanup()

	sendCmd(t, w, "PING")
	v := readReply(t, r)
	assert.Equal(t, resp.NewSimpleString("PONG"), v)
}

func TestSetGetRoundTrip(t *testing.T) {
	d := newTestDispatcher()
	r, w, cleanup := serveOnPipe(t, d)
	defer cleanup()

	sendCmd(t, w, "SET", "k", "v")
	assert.Equal(t, resp.OK, readReply(t, r))

	sendCmd(t, w, "GET", "k")
	assert.Equal(t, "v", string(readReply(t, r).Bulk))
}

func TestPipeliningRespondsInOrder(t *testing.T) {
	d := newTestDispatcher()
	r, w, cleanup := serveOnPipe(t, d)
	defer cleanup()

	// Write three frames before reading anything, to exercise the
	// buffered-before-flush pipelining path.
	vs := []resp.Value{
		resp.NewArray(resp.NewBulkStringFromString("SET"), resp.NewBulkStringFromString("a"), resp.NewBulkStringFromString("1")),
		resp.NewArray(resp.NewBulkStringFromString("SET"), resp.NewBulkStringFromString("b"), resp.NewBulkStringFromString("2")),
		resp.NewArray(resp.NewBulkStringFromString("GET"), resp.NewBulkStringFromString("a")),
		resp.NewArray(resp.NewBulkStringFromString("GET"), resp.NewBulkStringFromString("b")),
	}
	for _, v := range vs {
		require.NoError(t, resp.Encode(w, v))
	}
	require.NoError(t, w.Flush())

	assert.Equal(t, resp.OK, readReply(t, r))
	assert.Equal(t, resp.OK, readReply(t, r))
	assert.Equal(t, "1", string(readReply(t, r).Bulk))
	assert.Equal(t, "2", string(readReply(t, r).Bulk))
}

func TestAuthGateThenSuccess(t *testing.T) {
	d := newTestDispatcher()
	d.Password = "hunter2"
	r, w, cleanup := serveOnPipe(t, d)
	defer cleanup()

	sendCmd(t, w, "GET", "k")
	v := readReply(t, r)
	assert.Equal(t, resp.ErrorKind, v.Kind)
	assert.Contains(t, string(v.Str), "NOAUTH")

	sendCmd(t, w, "AUTH", "wrong")
	v = readReply(t, r)
	assert.Contains(t, string(v.Str), "WRONGPASS")

	sendCmd(t, w, "AUTH", "hunter2")
	assert.Equal(t, resp.OK, readReply(t, r))

	sendCmd(t, w, "GET", "k")
	assert.True(t, readReply(t, r).IsNil())
}

func TestMultiQueuesThenExecReplaysInOrder(t *testing.T) {
	d := newTestDispatcher()
	r, w, cleanup := serveOnPipe(t, d)
	defer cleanup()

	sendCmd(t, w, "MULTI")
	assert.Equal(t, resp.OK, readReply(t, r))

	sendCmd(t, w, "SET", "k", "v")
	assert.Equal(t, resp.NewSimpleString("QUEUED"), readReply(t, r))

	sendCmd(t, w, "GET", "k")
	assert.Equal(t, resp.NewSimpleString("QUEUED"), readReply(t, r))

	sendCmd(t, w, "EXEC")
	v := readReply(t, r)
	require.Equal(t, resp.Array, v.Kind)
	require.Len(t, v.Elems, 2)
	assert.Equal(t, resp.OK, v.Elems[0])
	assert.Equal(t, "v", string(v.Elems[1].Bulk))
}

func TestDiscardAbandonsQueue(t *testing.T) {
	d := newTestDispatcher()
	r, w, cleanup := serveOnPipe(t, d)
	defer cleanup()

	sendCmd(t, w, "MULTI")
	readReply(t, r)
	sendCmd(t, w, "SET", "k", "v")
	readReply(t, r)
	sendCmd(t, w, "DISCARD")
	assert.Equal(t, resp.OK, readReply(t, r))

	sendCmd(t, w, "EXEC")
	v := readReply(t, r)
	assert.Equal(t, resp.ErrorKind, v.Kind)
	assert.Contains(t, string(v.Str), "EXEC without MULTI")
}

func TestExecWithoutMultiErrors(t *testing.T) {
	d := newTestDispatcher()
	r, w, cleanup := serveOnPipe(t, d)
	defer cleanup()

	sendCmd(t, w, "EXEC")
	v := readReply(t, r)
	assert.Equal(t, resp.ErrorKind, v.Kind)
}

func TestBLPopWakesOnAnotherConnectionsPush(t *testing.T) {
	d := newTestDispatcher()
	r1, w1, cleanup1 := serveOnPipe(t, d)
	defer cleanup1()
	_, w2, cleanup2 := serveOnPipe(t, d)
	defer cleanup2()

	sendCmd(t, w1, "BLPOP", "q", "5")

	time.Sleep(20 * time.Millisecond)
	sendCmd(t, w2, "LPUSH", "q", "hello")

	v := readReply(t, r1)
	require.Equal(t, resp.Array, v.Kind)
	require.Len(t, v.Elems, 2)
	assert.Equal(t, "q", string(v.Elems[0].Bulk))
	assert.Equal(t, "hello", string(v.Elems[1].Bulk))
}

func TestSubscribePublishDeliversMessage(t *testing.T) {
	d := newTestDispatcher()
	rSub, wSub, cleanupSub := serveOnPipe(t, d)
	defer cleanupSub()
	rPub, wPub, cleanupPub := serveOnPipe(t, d)
	defer cleanupPub()

	sendCmd(t, wSub, "SUBSCRIBE", "news")
	ack := readReply(t, rSub)
	require.Equal(t, resp.Array, ack.Kind)
	assert.Equal(t, "subscribe", string(ack.Elems[0].Bulk))
	assert.Equal(t, int64(1), ack.Elems[2].Int)

	sendCmd(t, wPub, "PUBLISH", "news", "hi")
	n := readReply(t, rPub)
	assert.Equal(t, int64(1), n.Int)

	msg := readReply(t, rSub)
	require.Equal(t, resp.Array, msg.Kind)
	assert.Equal(t, "message", string(msg.Elems[0].Bulk))
	assert.Equal(t, "news", string(msg.Elems[1].Bulk))
	assert.Equal(t, "hi", string(msg.Elems[2].Bulk))
}

func TestPingWhileSubscribedRepliesWithPongFrame(t *testing.T) {
	d := newTestDispatcher()
	r, w, cleanup := serveOnPipe(t, d)
	defer cleanup()

	sendCmd(t, w, "SUBSCRIBE", "news")
	readReply(t, r)

	sendCmd(t, w, "PING")
	v := readReply(t, r)
	require.Equal(t, resp.Array, v.Kind)
	assert.Equal(t, "pong", string(v.Elems[0].Bulk))
}

func TestDisallowedCommandWhileSubscribedErrorsButStaysSubscribed(t *testing.T) {
	d := newTestDispatcher()
	r, w, cleanup := serveOnPipe(t, d)
	defer cleanup()

	sendCmd(t, w, "SUBSCRIBE", "news")
	readReply(t, r)

	sendCmd(t, w, "GET", "k")
	v := readReply(t, r)
	assert.Equal(t, resp.ErrorKind, v.Kind)

	sendCmd(t, w, "PING")
	v = readReply(t, r)
	assert.Equal(t, resp.Array, v.Kind)
}

func TestShutdownClosesConnectionWithoutReply(t *testing.T) {
	d := newTestDispatcher()
	var gotNoSave bool
	shutdownCalled := make(chan struct{})
	d.RequestShutdown = func(noSave bool) {
		gotNoSave = noSave
		close(shutdownCalled)
	}
	r, w, cleanup := serveOnPipe(t, d)
	defer cleanup()

	sendCmd(t, w, "SHUTDOWN", "NOSAVE")

	select {
	case <-shutdownCalled:
	case <-time.After(time.Second):
		t.Fatal("RequestShutdown was never called")
	}
	assert.True(t, gotNoSave)

	_, err := resp.Decode(r)
	assert.Error(t, err)
}
