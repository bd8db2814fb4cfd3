// Package conn drives one client connection end to end: decode a RESP frame,
// run it through a command.Dispatcher, and write back whatever the dispatch
// produced, looping until the client disconnects. It also owns the
// connection-scoped state the command package deliberately doesn't:
// subscribe-mode delivery multiplexing and the MULTI/EXEC queue.
package conn

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/segmentio/ksuid"

	"github.com/mediocregopher/tiniredis/internal/command"
	"github.com/mediocregopher/tiniredis/internal/resp"
	"github.com/mediocregopher/tiniredis/internal/txn"
	"github.com/mediocregopher/tiniredis/internal/waiter"
	"github.com/mediocregopher/tiniredis/mctx"
	"github.com/mediocregopher/tiniredis/mlog"
)

// Conn serves a single accepted net.Conn against a shared Dispatcher.
type Conn struct {
	nc  net.Conn
	r   *bufio.Reader
	w   *bufio.Writer
	d   *command.Dispatcher
	cs  *command.ConnState
	txn txn.Queue
	log *mlog.Logger

	subCh <-chan resp.Value
}

// New wraps nc for serving. log may be nil, in which case a default
// mlog.NewLogger (human-readable lines on stderr) is used.
func New(nc net.Conn, d *command.Dispatcher, log *mlog.Logger) *Conn {
	if log == nil {
		log = mlog.NewLogger()
	}
	id := waiter.ClientID(ksuid.New().String())
	return &Conn{
		nc:  nc,
		r:   bufio.NewReader(nc),
		w:   bufio.NewWriter(nc),
		d:   d,
		cs:  command.NewConnState(id),
		log: log,
	}
}

func (c *Conn) logCtx() context.Context {
	return mctx.Annotate(context.Background(), "clientID", string(c.cs.ClientID))
}

// Serve runs the connection's read/dispatch/write loop until the client
// disconnects, a write fails, or ctx is canceled (typically by server
// shutdown). It always closes nc before returning.
func (c *Conn) Serve(ctx context.Context) error {
	c.log.Debug("connection accepted", c.logCtx())
	defer c.close()
	// Closing nc on cancellation unblocks a Decode waiting on an idle client.
	stop := context.AfterFunc(ctx, func() { c.nc.Close() })
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		v, err := resp.Decode(c.r)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		argv, ok := toArgv(v)
		if !ok {
			if err := c.writeValue(resp.NewError("ERR Protocol error: expected array of bulk strings")); err != nil {
				return err
			}
			continue
		}
		if len(argv) == 0 {
			continue
		}

		done, err := c.handle(ctx, argv)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		if c.r.Buffered() == 0 {
			if err := c.w.Flush(); err != nil {
				return err
			}
		}
	}
}

func (c *Conn) close() {
	if c.subCh != nil {
		c.d.Hub.Unregister(c.cs.ClientID)
	}
	c.w.Flush()
	c.nc.Close()
	c.log.Debug("connection closed", c.logCtx())
}

// toArgv converts a decoded frame into a command's argument array. Clients
// are expected to send arrays of bulk strings; anything else (an inline
// command, say) is rejected rather than guessed at.
func toArgv(v resp.Value) ([][]byte, bool) {
	if v.Kind != resp.Array || v.Null {
		return nil, false
	}
	out := make([][]byte, len(v.Elems))
	for i, e := range v.Elems {
		if e.Kind != resp.BulkString || e.Null {
			return nil, false
		}
		out[i] = e.Bulk
	}
	return out, true
}

// handle executes one command's worth of argv and writes whatever response
// it produces, including the connection-layer follow-through for
// subscribe-mode, transactions, auth, and shutdown that command.Dispatcher
// itself can't perform. It returns done=true when the connection should
// close after this command.
func (c *Conn) handle(ctx context.Context, argv [][]byte) (bool, error) {
	name := strings.ToUpper(string(argv[0]))

	if c.txn.Active() && name != "EXEC" && name != "DISCARD" && name != "MULTI" {
		c.txn.Queue(argv)
		return false, c.writeValue(resp.NewSimpleString("QUEUED"))
	}

	r := c.d.Execute(c.cs, argv)

	switch r.Kind {
	case command.KindValue:
		return false, c.writeValue(r.Value)

	case command.KindBlock:
		select {
		case v := <-r.Block:
			return false, c.writeValue(v)
		case <-ctx.Done():
			return true, nil
		}

	case command.KindSubscribe:
		return false, c.handleSubscribe(ctx, r)

	case command.KindTransaction:
		return false, c.handleTransaction(r)

	case command.KindAuth:
		return false, c.handleAuth(r)

	case command.KindShutdown:
		if c.d.RequestShutdown != nil {
			c.d.RequestShutdown(r.ShutdownNoSave)
		}
		// Real SHUTDOWN never replies; the server exits before a response
		// would reach the client.
		return true, nil

	default:
		return false, c.writeValue(resp.NewError("ERR internal error"))
	}
}

func (c *Conn) handleAuth(r command.Response) error {
	if c.d.Password == "" {
		return c.writeValue(resp.NewError("ERR Client sent AUTH, but no password is set"))
	}
	if r.AuthPassword != c.d.Password {
		return c.writeValue(resp.NewError("WRONGPASS invalid password"))
	}
	c.cs.Authenticated = true
	return c.writeValue(resp.OK)
}

func (c *Conn) handleTransaction(r command.Response) error {
	switch r.TxnOp {
	case command.TxnBegin:
		c.txn.Begin()
		return c.writeValue(resp.OK)

	case command.TxnDiscard:
		if !c.txn.Active() {
			return c.writeValue(resp.NewError("ERR DISCARD without MULTI"))
		}
		c.txn.Discard()
		return c.writeValue(resp.OK)

	case command.TxnExec:
		if !c.txn.Active() {
			return c.writeValue(resp.NewError("ERR EXEC without MULTI"))
		}
		results := c.txn.Exec(c.d, c.cs)
		return c.writeValue(resp.NewArray(results...))

	default:
		return c.writeValue(resp.NewError("ERR internal error"))
	}
}

// handleSubscribe performs the Hub mutation a subscribe/unsubscribe command
// only signaled the intent for, writes the resulting ack frames, then — if
// the connection is now subscribed to anything — multiplexes between
// further client frames and the Hub's delivery channel until it drops back
// out of subscribe mode or the client disconnects.
func (c *Conn) handleSubscribe(ctx context.Context, r command.Response) error {
	if c.subCh == nil {
		c.subCh = c.d.Hub.Register(c.cs.ClientID)
	}

	var acks []resp.Value
	switch r.SubOp {
	case command.SubOpSubscribe:
		acks = c.d.Hub.Subscribe(c.cs.ClientID, r.Channels)
	case command.SubOpUnsubscribe:
		acks = c.d.Hub.Unsubscribe(c.cs.ClientID, r.Channels)
	case command.SubOpPSubscribe:
		acks = c.d.Hub.PSubscribe(c.cs.ClientID, r.Channels)
	case command.SubOpPUnsubscribe:
		acks = c.d.Hub.PUnsubscribe(c.cs.ClientID, r.Channels)
	}
	for _, ack := range acks {
		if err := c.writeValue(ack); err != nil {
			return err
		}
	}

	// Every ack frame's trailing integer is the connection's total
	// subscription count after that op; the last ack reflects the final
	// count for the whole batch. An op that produced no acks leaves the mode
	// as it was.
	if len(acks) > 0 {
		c.cs.InSubscribeMode = lastAckCount(acks) > 0
	}
	if !c.cs.InSubscribeMode {
		return nil
	}

	return c.pumpSubscribeMode(ctx)
}

func lastAckCount(acks []resp.Value) int {
	if len(acks) == 0 {
		return 0
	}
	last := acks[len(acks)-1]
	if last.Kind != resp.Array || len(last.Elems) == 0 {
		return 0
	}
	countVal := last.Elems[len(last.Elems)-1]
	if countVal.Kind != resp.Integer {
		return 0
	}
	return int(countVal.Int)
}

// pumpSubscribeMode multiplexes between Hub deliveries (written as soon as
// they arrive) and further client frames (restricted to the subscribe-mode
// allowlist, enforced by command.Dispatcher.Execute) until the connection
// drops out of subscribe mode, the client disconnects, or ctx is canceled.
func (c *Conn) pumpSubscribeMode(ctx context.Context) error {
	type frame struct {
		argv [][]byte
		err  error
	}
	frames := make(chan frame, 1)

	readNext := func() {
		v, err := resp.Decode(c.r)
		if err != nil {
			frames <- frame{err: err}
			return
		}
		argv, ok := toArgv(v)
		if !ok {
			frames <- frame{argv: [][]byte{[]byte("PING")}}
			return
		}
		frames <- frame{argv: argv}
	}
	go readNext()

	for c.cs.InSubscribeMode {
		if c.r.Buffered() == 0 {
			if err := c.w.Flush(); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-c.subCh:
			if !ok {
				return nil
			}
			if err := c.writeValue(msg); err != nil {
				return err
			}

		case f := <-frames:
			if f.err != nil {
				if errors.Is(f.err, io.EOF) {
					return nil
				}
				return f.err
			}
			done, err := c.handle(ctx, f.argv)
			if err != nil || done {
				return err
			}
			if c.cs.InSubscribeMode {
				go readNext()
			}
		}
	}
	return nil
}

func (c *Conn) writeValue(v resp.Value) error {
	return resp.Encode(c.w, v)
}
