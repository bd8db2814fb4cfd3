package command

import (
	"fmt"

	"github.com/mediocregopher/tiniredis/internal/resp"
)

// Kind discriminates how the connection loop should handle a Response.
type Kind int

const (
	// KindValue carries an immediate resp.Value to send.
	KindValue Kind = iota
	// KindBlock carries a channel the connection loop selects on (alongside
	// its own shutdown/cancellation) for a value that arrives later.
	KindBlock
	// KindSubscribe tells the connection loop to enter (or stay in)
	// subscribe mode and register/unregister the given channels.
	KindSubscribe
	// KindTransaction tells the connection loop to enter (or act on) MULTI/
	// EXEC/DISCARD state; Transaction carries which.
	KindTransaction
	// KindAuth tells the connection loop to evaluate an AUTH attempt
	// against the configured password.
	KindAuth
	// KindShutdown tells the server controller to run the same shutdown
	// path SIGINT/SIGTERM trigger, per SPEC_FULL's SHUTDOWN [NOSAVE].
	KindShutdown
)

// TransactionOp names the MULTI/EXEC/DISCARD action a KindTransaction
// Response represents.
type TransactionOp int

const (
	TxnBegin TransactionOp = iota
	TxnExec
	TxnDiscard
)

// SubscribeOp names the subscribe/unsubscribe action a KindSubscribe
// Response represents, and whether it targets literal channels or glob
// patterns.
type SubscribeOp int

const (
	SubOpSubscribe SubscribeOp = iota
	SubOpUnsubscribe
	SubOpPSubscribe
	SubOpPUnsubscribe
)

// Response is the discriminated union every command handler returns.
type Response struct {
	Kind Kind

	Value resp.Value      // KindValue
	Block <-chan resp.Value // KindBlock

	SubOp    SubscribeOp // KindSubscribe
	Channels []string    // KindSubscribe

	TxnOp TransactionOp // KindTransaction

	AuthPassword string // KindAuth

	ShutdownNoSave bool // KindShutdown
}

func valueResponse(v resp.Value) Response {
	return Response{Kind: KindValue, Value: v}
}

func okResponse() Response {
	return valueResponse(resp.OK)
}

func intResponse(n int64) Response {
	return valueResponse(resp.NewInteger(n))
}

func bulkResponse(b []byte) Response {
	return valueResponse(resp.NewBulkString(b))
}

func bulkStringResponse(s string) Response {
	return valueResponse(resp.NewBulkStringFromString(s))
}

func nullBulkResponse() Response {
	return valueResponse(resp.NewNullBulkString())
}

func nullArrayResponse() Response {
	return valueResponse(resp.NewNullArray())
}

func arrayResponse(vs ...resp.Value) Response {
	return valueResponse(resp.NewArray(vs...))
}

func errResponse(msg string) Response {
	return valueResponse(resp.NewError(msg))
}

func errResponsef(format string, a ...interface{}) Response {
	return valueResponse(resp.NewError(fmt.Sprintf(format, a...)))
}

func bytesArrayResponse(items [][]byte) Response {
	vs := make([]resp.Value, len(items))
	for i, it := range items {
		vs[i] = resp.NewBulkString(it)
	}
	return arrayResponse(vs...)
}

func stringsArrayResponse(items []string) Response {
	vs := make([]resp.Value, len(items))
	for i, it := range items {
		vs[i] = resp.NewBulkStringFromString(it)
	}
	return arrayResponse(vs...)
}
