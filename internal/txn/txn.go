// Package txn implements the per-connection MULTI/EXEC/DISCARD queuing
// state machine (§4.7): queue raw command argument arrays while a
// connection is between MULTI and EXEC/DISCARD, then replay them in order
// against a Dispatcher on EXEC.
package txn

import (
	"github.com/mediocregopher/tiniredis/internal/command"
	"github.com/mediocregopher/tiniredis/internal/resp"
)

// Queue holds one connection's pending MULTI block. The zero value is an
// empty, inactive queue.
type Queue struct {
	active bool
	cmds   [][][]byte
}

// Begin starts queuing; a MULTI received while already queuing just resets
// to an empty queue rather than nesting (Redis itself rejects nested MULTI,
// but spec.md's transaction design doesn't call that out as an error case,
// so the simpler reset-and-continue behavior is used here).
func (q *Queue) Begin() {
	q.active = true
	q.cmds = q.cmds[:0]
}

// Active reports whether a MULTI is currently open on the connection.
func (q *Queue) Active() bool {
	return q.active
}

// Queue appends argv to the pending batch.
func (q *Queue) Queue(argv [][]byte) {
	q.cmds = append(q.cmds, argv)
}

// Discard abandons the queue.
func (q *Queue) Discard() {
	q.active = false
	q.cmds = nil
}

// Exec replays every queued command in order against d, returning one
// resp.Value per command. A queued command whose Response would be
// anything other than an immediate value (blocking, subscribe-mode, or a
// nested transaction op) is rejected in its slot rather than attempted,
// per §4.7's "Unsupported operation in MULTI block" rule. The queue is
// cleared and deactivated regardless of outcome.
func (q *Queue) Exec(d *command.Dispatcher, cs *command.ConnState) []resp.Value {
	cmds := q.cmds
	q.Discard()

	out := make([]resp.Value, len(cmds))
	for i, argv := range cmds {
		r := d.Execute(cs, argv)
		switch r.Kind {
		case command.KindValue:
			out[i] = r.Value
		default:
			out[i] = resp.NewError("ERR Unsupported operation in MULTI block")
		}
	}
	return out
}
