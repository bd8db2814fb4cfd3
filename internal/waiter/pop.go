// Package waiter implements the three asynchronous coordination points
// described by the store's blocking/fan-out commands: the blocking-pop
// queue (BLPOP/BRPOP), the blocking-XREAD queue, and the pub/sub hub.
//
// Each is built the way the store itself is: one mutex guarding a small,
// short-lived critical section, never held across a channel send that might
// block forever. Where the originating design speaks of a single actor task
// draining an event channel, that's this package's mutex — Go's "one
// goroutine, one lock" idiom gives the same serialization without needing a
// dedicated goroutine per coordination point.
package waiter

import (
	"sync"
	"time"

	"github.com/mediocregopher/tiniredis/internal/store"
)

// Direction selects which end of a list a blocking pop removes from.
type Direction int

const (
	Head Direction = iota
	Tail
)

// PopResult is delivered exactly once on a blocking-pop waiter's channel.
type PopResult struct {
	Key      string
	Element  []byte
	TimedOut bool
}

type popWaiterEntry struct {
	key string
	dir Direction
	ch  chan PopResult
}

// PopQueue implements the BLPOP/BRPOP waiter list: FIFO per key, served by
// the waiter's own direction rather than the pusher's, per the ordering
// guarantee in the store's blocking-pop contract.
type PopQueue struct {
	s *store.Store

	mu      sync.Mutex
	waiters []*popWaiterEntry
}

// NewPopQueue returns a PopQueue operating against s.
func NewPopQueue(s *store.Store) *PopQueue {
	return &PopQueue{s: s}
}

// Wait enqueues a waiter for key (served in the given Direction) and
// returns a channel that will receive exactly one PopResult: either a
// popped element, or TimedOut after d elapses. d == 0 means wait forever
// (no timer is armed). The queue is checked immediately in case key
// already has data, so Wait never blocks its caller.
func (q *PopQueue) Wait(key string, dir Direction, d time.Duration) <-chan PopResult {
	ch := make(chan PopResult, 1)
	w := &popWaiterEntry{key: key, dir: dir, ch: ch}

	q.mu.Lock()
	q.waiters = append(q.waiters, w)
	q.mu.Unlock()

	q.drainKey(key)

	if d > 0 {
		time.AfterFunc(d, func() { q.expire(w) })
	}
	return ch
}

func (q *PopQueue) expire(w *popWaiterEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, ww := range q.waiters {
		if ww == w {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			w.ch <- PopResult{TimedOut: true}
			return
		}
	}
}

// Notify is called after a list push completes, naming the key that was
// pushed to; it serves FIFO waiters on that key for as long as pops keep
// succeeding.
func (q *PopQueue) Notify(key string) {
	q.drainKey(key)
}

func (q *PopQueue) drainKey(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		idx := -1
		for i, w := range q.waiters {
			if w.key == key {
				idx = i
				break
			}
		}
		if idx == -1 {
			return
		}

		w := q.waiters[idx]
		var popped [][]byte
		var err error
		if w.dir == Head {
			popped, err = q.s.LPop(key, 1)
		} else {
			popped, err = q.s.RPop(key, 1)
		}
		if err != nil || len(popped) == 0 {
			return
		}

		q.waiters = append(q.waiters[:idx], q.waiters[idx+1:]...)
		w.ch <- PopResult{Key: key, Element: popped[0]}
	}
}
