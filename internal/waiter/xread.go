package waiter

import (
	"sync"
	"time"

	"github.com/mediocregopher/tiniredis/internal/store"
)

// StreamQuery is one (key, exclusive-start-id) pair of a blocking XREAD.
type StreamQuery struct {
	Key   string
	Start store.StreamID
}

// StreamResult is one stream's worth of newly-visible entries.
type StreamResult struct {
	Key     string
	Entries []store.StreamEntry
}

// XReadResult is delivered exactly once on a blocking-XREAD waiter's
// channel: either the streams with new data (never an empty Results slice),
// or TimedOut.
type XReadResult struct {
	Results  []StreamResult
	TimedOut bool
}

type xreadWaiterEntry struct {
	streams []StreamQuery
	ch      chan XReadResult
}

// XReadQueue implements the blocking-XREAD waiter list described alongside
// PopQueue: a waiter names several streams at once, and is served as soon
// as any one of them has data past its start id.
type XReadQueue struct {
	s *store.Store

	mu      sync.Mutex
	waiters []*xreadWaiterEntry
}

// NewXReadQueue returns an XReadQueue operating against s.
func NewXReadQueue(s *store.Store) *XReadQueue {
	return &XReadQueue{s: s}
}

// Wait enqueues a waiter across streams and returns a channel delivering
// one XReadResult: newly visible entries, or TimedOut after d (0 means wait
// forever). Like PopQueue.Wait, it tries an immediate read first so a
// caller never blocks.
func (q *XReadQueue) Wait(streams []StreamQuery, d time.Duration) <-chan XReadResult {
	ch := make(chan XReadResult, 1)
	w := &xreadWaiterEntry{streams: streams, ch: ch}

	q.mu.Lock()
	q.waiters = append(q.waiters, w)
	q.mu.Unlock()

	q.tryServe(w)

	if d > 0 {
		time.AfterFunc(d, func() { q.expire(w) })
	}
	return ch
}

func (q *XReadQueue) expire(w *xreadWaiterEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, ww := range q.waiters {
		if ww == w {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			w.ch <- XReadResult{TimedOut: true}
			return
		}
	}
}

// Notify is called after an XADD completes, naming the stream key that was
// appended to; it re-checks every waiter whose stream set contains that
// key, serving (and removing) any whose read is now non-empty.
func (q *XReadQueue) Notify(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := 0; i < len(q.waiters); {
		w := q.waiters[i]
		if !waiterWantsKey(w, key) {
			i++
			continue
		}
		if q.serveLocked(w) {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			continue
		}
		i++
	}
}

func waiterWantsKey(w *xreadWaiterEntry, key string) bool {
	for _, sq := range w.streams {
		if sq.Key == key {
			return true
		}
	}
	return false
}

// tryServe attempts to serve w immediately (used right after enqueueing, to
// cover data that arrived between the read in the command handler and the
// waiter's registration) and removes it from the queue if served.
func (q *XReadQueue) tryServe(w *xreadWaiterEntry) bool {
	served := false
	q.s.WithLock(func() {
		served = readAllLocked(q.s, w)
	})
	if served {
		q.mu.Lock()
		for i, ww := range q.waiters {
			if ww == w {
				q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
				break
			}
		}
		q.mu.Unlock()
	}
	return served
}

// serveLocked is called with q.mu held; it takes the store lock itself.
func (q *XReadQueue) serveLocked(w *xreadWaiterEntry) bool {
	served := false
	q.s.WithLock(func() {
		served = readAllLocked(q.s, w)
	})
	return served
}

// readAllLocked reads every stream w is watching (the store lock must
// already be held) and, if any have new entries, sends the combined result
// and reports true.
func readAllLocked(s *store.Store, w *xreadWaiterEntry) bool {
	var results []StreamResult
	for _, sq := range w.streams {
		entries, err := s.XReadAfterLocked(sq.Key, sq.Start)
		if err != nil || len(entries) == 0 {
			continue
		}
		results = append(results, StreamResult{Key: sq.Key, Entries: entries})
	}
	if len(results) == 0 {
		return false
	}
	w.ch <- XReadResult{Results: results}
	return true
}
