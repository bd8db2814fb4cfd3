// Package store implements the in-memory, typed key/value data model:
// strings, lists, sets, sorted sets, streams, geo indices (sorted sets under
// the hood), and hashes, each with optional expiration.
//
// A Store is a single exclusive lock guarding a plain Go map. Every exported
// method takes that lock for its own duration and releases it before
// returning; no method ever blocks on anything but the lock itself, so
// holding it is always momentary. Callers needing several stream operations
// to appear atomic (XADD's id resolution, the blocking-XREAD re-check) run
// them inside WithLock using the lock-free *Locked variants. MULTI/EXEC does
// not hold the lock across its batch: each queued command takes it on its
// own.
package store

import (
	"sync"
	"time"
)

// Kind identifies the Variant stored at a key.
type Kind int

// The Variants a key's value can hold.
const (
	KindNone Kind = iota
	KindString
	KindList
	KindSet
	KindZSet
	KindStream
	KindHash
)

// String renders a Kind the way TYPE reports it to clients.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindZSet:
		return "zset"
	case KindStream:
		return "stream"
	case KindHash:
		return "hash"
	default:
		return "none"
	}
}

// entry is a single stored value plus its optional expiration.
type entry struct {
	kind Kind

	str    []byte
	list   *listWrap
	set    map[string]struct{}
	zset   *zset
	stream *stream
	hash   map[string]string

	expiresAt time.Time // zero Time means no expiration
}

func (e *entry) hasExpiry() bool {
	return !e.expiresAt.IsZero()
}

func (e *entry) expired(now time.Time) bool {
	return e.hasExpiry() && now.After(e.expiresAt)
}

// Store is the process-wide, typed key/value map. Create one with New; the
// zero Store has no map and panics on its first write.
type Store struct {
	mu sync.Mutex
	m  map[string]*entry

	// changeCounter is bumped by every write that mutates the live dataset,
	// per SPEC_FULL's persistence trigger (§4.11); the server controller
	// reads and resets it via TakeChangeCount.
	changeCounter int64
}

// New returns an empty, ready-to-use Store.
func New() *Store {
	return &Store{m: make(map[string]*entry)}
}

func (s *Store) markChanged(n int) {
	s.changeCounter += int64(n)
}

// TakeChangeCount returns the number of mutations recorded since the last
// call to TakeChangeCount (or since creation), resetting the counter to 0.
func (s *Store) TakeChangeCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.changeCounter
	s.changeCounter = 0
	return n
}

// get returns the live entry at key, or nil if it's missing or expired. The
// caller must hold s.mu.
func (s *Store) get(key string, now time.Time) *entry {
	e, ok := s.m[key]
	if !ok {
		return nil
	}
	if e.expired(now) {
		delete(s.m, key)
		return nil
	}
	return e
}

// deleteIfEmpty removes key if its container Variant has become empty, per
// the store's "empty containers are deleted" invariant. The caller must
// hold s.mu.
func (s *Store) deleteIfEmpty(key string, e *entry) {
	empty := false
	switch e.kind {
	case KindList:
		empty = e.list.len() == 0
	case KindSet:
		empty = len(e.set) == 0
	case KindZSet:
		empty = e.zset.len() == 0
	case KindHash:
		empty = len(e.hash) == 0
	}
	if empty {
		delete(s.m, key)
	}
}

// Size returns the number of live keys.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sizeLocked(time.Now())
}

func (s *Store) sizeLocked(now time.Time) int {
	n := 0
	for _, e := range s.m {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

// Flush removes every key, live or not.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.m)
	s.m = make(map[string]*entry)
	s.markChanged(n)
}

// CleanupExpired sweeps the whole keyspace and removes every stale entry,
// returning the count removed. Correctness never depends on this running;
// it exists only to bound memory used by dead keys and to keep
// change-counter-driven snapshots from growing unboundedly stale.
func (s *Store) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var removed int
	for k, e := range s.m {
		if e.expired(now) {
			delete(s.m, k)
			removed++
		}
	}
	if removed > 0 {
		s.markChanged(removed)
	}
	return removed
}

// SnapshotEntry is one live key as captured by Snapshot, in the shape the
// RDB codec needs to serialize it. Only the three Variants the wire format
// supports (string/list/set) are represented; a persisted Kind is always one
// of those.
type SnapshotEntry struct {
	Key       string
	Kind      Kind
	Str       []byte
	List      [][]byte
	Set       []string
	ExpiresAt time.Time // zero means no expiry
}

// Snapshot returns every live key whose Variant the RDB format can
// represent (string, list, set), for the persistence trigger to serialize.
// SortedSet/Stream/Hash keys are intentionally omitted: the wire format's
// type flag only defines 0x00/0x01/0x02 (string/list/set), so there is
// nowhere to put them.
func (s *Store) Snapshot() []SnapshotEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	out := make([]SnapshotEntry, 0, len(s.m))
	for k, e := range s.m {
		if e.expired(now) {
			continue
		}
		se := SnapshotEntry{Key: k, Kind: e.kind, ExpiresAt: e.expiresAt}
		switch e.kind {
		case KindString:
			se.Str = append([]byte(nil), e.str...)
		case KindList:
			se.List = e.list.slice()
		case KindSet:
			se.Set = make([]string, 0, len(e.set))
			for m := range e.set {
				se.Set = append(se.Set, m)
			}
		default:
			continue
		}
		out = append(out, se)
	}
	return out
}

// LoadString directly installs a string value at key with an optional
// expiry, bypassing the change counter — used by the RDB loader, which
// shouldn't count a freshly loaded dataset as "changes" needing a re-save.
func (s *Store) LoadString(key string, val []byte, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = &entry{kind: KindString, str: val, expiresAt: expiresAt}
}

// LoadList is LoadString's list-flavored counterpart.
func (s *Store) LoadList(key string, vals [][]byte, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lw := newList()
	lw.pushTail(vals...)
	s.m[key] = &entry{kind: KindList, list: lw, expiresAt: expiresAt}
}

// LoadSet is LoadString's set-flavored counterpart.
func (s *Store) LoadSet(key string, members []string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	s.m[key] = &entry{kind: KindSet, set: set, expiresAt: expiresAt}
}

// ErrWrongType is returned when a command is applied to a key whose Variant
// is incompatible with it.
type ErrWrongType struct{}

func (ErrWrongType) Error() string {
	return "WRONGTYPE Operation against a key holding the wrong kind of value"
}

// ErrNotInteger is returned by INCR/DECR family operations against a string
// which isn't a base-10 int64.
type ErrNotInteger struct{}

func (ErrNotInteger) Error() string {
	return "value is not an integer or out of range"
}

// ErrNotFloat is returned by INCRBYFLOAT-family operations.
type ErrNotFloat struct{}

func (ErrNotFloat) Error() string {
	return "value is not a valid float"
}
