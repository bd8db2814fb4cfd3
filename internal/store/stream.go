package store

import (
	"time"
)

// StreamID is a (ms, seq) pair, ordered lexicographically: ms first, then
// seq. The zero value, 0-0, is never a valid entry id.
type StreamID struct {
	Ms  uint64
	Seq uint64
}

// Less reports whether id sorts before other.
func (id StreamID) Less(other StreamID) bool {
	if id.Ms != other.Ms {
		return id.Ms < other.Ms
	}
	return id.Seq < other.Seq
}

// IsZero reports whether id is the reserved 0-0 sentinel.
func (id StreamID) IsZero() bool {
	return id.Ms == 0 && id.Seq == 0
}

// StreamEntry is a single appended record: an id plus its field/value pairs,
// in insertion order.
type StreamEntry struct {
	ID     StreamID
	Fields []StreamField
}

// StreamField is one field/value pair of a stream entry.
type StreamField struct {
	Field string
	Value []byte
}

// stream holds entries in strictly ascending id order (append-only, so a
// plain growing slice suffices; lookups by id range scan it in order).
type stream struct {
	entries []StreamEntry
	topID   StreamID
}

func newStream() *stream {
	return &stream{}
}

func (st *stream) len() int {
	if st == nil {
		return 0
	}
	return len(st.entries)
}

func newEntryStream() *entry {
	return &entry{kind: KindStream, stream: newStream()}
}

func (s *Store) getOrCreateStream(key string, now time.Time) (*entry, error) {
	e := s.get(key, now)
	if e == nil {
		e = newEntryStream()
		s.m[key] = e
		return e, nil
	}
	if e.kind != KindStream {
		return nil, ErrWrongType{}
	}
	return e, nil
}

// ErrInvalidStreamID is returned when an XADD id is ≤ the stream's current
// top id, or is the reserved 0-0 sentinel.
type ErrInvalidStreamID struct{}

func (ErrInvalidStreamID) Error() string {
	return "ERR The ID specified in XADD is equal or smaller than the target stream top item"
}

// XAdd appends fields under id to the stream at key, creating the stream if
// missing. id must already be fully resolved (`*`/`ms-*` generation happens
// in the command layer, which needs the current top id to generate `ms-*`
// under the same lock — see XTopIDLocked). Returns the stored id.
func (s *Store) XAdd(key string, id StreamID, fields []StreamField) (StreamID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.xAddLocked(key, id, fields)
}

func (s *Store) xAddLocked(key string, id StreamID, fields []StreamField) (StreamID, error) {
	if id.IsZero() {
		return StreamID{}, ErrInvalidStreamID{}
	}

	e, err := s.getOrCreateStream(key, time.Now())
	if err != nil {
		return StreamID{}, err
	}
	if !e.stream.topID.Less(id) && len(e.stream.entries) > 0 {
		return StreamID{}, ErrInvalidStreamID{}
	}

	e.stream.entries = append(e.stream.entries, StreamEntry{ID: id, Fields: fields})
	e.stream.topID = id
	s.markChanged(1)
	return id, nil
}

// XAddLocked is XAdd's lock-free variant, for use inside WithLock.
func (s *Store) XAddLocked(key string, id StreamID, fields []StreamField) (StreamID, error) {
	return s.xAddLocked(key, id, fields)
}

// XTopID returns the current top id of the stream at key, and whether the
// stream exists and is non-empty.
func (s *Store) XTopID(key string) (StreamID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.xTopIDLocked(key)
}

func (s *Store) xTopIDLocked(key string) (StreamID, bool, error) {
	e := s.get(key, time.Now())
	if e == nil {
		return StreamID{}, false, nil
	}
	if e.kind != KindStream {
		return StreamID{}, false, ErrWrongType{}
	}
	if len(e.stream.entries) == 0 {
		return StreamID{}, false, nil
	}
	return e.stream.topID, true, nil
}

// XTopIDLocked is XTopID's lock-free variant, for use inside WithLock — the
// command layer calls this to resolve a `*`/`ms-*` XADD id before calling
// XAddLocked, so the observe-then-generate-then-insert sequence is atomic.
func (s *Store) XTopIDLocked(key string) (StreamID, bool, error) {
	return s.xTopIDLocked(key)
}

// XLen returns the number of entries in the stream at key, or 0 if missing.
func (s *Store) XLen(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return 0, nil
	}
	if e.kind != KindStream {
		return 0, ErrWrongType{}
	}
	return e.stream.len(), nil
}

// XRange returns entries with id in [start, end], in ascending id order;
// empty if start > end.
func (s *Store) XRange(key string, start, end StreamID) ([]StreamEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return nil, nil
	}
	if e.kind != KindStream {
		return nil, ErrWrongType{}
	}
	if end.Less(start) {
		return nil, nil
	}

	var out []StreamEntry
	for _, ent := range e.stream.entries {
		if ent.ID.Less(start) {
			continue
		}
		if end.Less(ent.ID) {
			break
		}
		out = append(out, ent)
	}
	return out, nil
}

// XReadAfter returns entries strictly after id (exclusive), in ascending
// order — the core of both XREAD and the blocking-XREAD reattempt loop.
func (s *Store) XReadAfter(key string, id StreamID) ([]StreamEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.xReadAfterLocked(key, id)
}

func (s *Store) xReadAfterLocked(key string, id StreamID) ([]StreamEntry, error) {
	e := s.get(key, time.Now())
	if e == nil {
		return nil, nil
	}
	if e.kind != KindStream {
		return nil, ErrWrongType{}
	}

	var out []StreamEntry
	for _, ent := range e.stream.entries {
		if id.Less(ent.ID) {
			out = append(out, ent)
		}
	}
	return out, nil
}

// WithLock runs fn with the store's exclusive lock held, for callers (XADD's
// id resolution, the blocking-XREAD re-check) that need several store
// operations to appear as one atomic step. fn must only call the *Locked
// helpers or otherwise avoid re-entering the lock.
func (s *Store) WithLock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// XReadAfterLocked is XReadAfter's lock-free variant, for use inside
// WithLock.
func (s *Store) XReadAfterLocked(key string, id StreamID) ([]StreamEntry, error) {
	return s.xReadAfterLocked(key, id)
}
