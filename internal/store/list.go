package store

import (
	cllist "container/list"
	"time"
)

// listWrap wraps container/list.List to give O(1) push/pop at both ends
// while keeping LRANGE's index-based access reasonably simple.
type listWrap struct {
	l *cllist.List
}

func newList() *listWrap {
	return &listWrap{l: cllist.New()}
}

func (lw *listWrap) len() int {
	if lw == nil || lw.l == nil {
		return 0
	}
	return lw.l.Len()
}

func (lw *listWrap) pushHead(vals ...[]byte) {
	for _, v := range vals {
		lw.l.PushFront(v)
	}
}

func (lw *listWrap) pushTail(vals ...[]byte) {
	for _, v := range vals {
		lw.l.PushBack(v)
	}
}

func (lw *listWrap) popHead(n int) [][]byte {
	return lw.pop(n, true)
}

func (lw *listWrap) popTail(n int) [][]byte {
	return lw.pop(n, false)
}

func (lw *listWrap) pop(n int, head bool) [][]byte {
	var out [][]byte
	for i := 0; i < n; i++ {
		var e *cllist.Element
		if head {
			e = lw.l.Front()
		} else {
			e = lw.l.Back()
		}
		if e == nil {
			break
		}
		lw.l.Remove(e)
		out = append(out, e.Value.([]byte))
	}
	return out
}

// slice returns every element, head to tail.
func (lw *listWrap) slice() [][]byte {
	out := make([][]byte, 0, lw.len())
	for e := lw.l.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.([]byte))
	}
	return out
}

func newEntryList() *entry {
	return &entry{kind: KindList, list: newList()}
}

// getOrCreateList returns the live list entry at key, creating an empty one
// if key is missing, or returning ErrWrongType if key holds a non-list.
// Caller must hold s.mu.
func (s *Store) getOrCreateList(key string, now time.Time) (*entry, error) {
	e := s.get(key, now)
	if e == nil {
		e = newEntryList()
		s.m[key] = e
		return e, nil
	}
	if e.kind != KindList {
		return nil, ErrWrongType{}
	}
	return e, nil
}

// LPushVals inserts each of vals, in turn, at the head of the list at key
// (so multiple values end up in reverse argument order), creating the list
// if missing. Returns the new length.
func (s *Store) LPushVals(key string, vals [][]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.getOrCreateList(key, time.Now())
	if err != nil {
		return 0, err
	}
	e.list.pushHead(vals...)
	s.markChanged(1)
	return e.list.len(), nil
}

// RPushVals inserts each of vals, in turn, at the tail of the list at key.
func (s *Store) RPushVals(key string, vals [][]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.getOrCreateList(key, time.Now())
	if err != nil {
		return 0, err
	}
	e.list.pushTail(vals...)
	s.markChanged(1)
	return e.list.len(), nil
}

// LPop pops up to count elements from the head of the list at key. A
// negative or zero count pops nothing and returns nil. The caller (the
// command layer) is responsible for distinguishing "count given" from
// "count omitted" since that changes the reply shape (single bulk vs array).
func (s *Store) LPop(key string, count int) ([][]byte, error) {
	return s.pop(key, count, true)
}

// RPop is LPop's tail-popping counterpart.
func (s *Store) RPop(key string, count int) ([][]byte, error) {
	return s.pop(key, count, false)
}

func (s *Store) pop(key string, count int, head bool) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return nil, nil
	}
	if e.kind != KindList {
		return nil, ErrWrongType{}
	}

	var out [][]byte
	if head {
		out = e.list.popHead(count)
	} else {
		out = e.list.popTail(count)
	}
	if len(out) > 0 {
		s.markChanged(1)
	}
	s.deleteIfEmpty(key, e)
	return out, nil
}

// LLen returns the length of the list at key, or 0 if missing.
func (s *Store) LLen(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return 0, nil
	}
	if e.kind != KindList {
		return 0, ErrWrongType{}
	}
	return e.list.len(), nil
}

// LRange returns the elements of the list at key between start and stop
// (inclusive), using Redis's index rules: negative indices count from the
// end, stop is clamped to len-1, and an empty slice is returned if
// start >= len or start > stop.
func (s *Store) LRange(key string, start, stop int) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return nil, nil
	}
	if e.kind != KindList {
		return nil, ErrWrongType{}
	}

	all := e.list.slice()
	start, stop, ok := clampRange(start, stop, len(all))
	if !ok {
		return nil, nil
	}
	return all[start : stop+1], nil
}

// clampRange applies Redis's LRANGE/ZRANGE index normalization to [start,
// stop] over a sequence of the given length, returning ok=false when the
// resulting range is empty.
func clampRange(start, stop, length int) (int, int, bool) {
	if length == 0 {
		return 0, 0, false
	}
	if start < 0 {
		start += length
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += length
		if stop < 0 {
			stop = -1
		}
	}
	if stop >= length {
		stop = length - 1
	}
	if start >= length || start > stop {
		return 0, 0, false
	}
	return start, stop, true
}
