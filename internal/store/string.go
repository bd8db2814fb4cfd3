package store

import (
	"strconv"
	"time"
)

func newEntryString(val []byte) *entry {
	return &entry{kind: KindString, str: val}
}

// Get returns the string value at key, and whether it was present (a
// present-but-empty string is distinct from absent).
func (s *Store) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return nil, false, nil
	}
	if e.kind != KindString {
		return nil, false, ErrWrongType{}
	}
	return e.str, true, nil
}

// SetOpts controls SET's optional behavior (expiry, existence conditions).
type SetOpts struct {
	ExpiresAt     time.Time // zero means no expiry
	OnlyIfAbsent  bool      // NX
	OnlyIfPresent bool      // XX
	KeepTTL       bool      // don't clear an existing TTL
}

// Set stores val at key as a string, replacing whatever was there, subject
// to opts's existence conditions. ok is false when a condition prevented the
// write.
func (s *Store) Set(key string, val []byte, opts SetOpts) (ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	existing := s.get(key, now)
	if opts.OnlyIfAbsent && existing != nil {
		return false, nil
	}
	if opts.OnlyIfPresent && existing == nil {
		return false, nil
	}

	e := newEntryString(val)
	if opts.KeepTTL && existing != nil {
		e.expiresAt = existing.expiresAt
	} else if !opts.ExpiresAt.IsZero() {
		e.expiresAt = opts.ExpiresAt
	}
	s.m[key] = e
	s.markChanged(1)
	return true, nil
}

// GetSet atomically sets key to val and returns its previous string value,
// if any.
func (s *Store) GetSet(key string, val []byte) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e := s.get(key, now)
	var prev []byte
	var had bool
	if e != nil {
		if e.kind != KindString {
			return nil, false, ErrWrongType{}
		}
		prev, had = e.str, true
	}
	s.m[key] = newEntryString(val)
	s.markChanged(1)
	return prev, had, nil
}

// Append appends val to the string at key (creating it if missing) and
// returns the new length.
func (s *Store) Append(key string, val []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e := s.get(key, now)
	if e == nil {
		e = newEntryString(nil)
		s.m[key] = e
	} else if e.kind != KindString {
		return 0, ErrWrongType{}
	}
	e.str = append(e.str, val...)
	s.markChanged(1)
	return len(e.str), nil
}

// StrLen returns the length of the string at key, or 0 if missing.
func (s *Store) StrLen(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return 0, nil
	}
	if e.kind != KindString {
		return 0, ErrWrongType{}
	}
	return len(e.str), nil
}

// IncrBy adds delta to the integer value at key (treating a missing key as
// 0) and returns the new value. Returns ErrNotInteger if the existing value
// isn't a base-10 int64.
func (s *Store) IncrBy(key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e := s.get(key, now)
	var cur int64
	if e != nil {
		if e.kind != KindString {
			return 0, ErrWrongType{}
		}
		n, err := strconv.ParseInt(string(e.str), 10, 64)
		if err != nil {
			return 0, ErrNotInteger{}
		}
		cur = n
	}

	next := cur + delta
	if e == nil {
		e = newEntryString(nil)
		s.m[key] = e
	}
	e.str = []byte(strconv.FormatInt(next, 10))
	s.markChanged(1)
	return next, nil
}

// IncrByFloat adds delta to the float value at key (treating a missing key
// as 0) and returns the new value as a formatted string, per Redis's
// INCRBYFLOAT reply convention.
func (s *Store) IncrByFloat(key string, delta float64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e := s.get(key, now)
	var cur float64
	if e != nil {
		if e.kind != KindString {
			return nil, ErrWrongType{}
		}
		f, err := strconv.ParseFloat(string(e.str), 64)
		if err != nil {
			return nil, ErrNotFloat{}
		}
		cur = f
	}

	next := cur + delta
	out := strconv.FormatFloat(next, 'f', -1, 64)
	if e == nil {
		e = newEntryString(nil)
		s.m[key] = e
	}
	e.str = []byte(out)
	s.markChanged(1)
	return e.str, nil
}
