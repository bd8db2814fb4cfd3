package store

import (
	"path"
	"time"
)

// Type returns the Kind stored at key, or KindNone if it's missing.
func (s *Store) Type(key string) (Kind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return KindNone, nil
	}
	return e.kind, nil
}

// Exists reports whether key currently holds a live value.
func (s *Store) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(key, time.Now()) != nil
}

// Del removes each of keys, live or not, returning the count that were
// actually present.
func (s *Store) Del(keys ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var removed int
	for _, k := range keys {
		if s.get(k, now) != nil {
			delete(s.m, k)
			removed++
		}
	}
	if removed > 0 {
		s.markChanged(removed)
	}
	return removed
}

// TTL returns the remaining time to live for key. The returned bool is false
// if key doesn't exist; a zero Duration with a true bool means key exists
// but has no expiration set.
func (s *Store) TTL(key string) (time.Duration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return 0, false, nil
	}
	if !e.hasExpiry() {
		return 0, true, nil
	}
	d := time.Until(e.expiresAt)
	if d <= 0 {
		// a key reaching its deadline right now still has an expiration;
		// zero stays reserved for "no expiration set".
		d = time.Nanosecond
	}
	return d, true, nil
}

// Expire sets key's expiration to now+d, returning whether key existed.
func (s *Store) Expire(key string, d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return false
	}
	e.expiresAt = time.Now().Add(d)
	s.markChanged(1)
	return true
}

// ExpireAt sets key's expiration to an absolute time, returning whether key
// existed.
func (s *Store) ExpireAt(key string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return false
	}
	e.expiresAt = at
	s.markChanged(1)
	return true
}

// Persist clears key's expiration, returning whether it had one to clear.
func (s *Store) Persist(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil || !e.hasExpiry() {
		return false
	}
	e.expiresAt = time.Time{}
	s.markChanged(1)
	return true
}

// Rename moves the value at src to dst, overwriting dst if present, and
// reports whether src existed.
func (s *Store) Rename(src, dst string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(src, time.Now())
	if e == nil {
		return false
	}
	delete(s.m, src)
	s.m[dst] = e
	s.markChanged(1)
	return true
}

// Keys returns every live key whose name matches pattern, using path.Match
// shell-glob syntax (`*`, `?`, `[...]`).
func (s *Store) Keys(pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var out []string
	for k, e := range s.m {
		if e.expired(now) {
			continue
		}
		ok, err := path.Match(pattern, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, k)
		}
	}
	return out, nil
}

// DBSize returns the number of live keys, identically to Size.
func (s *Store) DBSize() int {
	return s.Size()
}

// FlushDB removes every key, identically to Flush.
func (s *Store) FlushDB() {
	s.Flush()
}
