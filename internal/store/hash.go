package store

import "time"

func newEntryHash() *entry {
	return &entry{kind: KindHash, hash: make(map[string]string)}
}

func (s *Store) getOrCreateHash(key string, now time.Time) (*entry, error) {
	e := s.get(key, now)
	if e == nil {
		e = newEntryHash()
		s.m[key] = e
		return e, nil
	}
	if e.kind != KindHash {
		return nil, ErrWrongType{}
	}
	return e, nil
}

// HSet sets each field/value pair in fields on the hash at key, creating it
// if missing, and returns the count of fields that were newly created.
func (s *Store) HSet(key string, fields map[string]string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.getOrCreateHash(key, time.Now())
	if err != nil {
		return 0, err
	}

	var created int
	for f, v := range fields {
		if _, exists := e.hash[f]; !exists {
			created++
		}
		e.hash[f] = v
	}
	s.markChanged(1)
	return created, nil
}

// HGet returns the value of field in the hash at key, and whether it was
// present.
func (s *Store) HGet(key, field string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return "", false, nil
	}
	if e.kind != KindHash {
		return "", false, ErrWrongType{}
	}
	v, ok := e.hash[field]
	return v, ok, nil
}

// HDel removes fields from the hash at key, returning the count actually
// removed. The key is deleted if the hash becomes empty.
func (s *Store) HDel(key string, fields ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return 0, nil
	}
	if e.kind != KindHash {
		return 0, ErrWrongType{}
	}

	var removed int
	for _, f := range fields {
		if _, ok := e.hash[f]; ok {
			delete(e.hash, f)
			removed++
		}
	}
	if removed > 0 {
		s.markChanged(1)
	}
	s.deleteIfEmpty(key, e)
	return removed, nil
}

// HGetAll returns a copy of every field/value pair in the hash at key.
func (s *Store) HGetAll(key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return nil, nil
	}
	if e.kind != KindHash {
		return nil, ErrWrongType{}
	}

	out := make(map[string]string, len(e.hash))
	for f, v := range e.hash {
		out[f] = v
	}
	return out, nil
}

// HLen returns the number of fields in the hash at key, or 0 if missing.
func (s *Store) HLen(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return 0, nil
	}
	if e.kind != KindHash {
		return 0, ErrWrongType{}
	}
	return len(e.hash), nil
}

// HExists reports whether field exists in the hash at key.
func (s *Store) HExists(key, field string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return false, nil
	}
	if e.kind != KindHash {
		return false, ErrWrongType{}
	}
	_, ok := e.hash[field]
	return ok, nil
}
