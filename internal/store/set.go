package store

import (
	"time"

	"github.com/mediocregopher/tiniredis/mrand"
)

func newEntrySet() *entry {
	return &entry{kind: KindSet, set: make(map[string]struct{})}
}

func (s *Store) getOrCreateSet(key string, now time.Time) (*entry, error) {
	e := s.get(key, now)
	if e == nil {
		e = newEntrySet()
		s.m[key] = e
		return e, nil
	}
	if e.kind != KindSet {
		return nil, ErrWrongType{}
	}
	return e, nil
}

// SAdd inserts members into the set at key, creating it if missing, and
// returns the count actually inserted (members already present don't count).
func (s *Store) SAdd(key string, members ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.getOrCreateSet(key, time.Now())
	if err != nil {
		return 0, err
	}

	var added int
	for _, m := range members {
		if _, ok := e.set[m]; !ok {
			e.set[m] = struct{}{}
			added++
		}
	}
	if added > 0 {
		s.markChanged(1)
	}
	return added, nil
}

// SRem removes members from the set at key, returning the count actually
// removed. The key is deleted if the set becomes empty.
func (s *Store) SRem(key string, members ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return 0, nil
	}
	if e.kind != KindSet {
		return 0, ErrWrongType{}
	}

	var removed int
	for _, m := range members {
		if _, ok := e.set[m]; ok {
			delete(e.set, m)
			removed++
		}
	}
	if removed > 0 {
		s.markChanged(1)
	}
	s.deleteIfEmpty(key, e)
	return removed, nil
}

// SCard returns the cardinality of the set at key, or 0 if missing.
func (s *Store) SCard(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return 0, nil
	}
	if e.kind != KindSet {
		return 0, ErrWrongType{}
	}
	return len(e.set), nil
}

// SMembers returns every member of the set at key.
func (s *Store) SMembers(key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return nil, nil
	}
	if e.kind != KindSet {
		return nil, ErrWrongType{}
	}

	out := make([]string, 0, len(e.set))
	for m := range e.set {
		out = append(out, m)
	}
	return out, nil
}

// SIsMember reports whether member is in the set at key.
func (s *Store) SIsMember(key, member string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return false, nil
	}
	if e.kind != KindSet {
		return false, ErrWrongType{}
	}
	_, ok := e.set[member]
	return ok, nil
}

// SPop removes and returns up to count random members from the set at key.
func (s *Store) SPop(key string, count int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return nil, nil
	}
	if e.kind != KindSet {
		return nil, ErrWrongType{}
	}

	members := make([]string, 0, len(e.set))
	for m := range e.set {
		members = append(members, m)
	}
	if count > len(members) {
		count = len(members)
	}

	mrand.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
	out := members[:count]
	for _, m := range out {
		delete(e.set, m)
	}
	if len(out) > 0 {
		s.markChanged(1)
	}
	s.deleteIfEmpty(key, e)
	return out, nil
}

// SRandMember returns up to count distinct random members of the set at key,
// without removing them.
func (s *Store) SRandMember(key string, count int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return nil, nil
	}
	if e.kind != KindSet {
		return nil, ErrWrongType{}
	}

	members := make([]string, 0, len(e.set))
	for m := range e.set {
		members = append(members, m)
	}
	if count > len(members) {
		count = len(members)
	}
	mrand.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
	return members[:count], nil
}
