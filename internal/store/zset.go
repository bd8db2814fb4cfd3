package store

import (
	"sort"
	"time"
)

// zset is a sorted set held as a single member->score map; no separate
// ordered index is kept. Ranking/range queries sort the member list on
// demand rather than maintaining a skiplist, which keeps the implementation
// simple at the dataset sizes a single-process, single-lock store is meant
// for.
type zset struct {
	scores map[string]float64
}

func newZSet() *zset {
	return &zset{scores: make(map[string]float64)}
}

func (z *zset) len() int {
	if z == nil {
		return 0
	}
	return len(z.scores)
}

// ZMember is a single (member, score) pair returned by ZRange.
type ZMember struct {
	Member string
	Score  float64
}

// sorted returns every member ordered by score ascending, ties broken
// lexicographically by member name (matching Redis's ZSET ordering).
func (z *zset) sorted() []ZMember {
	out := make([]ZMember, 0, len(z.scores))
	for m, sc := range z.scores {
		out = append(out, ZMember{Member: m, Score: sc})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Member < out[j].Member
	})
	return out
}

func newEntryZSet() *entry {
	return &entry{kind: KindZSet, zset: newZSet()}
}

func (s *Store) getOrCreateZSet(key string, now time.Time) (*entry, error) {
	e := s.get(key, now)
	if e == nil {
		e = newEntryZSet()
		s.m[key] = e
		return e, nil
	}
	if e.kind != KindZSet {
		return nil, ErrWrongType{}
	}
	return e, nil
}

// ZAdd sets the score of each member in scores, creating the sorted set at
// key if missing. Returns the count of members that were newly added (not
// merely re-scored).
func (s *Store) ZAdd(key string, scores map[string]float64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.getOrCreateZSet(key, time.Now())
	if err != nil {
		return 0, err
	}

	var added int
	for m, sc := range scores {
		if _, exists := e.zset.scores[m]; !exists {
			added++
		}
		e.zset.scores[m] = sc
	}
	s.markChanged(1)
	return added, nil
}

// ZRem removes members from the sorted set at key, returning the count
// actually removed. The key is deleted if the set becomes empty.
func (s *Store) ZRem(key string, members ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return 0, nil
	}
	if e.kind != KindZSet {
		return 0, ErrWrongType{}
	}

	var removed int
	for _, m := range members {
		if _, ok := e.zset.scores[m]; ok {
			delete(e.zset.scores, m)
			removed++
		}
	}
	if removed > 0 {
		s.markChanged(1)
	}
	s.deleteIfEmpty(key, e)
	return removed, nil
}

// ZScore returns the score of member in the sorted set at key, and whether
// it was present.
func (s *Store) ZScore(key, member string) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return 0, false, nil
	}
	if e.kind != KindZSet {
		return 0, false, ErrWrongType{}
	}
	sc, ok := e.zset.scores[member]
	return sc, ok, nil
}

// ZCard returns the cardinality of the sorted set at key, or 0 if missing.
func (s *Store) ZCard(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return 0, nil
	}
	if e.kind != KindZSet {
		return 0, ErrWrongType{}
	}
	return e.zset.len(), nil
}

// ZRange returns members (with scores) between start and stop, using the
// same index normalization as LRANGE.
func (s *Store) ZRange(key string, start, stop int) ([]ZMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return nil, nil
	}
	if e.kind != KindZSet {
		return nil, ErrWrongType{}
	}

	all := e.zset.sorted()
	start, stop, ok := clampRange(start, stop, len(all))
	if !ok {
		return nil, nil
	}
	return all[start : stop+1], nil
}

// ZRank returns the 0-based ascending-score rank of member, and whether it
// was present.
func (s *Store) ZRank(key, member string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key, time.Now())
	if e == nil {
		return 0, false, nil
	}
	if e.kind != KindZSet {
		return 0, false, ErrWrongType{}
	}
	if _, ok := e.zset.scores[member]; !ok {
		return 0, false, nil
	}

	all := e.zset.sorted()
	for i, zm := range all {
		if zm.Member == member {
			return i, true, nil
		}
	}
	return 0, false, nil
}

// ZIncrBy adds delta to member's score (treating a missing member as score
// 0), creating the sorted set if missing, and returns the new score.
func (s *Store) ZIncrBy(key, member string, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.getOrCreateZSet(key, time.Now())
	if err != nil {
		return 0, err
	}
	e.zset.scores[member] += delta
	s.markChanged(1)
	return e.zset.scores[member], nil
}
