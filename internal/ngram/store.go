// Package ngram holds unigram, bigram and trigram count tables and their
// persisted form.
//
// A Store is built once, either by counting (Builder) or by decoding a
// dictionary file (LoadBigram, LoadTrigram), and is read-only afterwards.
package ngram

import (
	"pinyin/internal/ids"
)

// Store is a sparse n-gram count table keyed by ids of type T.
//
// Absent entries mean zero; stored bigram and trigram counts are always
// at least 1.
type Store[T ids.ID] struct {
	unigram []uint64
	total   uint64
	bigram  []map[T]uint64
	// trigram[a][b][c] is the count of a b c. Nil for bigram-only stores.
	trigram []map[T]map[T]uint64
}

func newStore[T ids.ID](size int, trigrams bool) *Store[T] {
	s := &Store[T]{
		unigram: make([]uint64, size),
		bigram:  make([]map[T]uint64, size),
	}
	if trigrams {
		s.trigram = make([]map[T]map[T]uint64, size)
	}
	return s
}

// Len returns the vocabulary size the store was built for.
func (s *Store[T]) Len() int { return len(s.unigram) }

// Total returns the sum of all unigram counts.
func (s *Store[T]) Total() uint64 { return s.total }

// HasTrigrams reports whether the store carries trigram counts.
func (s *Store[T]) HasTrigrams() bool { return s.trigram != nil }

// Unigram returns the count of id, 0 when id is out of range.
func (s *Store[T]) Unigram(id T) uint64 {
	if int(id) >= len(s.unigram) {
		return 0
	}
	return s.unigram[id]
}

// Bigram returns the count of a followed by b.
func (s *Store[T]) Bigram(a, b T) uint64 {
	if int(a) >= len(s.bigram) {
		return 0
	}
	return s.bigram[a][b]
}

// Successors returns the number of distinct ids observed after a.
func (s *Store[T]) Successors(a T) int {
	if int(a) >= len(s.bigram) {
		return 0
	}
	return len(s.bigram[a])
}

// Trigram returns the count of a b c.
func (s *Store[T]) Trigram(a, b, c T) uint64 {
	if int(a) >= len(s.trigram) {
		return 0
	}
	return s.trigram[a][b][c]
}

// EachBigram calls f for every stored bigram of a, in no particular order.
func (s *Store[T]) EachBigram(a T, f func(b T, count uint64)) {
	if int(a) >= len(s.bigram) {
		return
	}
	for b, c := range s.bigram[a] {
		f(b, c)
	}
}

// EachTrigram calls f for every stored continuation c of the pair a b.
func (s *Store[T]) EachTrigram(a, b T, f func(c T, count uint64)) {
	if int(a) >= len(s.trigram) {
		return
	}
	for c, n := range s.trigram[a][b] {
		f(c, n)
	}
}

// WithUnigrams returns a copy of s whose unigram counts are overridden by
// counts, growing the vocabulary if an id lies beyond Len. Bigram and
// trigram tables are shared with s.
func (s *Store[T]) WithUnigrams(counts map[T]uint64) *Store[T] {
	size := len(s.unigram)
	for id := range counts {
		if int(id) >= size {
			size = int(id) + 1
		}
	}
	out := &Store[T]{
		unigram: make([]uint64, size),
		bigram:  s.bigram,
		trigram: s.trigram,
	}
	copy(out.unigram, s.unigram)
	for id, c := range counts {
		out.unigram[id] = c
	}
	for _, c := range out.unigram {
		out.total += c
	}
	return out
}

func (s *Store[T]) setBigram(a, b T, c uint64) {
	if s.bigram[a] == nil {
		s.bigram[a] = make(map[T]uint64)
	}
	s.bigram[a][b] = c
}

func (s *Store[T]) setTrigram(a, b, c T, n uint64) {
	if s.trigram[a] == nil {
		s.trigram[a] = make(map[T]map[T]uint64)
	}
	inner := s.trigram[a][b]
	if inner == nil {
		inner = make(map[T]uint64)
		s.trigram[a][b] = inner
	}
	inner[c] = n
}

// Remap returns a store over a vocabulary of size ids where old id i becomes
// mapping[i]. Ids mapped to the invalid id are dropped together with every
// n-gram ending in them. In trigram stores a count-1 bigram is also dropped
// when its single continuation is, so that the continuation can always be
// written.
func (s *Store[T]) Remap(mapping []T, size int) *Store[T] {
	invalid := ids.Invalid[T]()
	valid := func(id T) (T, bool) {
		if int(id) >= len(mapping) || mapping[id] == invalid {
			return invalid, false
		}
		return mapping[id], true
	}

	out := newStore[T](size, s.HasTrigrams())
	for i := range s.Len() {
		a, ok := valid(T(i))
		if !ok {
			continue
		}
		out.unigram[a] = s.unigram[i]
		out.total += s.unigram[i]

		s.EachBigram(T(i), func(b T, c uint64) {
			nb, ok := valid(b)
			if !ok {
				return
			}
			var conts map[T]uint64
			if i < len(s.trigram) {
				conts = s.trigram[i][b]
			}
			if c == 1 {
				for third := range conts {
					if _, ok := valid(third); !ok {
						return
					}
				}
			}
			out.setBigram(a, nb, c)
			for third, n := range conts {
				if nc, ok := valid(third); ok {
					out.setTrigram(a, nb, nc, n)
				}
			}
		})
	}
	return out
}
