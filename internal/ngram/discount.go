package ngram

import (
	"pinyin/internal/ids"
)

// fallbackDiscount replaces a discount whose count-of-counts are too sparse
// to estimate.
const fallbackDiscount = 0.75

// Discount holds modified Kneser-Ney statistics for a bigram store,
// computed once from global count-of-counts.
//
// The estimate is
//
//	P(b|a) = max(c(a b) - D(c(a b)), 0) / c(a) + backoff(a) * cont(b)
type Discount[T ids.ID] struct {
	s *Store[T]
	// d[0] discounts continuation counts, d[1] bigram counts; index k is
	// the discount for count k+1, the last one covering 3 and above.
	d       [2][3]float64
	backoff []float64
	cont    []float64
}

// NewDiscount computes discounting statistics for s. sos is the
// sentence-start id, whose continuation count is its unigram count.
func NewDiscount[T ids.ID](s *Store[T], sos T) *Discount[T] {
	size := s.Len()
	// t[n][k]: number of types with count exactly k+1. left[b]: number of
	// distinct ids seen before b.
	var t [2][4]uint64
	left := make([]uint64, size)
	for a := range size {
		s.EachBigram(T(a), func(b T, c uint64) {
			if c <= 4 {
				t[1][c-1]++
			}
			if int(b) < size {
				left[b]++
			}
		})
	}
	if int(sos) < size {
		left[sos] = s.Unigram(sos)
	}

	var distinct uint64
	for w, c := range left {
		if c > 0 && c <= 4 {
			t[0][c-1]++
		}
		if T(w) != sos {
			distinct += c
		}
	}

	k := &Discount[T]{
		s:       s,
		backoff: make([]float64, size),
		cont:    make([]float64, size),
	}
	for n := range 2 {
		for i := range 3 {
			k.d[n][i] = estimate(t[n], i)
		}
	}
	if distinct == 0 {
		return k
	}

	var eps float64
	for i := range 3 {
		eps += k.d[0][i] * float64(t[0][i])
	}
	eps /= float64(distinct)

	var seen int
	for _, c := range left {
		if c > 0 {
			seen++
		}
	}

	for w := range size {
		if left[w] == 0 {
			continue
		}
		// Only successors seen one, two or three times feed the backoff.
		var buckets [3]uint64
		s.EachBigram(T(w), func(_ T, c uint64) {
			if c <= 3 {
				buckets[c-1]++
			}
		})
		if uni := s.Unigram(T(w)); uni > 0 {
			var b float64
			for i := range 3 {
				b += k.d[1][i] * float64(buckets[i])
			}
			k.backoff[w] = b / float64(uni)
		}
		u := (float64(left[w]) - k.d[0][bucket(left[w])]) / float64(distinct)
		k.cont[w] = u + eps/float64(seen)
	}
	return k
}

// estimate returns D_{i+1} = (i+1) - (i+2) Y t[i+1]/t[i] with
// Y = t[0] / (t[0] + 2 t[1]).
func estimate(t [4]uint64, i int) float64 {
	if t[i] == 0 || t[0]+2*t[1] == 0 {
		return fallbackDiscount
	}
	y := float64(t[0]) / float64(t[0]+2*t[1])
	d := float64(i+1) - float64(i+2)*y*float64(t[i+1])/float64(t[i])
	if d <= 0 || d >= float64(i+1) {
		return fallbackDiscount
	}
	return d
}

func bucket(c uint64) int {
	if c >= 3 {
		return 2
	}
	return int(c) - 1
}

// D returns the discount applied to a bigram count c. Zero for unseen
// bigrams.
func (k *Discount[T]) D(c uint64) float64 {
	if c == 0 {
		return 0
	}
	return k.d[1][bucket(c)]
}

// Prob returns the discounted probability of b after a given the bigram
// count bi (which may have been zeroed by the caller).
func (k *Discount[T]) Prob(a, b T, bi uint64) float64 {
	var p float64
	if uni := k.s.Unigram(a); uni > 0 {
		p = max(float64(bi)-k.D(bi), 0) / float64(uni)
	}
	if int(a) < len(k.backoff) && int(b) < len(k.cont) {
		p += k.backoff[a] * k.cont[b]
	}
	return p
}
