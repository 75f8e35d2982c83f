package ngram

import (
	"pinyin/internal/ids"
)

// Builder counts n-grams over a stream of ids. Feeding the invalid id
// breaks the context window without counting anything.
type Builder[T ids.ID] struct {
	s          *Store[T]
	pre1, pre2 T
}

// NewBuilder returns a Builder for a vocabulary of size ids. When trigrams is
// false only unigrams and bigrams are counted.
func NewBuilder[T ids.ID](size int, trigrams bool) *Builder[T] {
	return &Builder[T]{
		s:    newStore[T](size, trigrams),
		pre1: ids.Invalid[T](),
		pre2: ids.Invalid[T](),
	}
}

// Grow extends the vocabulary to size ids. Used when the training path
// discovers new words.
func (b *Builder[T]) Grow(size int) {
	for len(b.s.unigram) < size {
		b.s.unigram = append(b.s.unigram, 0)
		b.s.bigram = append(b.s.bigram, nil)
		if b.s.trigram != nil {
			b.s.trigram = append(b.s.trigram, nil)
		}
	}
}

// Len returns the current vocabulary size.
func (b *Builder[T]) Len() int { return len(b.s.unigram) }

// Last returns the most recently fed id, or the invalid id after a break.
func (b *Builder[T]) Last() T { return b.pre1 }

// Feed counts id against the current context and shifts the window.
func (b *Builder[T]) Feed(id T) {
	invalid := ids.Invalid[T]()
	if id != invalid {
		if b.pre1 != invalid {
			b.s.setBigram(b.pre1, id, b.s.bigram[b.pre1][id]+1)
			if b.pre2 != invalid && b.s.trigram != nil {
				b.s.setTrigram(b.pre2, b.pre1, id, b.s.Trigram(b.pre2, b.pre1, id)+1)
			}
		}
		b.s.unigram[id]++
		b.s.total++
	}
	b.pre2 = b.pre1
	b.pre1 = id
}

// Break forgets the context window.
func (b *Builder[T]) Break() {
	b.pre1 = ids.Invalid[T]()
	b.pre2 = ids.Invalid[T]()
}

// Unigram returns the running count of id.
func (b *Builder[T]) Unigram(id T) uint64 { return b.s.Unigram(id) }

// Store returns the counted tables. The Builder must not be used afterwards.
func (b *Builder[T]) Store() *Store[T] {
	s := b.s
	b.s = nil
	return s
}
