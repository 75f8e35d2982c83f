// Package ime converts syllable sequences to text by maximum likelihood
// decoding over a position-indexed lattice.
//
// Three decoders share one forward sweep: CharBigram scores character
// bigrams, WordBigram and WordTrigram score word n-grams and find candidate
// words of any length through an Aho-Corasick automaton over pinyin.
// Decoders are immutable after construction; Translate may be called from
// any number of goroutines.
package ime

import (
	"errors"

	"pinyin/internal/ids"
)

// ErrNoPath means no sequence of candidates covers the input.
var ErrNoPath = errors.New("no valid path found")

type Decoder interface {
	Translate(syllables []ids.Syllable) (string, error)
}

// Match groups the targets sharing one spelling.
type Match[T ids.ID] struct {
	Targets []T
	// Freq is the sum of the targets' unigram counts, the local normalizer
	// of the unigram estimate.
	Freq uint64
	// Length is the number of syllables the spelling spans.
	Length int
}

func ratio(a, b uint64) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
