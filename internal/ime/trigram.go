package ime

import (
	"errors"

	"pinyin/internal/ids"
	"pinyin/internal/ngram"
	"pinyin/internal/tables"
	"pinyin/pkg/options"
)

type wordPair = ids.Pair[ids.Word]

// WordTrigram decodes with a word trigram model interpolated down to the
// local unigram estimate. States are keyed by the last two words and pruned
// relative to the best state after every syllable.
type WordTrigram struct {
	words *tables.WordTable
	s     *ngram.Store[ids.Word]
	lex   *lexicon
	opts  options.DecoderOptions
	eos   *Match[ids.Word]
}

func NewWordTrigram(words *tables.WordTable, s *ngram.Store[ids.Word], opts ...options.Options) (*WordTrigram, error) {
	if !s.HasTrigrams() {
		return nil, errors.New("ime: store has no trigram counts")
	}
	if err := checkStore(words, s); err != nil {
		return nil, err
	}
	return &WordTrigram{
		words: words,
		s:     s,
		lex:   newLexicon(words, s),
		opts:  options.Build(opts...),
		eos: &Match[ids.Word]{
			Targets: []ids.Word{ids.EOSWord},
			Freq:    s.Unigram(ids.EOSWord),
			Length:  1,
		},
	}, nil
}

func (d *WordTrigram) Translate(syllables []ids.Syllable) (string, error) {
	seed := wordPair{ids.InvalidWord, ids.SOSWord}
	return decode[wordPair, ids.Word](d, seed, syllables, d.lex.cursor(), d.eos, &d.opts, d.opts.Pruning)
}

func (d *WordTrigram) score(from wordPair, w3 ids.Word, freq uint64) float64 {
	if !d.opts.UseEOS && w3 == ids.EOSWord {
		return 1
	}
	w1, w2 := from[0], from[1]
	var bi, bi2, tri uint64
	if d.opts.UseSOS || w2 != ids.SOSWord {
		bi = d.s.Bigram(w2, w3)
		if w1 != ids.InvalidWord && (d.opts.UseSOS || w1 != ids.SOSWord) {
			tri = d.s.Trigram(w1, w2, w3)
			bi2 = d.s.Bigram(w1, w2)
		}
	}
	a, b := d.opts.Alpha, d.opts.Beta
	lower := a*ratio(bi, d.s.Unigram(w2)) + (1-a)*ratio(d.s.Unigram(w3), freq)
	return b*ratio(tri, bi2) + (1-b)*lower
}

func (d *WordTrigram) next(from wordPair, w ids.Word) wordPair { return wordPair{from[1], w} }
func (d *WordTrigram) last(key wordPair) ids.Word              { return key[1] }
func (d *WordTrigram) text(w ids.Word) string                  { return d.words.Word(w) }

func (d *WordTrigram) label(key wordPair) string {
	return d.words.Word(key[0]) + " " + d.words.Word(key[1])
}
