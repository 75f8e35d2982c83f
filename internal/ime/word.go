package ime

import (
	"fmt"

	"pinyin/internal/ids"
	"pinyin/internal/ngram"
	"pinyin/internal/tables"
	"pinyin/pkg/options"
)

func checkStore(words *tables.WordTable, s *ngram.Store[ids.Word]) error {
	if s.Len() != words.Len() {
		return fmt.Errorf("ime: store has %d records for %d words", s.Len(), words.Len())
	}
	return nil
}

// WordBigram decodes words of any length with a word bigram model, either
// interpolated with the local unigram estimate or discounted.
type WordBigram struct {
	words *tables.WordTable
	s     *ngram.Store[ids.Word]
	lex   *lexicon
	kn    *ngram.Discount[ids.Word]
	opts  options.DecoderOptions
	eos   *Match[ids.Word]
}

func NewWordBigram(words *tables.WordTable, s *ngram.Store[ids.Word], opts ...options.Options) (*WordBigram, error) {
	if err := checkStore(words, s); err != nil {
		return nil, err
	}
	d := &WordBigram{
		words: words,
		s:     s,
		lex:   newLexicon(words, s),
		opts:  options.Build(opts...),
		eos: &Match[ids.Word]{
			Targets: []ids.Word{ids.EOSWord},
			Freq:    s.Unigram(ids.EOSWord),
			Length:  1,
		},
	}
	if d.opts.Smoothing == options.Discounted {
		d.kn = ngram.NewDiscount(s, ids.SOSWord)
	}
	return d, nil
}

func (d *WordBigram) Translate(syllables []ids.Syllable) (string, error) {
	return decode[ids.Word, ids.Word](d, ids.SOSWord, syllables, d.lex.cursor(), d.eos, &d.opts, false)
}

func (d *WordBigram) score(w1, w2 ids.Word, freq uint64) float64 {
	if !d.opts.UseEOS && w2 == ids.EOSWord {
		return 1
	}
	var bi uint64
	if d.opts.UseSOS || w1 != ids.SOSWord {
		bi = d.s.Bigram(w1, w2)
	}
	if d.kn != nil {
		return d.kn.Prob(w1, w2, bi)
	}
	l := d.opts.Lambda
	return l*ratio(bi, d.s.Unigram(w1)) + (1-l)*ratio(d.s.Unigram(w2), freq)
}

func (d *WordBigram) next(_, w ids.Word) ids.Word { return w }
func (d *WordBigram) last(w ids.Word) ids.Word    { return w }
func (d *WordBigram) text(w ids.Word) string      { return d.words.Word(w) }
func (d *WordBigram) label(w ids.Word) string     { return d.words.Word(w) }
