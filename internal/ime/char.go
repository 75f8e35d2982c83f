package ime

import (
	"pinyin/internal/ids"
	"pinyin/internal/ngram"
	"pinyin/internal/tables"
	"pinyin/pkg/options"
)

// CharBigram decodes one character per syllable with an interpolated
// character bigram model.
type CharBigram struct {
	chars *tables.CharTable
	s     *ngram.Store[ids.Char]
	total uint64
	opts  options.DecoderOptions

	// bySyllable[s] lists the characters readable as s.
	bySyllable []*Match[ids.Char]
	eos        *Match[ids.Char]
}

// NewCharBigram builds a decoder over the character counts in s. The unigram
// normalizer is the sum, over every syllable, of the counts of the
// characters readable as it.
func NewCharBigram(sy *tables.SyllableTable, chars *tables.CharTable, s *ngram.Store[ids.Char], opts ...options.Options) *CharBigram {
	d := &CharBigram{
		chars:      chars,
		s:          s,
		opts:       options.Build(opts...),
		bySyllable: make([]*Match[ids.Char], sy.Len()),
	}
	for i := range d.bySyllable {
		cs := chars.Chars(ids.Syllable(i))
		for _, c := range cs {
			d.total += s.Unigram(c)
		}
		d.bySyllable[i] = &Match[ids.Char]{Targets: cs, Length: 1}
	}
	for _, m := range d.bySyllable {
		m.Freq = d.total
	}
	d.eos = &Match[ids.Char]{Targets: []ids.Char{ids.EOSChar}, Freq: d.total, Length: 1}
	return d
}

func (d *CharBigram) Translate(syllables []ids.Syllable) (string, error) {
	next := func(s ids.Syllable, visit func(*Match[ids.Char])) {
		if int(s) < len(d.bySyllable) {
			visit(d.bySyllable[s])
		}
	}
	return decode[ids.Char, ids.Char](d, ids.SOSChar, syllables, next, d.eos, &d.opts, false)
}

func (d *CharBigram) score(c1, c2 ids.Char, freq uint64) float64 {
	if !d.opts.UseEOS && c2 == ids.EOSChar {
		return 1
	}
	var bi uint64
	if d.s.Successors(c1) > 0 && (d.opts.UseSOS || c1 != ids.SOSChar) {
		bi = d.s.Bigram(c1, c2)
	}
	l := d.opts.Lambda
	return l*ratio(bi, d.s.Unigram(c1)) + (1-l)*ratio(d.s.Unigram(c2), freq)
}

func (d *CharBigram) next(_, c ids.Char) ids.Char { return c }
func (d *CharBigram) last(c ids.Char) ids.Char    { return c }
func (d *CharBigram) text(c ids.Char) string      { return d.chars.UTF8(c) }

func (d *CharBigram) label(c ids.Char) string {
	switch c {
	case ids.SOSChar:
		return "<s>"
	case ids.EOSChar:
		return "</s>"
	}
	return d.chars.UTF8(c)
}
