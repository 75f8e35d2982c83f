package train

import (
	"pinyin/internal/ids"
	"pinyin/internal/ngram"
	"pinyin/internal/tables"
)

// CharCounter counts character unigrams and bigrams from raw text.
type CharCounter struct {
	chars *tables.CharTable
	b     *ngram.Builder[ids.Char]
}

func NewCharCounter(chars *tables.CharTable) *CharCounter {
	return &CharCounter{
		chars: chars,
		b:     ngram.NewBuilder[ids.Char](chars.Len(), false),
	}
}

// AddSentence counts one sentence framed by <s> and </s>. Characters missing
// from the table count as </s>; runs of </s> collapse into one.
func (c *CharCounter) AddSentence(text string) {
	c.b.Break()
	c.feed(ids.SOSChar)
	for _, r := range text {
		ch := c.chars.Lookup(r)
		if ch == ids.InvalidChar {
			ch = ids.EOSChar
		}
		c.feed(ch)
	}
	c.feed(ids.EOSChar)
}

func (c *CharCounter) feed(ch ids.Char) {
	if ch == ids.EOSChar && c.b.Last() == ids.EOSChar {
		return
	}
	c.b.Feed(ch)
}

// Store returns the counts. The counter must not be used afterwards.
func (c *CharCounter) Store() *ngram.Store[ids.Char] {
	return c.b.Store()
}
