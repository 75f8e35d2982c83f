package train

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"pinyin/internal/ids"
	"pinyin/internal/ngram"
	"pinyin/internal/tables"
)

// DefaultMinCount is the number of occurrences a word found in the corpus
// needs to be kept in the vocabulary.
const DefaultMinCount = 10

// WordCounter counts word n-grams over pre-segmented text. Chinese words
// missing from the vocabulary are added to it as they are seen.
type WordCounter struct {
	words *tables.WordTable
	chars *tables.CharTable
	punct map[string]struct{}
	base  int
	b     *ngram.Builder[ids.Word]
}

// NewWordCounter takes ownership of words; its ids up to its current length
// form the base vocabulary that Compact always keeps.
func NewWordCounter(words *tables.WordTable, chars *tables.CharTable, punct map[string]struct{}, trigrams bool) *WordCounter {
	return &WordCounter{
		words: words,
		chars: chars,
		punct: punct,
		base:  words.Len(),
		b:     ngram.NewBuilder[ids.Word](words.Len(), trigrams),
	}
}

// AddWords counts one line of segmented words. Punctuation ends the current
// sentence and every sentence starts with <s>. Tokens that are neither known
// nor Chinese break the context.
func (c *WordCounter) AddWords(words []string) {
	c.b.Break()
	prevPunct := true
	for _, word := range words {
		if _, ok := c.punct[word]; ok {
			if prevPunct {
				continue
			}
			c.b.Feed(ids.EOSWord)
			c.b.Break()
			prevPunct = true
			continue
		}

		w := c.words.Lookup(word)
		if w == ids.InvalidWord && c.chars.IsChinese(word) {
			w = c.words.Insert(word, nil)
			c.b.Grow(c.words.Len())
		}
		if w != ids.InvalidWord {
			if prevPunct {
				c.b.Feed(ids.SOSWord)
			}
			c.b.Feed(w)
		} else {
			c.b.Break()
		}
		prevPunct = false
	}
}

// Compact drops words added from the corpus that were seen fewer than
// minCount times and renumbers the rest after the base vocabulary. When ann
// is not nil, kept words without pinyin are annotated. The counter must not
// be used afterwards.
func (c *WordCounter) Compact(minCount uint64, ann *tables.Annotator) (*tables.WordTable, *ngram.Store[ids.Word]) {
	s := c.b.Store()
	mapping := make([]ids.Word, c.words.Len())
	out := tables.NewWordTable()
	for i := range c.words.Len() {
		id := ids.Word(i)
		if i >= c.base && s.Unigram(id) < minCount {
			mapping[i] = ids.InvalidWord
			continue
		}
		if i < int(ids.FirstWord) {
			mapping[i] = id
			continue
		}
		py := c.words.Pinyin(id)
		if len(py) == 0 && i >= c.base && ann != nil {
			if got, err := ann.Annotate(c.words.Word(id)); err == nil {
				py = got
			}
		}
		mapping[i] = out.Insert(c.words.Word(id), py)
	}
	log.Printf("Kept %d of %d words", out.Len(), c.words.Len())
	return out, s.Remap(mapping, out.Len())
}

// ReadPunctuations reads one punctuation token per line.
func ReadPunctuations(r io.Reader) (map[string]struct{}, error) {
	punct := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if tok := strings.TrimSpace(sc.Text()); tok != "" {
			punct[tok] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read punctuations: %w", err)
	}
	return punct, nil
}

func ReadPunctuationsFile(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPunctuations(f)
}

// WriteDictionary writes the vocabulary file and the frequency file for a
// word model. Trigram stores are written in the trigram layout.
func WriteDictionary(wordsPath, dictPath string, sy *tables.SyllableTable, words *tables.WordTable, s *ngram.Store[ids.Word]) error {
	if err := tables.WriteWordsFile(wordsPath, sy, words); err != nil {
		return err
	}
	if s.HasTrigrams() {
		return ngram.SaveTrigram(dictPath, s)
	}
	return ngram.SaveBigram(dictPath, s)
}
