package tables

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mozillazg/go-pinyin"

	"pinyin/internal/ids"
)

// ErrNoReading means a word contains a character without a pinyin reading.
var ErrNoReading = errors.New("no pinyin reading")

// Annotator produces pinyin for arbitrary Chinese text from the go-pinyin
// pronunciation dictionary, mapped onto a SyllableTable.
type Annotator struct {
	sy   *SyllableTable
	args pinyin.Args
}

func NewAnnotator(sy *SyllableTable) *Annotator {
	args := pinyin.NewArgs()
	args.Style = pinyin.Normal
	return &Annotator{sy: sy, args: args}
}

// Annotate returns one syllable per character of word, using the most
// common reading of each character.
func (a *Annotator) Annotate(word string) ([]ids.Syllable, error) {
	readings := pinyin.LazyPinyin(word, a.args)
	if len(readings) == 0 || len(readings) != utf8.RuneCountInString(word) {
		return nil, fmt.Errorf("%w: %q", ErrNoReading, word)
	}
	out := make([]ids.Syllable, len(readings))
	for i, r := range readings {
		r = strings.ReplaceAll(r, "ü", "v")
		id := a.sy.Lookup(r)
		if id == ids.InvalidSyllable {
			return nil, &SyllableError{Token: r}
		}
		out[i] = id
	}
	return out, nil
}
