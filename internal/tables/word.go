package tables

import (
	"fmt"
	"maps"
	"slices"

	"pinyin/internal/ids"
)

const unknownWord = "<unk>"

// WordTable maps words to ids and ids to words and their pinyin. Ids 0 and 1
// are the sentence markers <s> and </s>; they are not found by Lookup.
type WordTable struct {
	index  map[string]ids.Word
	words  []string
	pinyin [][]ids.Syllable
}

func NewWordTable() *WordTable {
	return &WordTable{
		index:  make(map[string]ids.Word),
		words:  []string{"<s>", "</s>"},
		pinyin: [][]ids.Syllable{nil, nil},
	}
}

func (t *WordTable) SOS() ids.Word { return ids.SOSWord }
func (t *WordTable) EOS() ids.Word { return ids.EOSWord }

// Len returns the number of ids, markers included.
func (t *WordTable) Len() int { return len(t.words) }

// Insert adds word with its pinyin, which may be empty, and returns the new
// id. Inserting the same word twice is a programming error.
func (t *WordTable) Insert(word string, pinyin []ids.Syllable) ids.Word {
	if _, ok := t.index[word]; ok {
		panic(fmt.Sprintf("tables: duplicate word %q", word))
	}
	id := ids.Word(len(t.words))
	t.index[word] = id
	t.words = append(t.words, word)
	t.pinyin = append(t.pinyin, pinyin)
	return id
}

// Lookup returns the id of word or ids.InvalidWord.
func (t *WordTable) Lookup(word string) ids.Word {
	if id, ok := t.index[word]; ok {
		return id
	}
	return ids.InvalidWord
}

// Word renders id. Invalid and out of range ids render as <unk>.
func (t *WordTable) Word(id ids.Word) string {
	if int(id) >= len(t.words) {
		return unknownWord
	}
	return t.words[id]
}

// Pinyin returns the recorded pinyin of id, possibly empty.
func (t *WordTable) Pinyin(id ids.Word) []ids.Syllable {
	if int(id) >= len(t.pinyin) {
		return nil
	}
	return t.pinyin[id]
}

func (t *WordTable) SetPinyin(id ids.Word, pinyin []ids.Syllable) {
	t.pinyin[id] = pinyin
}

// InferPinyin builds a pinyin for id from the first reading of each of its
// characters, each looked up as a single-character word. The result is
// empty if any character is unknown or has no reading.
func (t *WordTable) InferPinyin(id ids.Word) []ids.Syllable {
	word := t.Word(id)
	var out []ids.Syllable
	for _, r := range word {
		ch := t.Lookup(string(r))
		if ch == ids.InvalidWord {
			return nil
		}
		py := t.Pinyin(ch)
		if len(py) == 0 {
			return nil
		}
		out = append(out, py[0])
	}
	return out
}

// Spelling returns the recorded pinyin of id, falling back to InferPinyin.
func (t *WordTable) Spelling(id ids.Word) []ids.Syllable {
	if py := t.Pinyin(id); len(py) > 0 {
		return py
	}
	return t.InferPinyin(id)
}

// Clone returns an independent copy that can be extended without affecting t.
func (t *WordTable) Clone() *WordTable {
	return &WordTable{
		index:  maps.Clone(t.index),
		words:  slices.Clone(t.words),
		pinyin: slices.Clone(t.pinyin),
	}
}
