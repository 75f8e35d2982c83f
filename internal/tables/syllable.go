// Package tables holds the static vocabularies the decoders are built on:
// syllables, GBK characters with their pronunciations, and words.
//
// All tables are filled during load and read-only afterwards.
package tables

import (
	"errors"
	"fmt"
	"strings"

	"pinyin/internal/ids"
)

var ErrUnknownSyllable = errors.New("unknown syllable")

// SyllableTable maps syllable spellings to dense ids in insertion order.
type SyllableTable struct {
	index     map[string]ids.Syllable
	spellings []string
}

func NewSyllableTable() *SyllableTable {
	return &SyllableTable{index: make(map[string]ids.Syllable)}
}

// Insert adds a spelling and returns its id. Inserting the same spelling
// twice is a programming error.
func (t *SyllableTable) Insert(spelling string) ids.Syllable {
	if _, ok := t.index[spelling]; ok {
		panic(fmt.Sprintf("tables: duplicate syllable %q", spelling))
	}
	id := ids.Syllable(len(t.spellings))
	t.index[spelling] = id
	t.spellings = append(t.spellings, spelling)
	return id
}

// Lookup returns the id of spelling or ids.InvalidSyllable.
func (t *SyllableTable) Lookup(spelling string) ids.Syllable {
	if id, ok := t.index[spelling]; ok {
		return id
	}
	return ids.InvalidSyllable
}

func (t *SyllableTable) Spelling(id ids.Syllable) string {
	if int(id) >= len(t.spellings) {
		return ""
	}
	return t.spellings[id]
}

func (t *SyllableTable) Len() int { return len(t.spellings) }

// Spellings returns every known spelling in id order.
func (t *SyllableTable) Spellings() []string { return t.spellings }

// Split converts a whitespace separated syllable sequence to ids.
//
//	"zhong guo" -> [id(zhong), id(guo)]
func (t *SyllableTable) Split(seq string) ([]ids.Syllable, error) {
	fields := strings.Fields(seq)
	out := make([]ids.Syllable, 0, len(fields))
	for _, f := range fields {
		id := t.Lookup(f)
		if id == ids.InvalidSyllable {
			return nil, &SyllableError{Token: f}
		}
		out = append(out, id)
	}
	return out, nil
}

// Join renders a syllable sequence back to its space separated spelling.
func (t *SyllableTable) Join(seq []ids.Syllable) string {
	parts := make([]string, len(seq))
	for i, s := range seq {
		parts[i] = t.Spelling(s)
	}
	return strings.Join(parts, " ")
}

// SyllableError reports the offending token of a failed Split.
type SyllableError struct {
	Token string
}

func (e *SyllableError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownSyllable, e.Token)
}

func (e *SyllableError) Unwrap() error { return ErrUnknownSyllable }
