package tables

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"

	"pinyin/internal/ids"
)

// GBKCharCount is the number of 2-byte GBK code points: lead bytes
// 0x81-0xfe, trail bytes 0x40-0xfe without 0x7f.
const GBKCharCount = 23940

// gbkIndex maps a 2-byte GBK code to a slot in [0, GBKCharCount).
func gbkIndex(code [2]byte) (int, bool) {
	b1, b2 := code[0], code[1]
	if b1 < 0x81 || b1 == 0xff || b2 < 0x40 || b2 == 0x7f || b2 == 0xff {
		return 0, false
	}
	trail := int(b2) - 0x40
	if b2 > 0x7f {
		trail--
	}
	return int(b1-0x81)*(0xfe-0x40) + trail, true
}

// CharTable assigns ids to GBK characters and records which characters each
// syllable can be read as. Ids 0 and 1 are the sentence markers and render
// as the empty string.
type CharTable struct {
	slots  [GBKCharCount]ids.Char
	utf8   []string
	byRune map[rune]ids.Char
	chars  map[ids.Syllable][]ids.Char
}

func NewCharTable() *CharTable {
	return &CharTable{
		utf8:   []string{"", ""},
		byRune: make(map[rune]ids.Char),
		chars:  make(map[ids.Syllable][]ids.Char),
	}
}

func (t *CharTable) SOS() ids.Char { return ids.SOSChar }
func (t *CharTable) EOS() ids.Char { return ids.EOSChar }

// Len returns the number of allocated ids, markers included.
func (t *CharTable) Len() int { return len(t.utf8) }

// Insert returns the id of the GBK character code, allocating one on first
// sight. code must be a valid 2-byte GBK code point.
func (t *CharTable) Insert(code [2]byte) ids.Char {
	slot, ok := gbkIndex(code)
	if !ok {
		panic(fmt.Sprintf("tables: invalid GBK code % x", code))
	}
	if id := t.slots[slot]; id != 0 {
		return id
	}
	s, err := simplifiedchinese.GBK.NewDecoder().Bytes(code[:])
	if err != nil {
		panic(fmt.Sprintf("tables: decode GBK % x: %v", code, err))
	}
	id := ids.Char(len(t.utf8))
	t.slots[slot] = id
	t.utf8 = append(t.utf8, string(s))
	if r, n := utf8.DecodeRune(s); n == len(s) && r != utf8.RuneError {
		t.byRune[r] = id
	}
	return id
}

// Get returns the id of a GBK code, or ids.InvalidChar if it was never
// inserted.
func (t *CharTable) Get(code [2]byte) ids.Char {
	slot, ok := gbkIndex(code)
	if !ok || t.slots[slot] == 0 {
		return ids.InvalidChar
	}
	return t.slots[slot]
}

// Lookup returns the id of a Unicode character, or ids.InvalidChar.
func (t *CharTable) Lookup(r rune) ids.Char {
	if id, ok := t.byRune[r]; ok {
		return id
	}
	return ids.InvalidChar
}

// AddPronunciation records that syllable can be read as ch.
func (t *CharTable) AddPronunciation(syllable ids.Syllable, ch ids.Char) {
	t.chars[syllable] = append(t.chars[syllable], ch)
}

// Chars returns the characters readable as syllable, in file order.
func (t *CharTable) Chars(syllable ids.Syllable) []ids.Char {
	return t.chars[syllable]
}

// UTF8 renders ch. Unknown ids render as the empty string.
func (t *CharTable) UTF8(ch ids.Char) string {
	if int(ch) >= len(t.utf8) {
		return ""
	}
	return t.utf8[ch]
}

// IsChinese reports whether s is non-empty and consists only of characters
// present in the table.
func (t *CharTable) IsChinese(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if t.Lookup(r) == ids.InvalidChar {
			return false
		}
	}
	return true
}
