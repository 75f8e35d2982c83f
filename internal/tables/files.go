package tables

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"pinyin/internal/ids"
)

const maxLine = 1 << 20

func scanLines(r io.Reader, handle func(line []byte) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	n := 0
	for sc.Scan() {
		n++
		line := bytes.TrimRight(sc.Bytes(), " \t\r\n")
		if len(line) == 0 {
			continue
		}
		if err := handle(line); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return sc.Err()
}

// LoadPronunciations reads a GBK encoded pronunciation table. Each line is a
// syllable followed by the space separated 2-byte characters it can be read
// as. Syllable ids follow line order.
func LoadPronunciations(r io.Reader, sy *SyllableTable, ch *CharTable) error {
	return scanLines(r, func(line []byte) error {
		spelling, rest, ok := bytes.Cut(line, []byte{' '})
		if !ok {
			return fmt.Errorf("no characters for syllable %q", spelling)
		}
		if sy.Lookup(string(spelling)) != ids.InvalidSyllable {
			return fmt.Errorf("duplicate syllable %q", spelling)
		}
		syllable := sy.Insert(string(spelling))
		for _, c := range bytes.Fields(rest) {
			if len(c) != 2 {
				return fmt.Errorf("syllable %q: % x is not a 2-byte GBK character", spelling, c)
			}
			code := [2]byte{c[0], c[1]}
			if _, ok := gbkIndex(code); !ok {
				return fmt.Errorf("syllable %q: invalid GBK code % x", spelling, c)
			}
			ch.AddPronunciation(syllable, ch.Insert(code))
		}
		return nil
	})
}

// LoadPronunciationsFile is LoadPronunciations on a file path.
func LoadPronunciationsFile(path string) (*SyllableTable, *CharTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open pronunciations: %w", err)
	}
	defer f.Close()

	sy, ch := NewSyllableTable(), NewCharTable()
	if err := LoadPronunciations(f, sy, ch); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return sy, ch, nil
}

// LoadWords reads a UTF-8 vocabulary listing into wt. Each line is a word,
// optionally followed by a space and its space separated pinyin. Marker
// lines <s> and </s> are skipped.
func LoadWords(r io.Reader, sy *SyllableTable, wt *WordTable) error {
	return scanLines(r, func(line []byte) error {
		word, spelling, _ := strings.Cut(string(line), " ")
		if word == "<s>" || word == "</s>" {
			return nil
		}
		var py []ids.Syllable
		if spelling != "" {
			var err error
			if py, err = sy.Split(spelling); err != nil {
				return fmt.Errorf("word %q: %w", word, err)
			}
		}
		if wt.Lookup(word) != ids.InvalidWord {
			return fmt.Errorf("duplicate word %q", word)
		}
		wt.Insert(word, py)
		return nil
	})
}

// LoadWordsFile reads the vocabulary at path into a new WordTable.
func LoadWordsFile(path string, sy *SyllableTable) (*WordTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()

	wt := NewWordTable()
	if err := LoadWords(f, sy, wt); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return wt, nil
}

// WriteWords writes every word from id 2 on in the LoadWords format. Words
// without recorded pinyin are written alone on their line.
func WriteWords(w io.Writer, sy *SyllableTable, wt *WordTable) error {
	bw := bufio.NewWriter(w)
	for id := ids.FirstWord; int(id) < wt.Len(); id++ {
		bw.WriteString(wt.Word(id))
		for _, s := range wt.Pinyin(id) {
			bw.WriteByte(' ')
			bw.WriteString(sy.Spelling(s))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteWordsFile writes the vocabulary to path.
func WriteWordsFile(path string, sy *SyllableTable, wt *WordTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create vocabulary: %w", err)
	}
	if err := WriteWords(f, sy, wt); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
