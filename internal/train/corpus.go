// Package train counts n-grams from text corpora and writes the dictionary
// files the decoders load.
package train

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

const progressEvery = 100000

// CorpusOptions describes how corpus lines are turned into texts.
type CorpusOptions struct {
	// Keys selects string fields of JSON-lines input. Empty means every line
	// is one text.
	Keys []string
	// GBK decodes the input from GBK before processing.
	GBK bool
	// Progress logs a line count periodically.
	Progress bool
}

// ReadCorpus calls f for every text in r.
func ReadCorpus(r io.Reader, o CorpusOptions, f func(text string)) error {
	if o.GBK {
		r = transform.NewReader(r, simplifiedchinese.GBK.NewDecoder())
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16<<20)

	n := 0
	for sc.Scan() {
		n++
		line := sc.Bytes()
		if len(o.Keys) == 0 {
			f(string(line))
		} else {
			var obj map[string]any
			if err := json.Unmarshal(line, &obj); err != nil {
				return fmt.Errorf("corpus line %d: %w", n, err)
			}
			for _, k := range o.Keys {
				if s, ok := obj[k].(string); ok {
					f(s)
				}
			}
		}
		if o.Progress && n%progressEvery == 0 {
			log.Printf("Processing %d", n)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read corpus: %w", err)
	}
	return nil
}
