package ime

import (
	"bytes"
	"errors"
	"log"
	"math"
	"os"
	"strings"
	"sync"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"

	"pinyin/internal/ids"
	"pinyin/internal/ngram"
	"pinyin/internal/tables"
	"pinyin/pkg/options"
)

// vocab builds a syllable and word table from "word syl syl..." entries.
func vocab(entries ...string) (*tables.SyllableTable, *tables.WordTable) {
	sy := tables.NewSyllableTable()
	wt := tables.NewWordTable()
	for _, e := range entries {
		fields := strings.Fields(e)
		var py []ids.Syllable
		for _, s := range fields[1:] {
			id := sy.Lookup(s)
			if id == ids.InvalidSyllable {
				id = sy.Insert(s)
			}
			py = append(py, id)
		}
		wt.Insert(fields[0], py)
	}
	return sy, wt
}

// repeat returns n copies of sentence.
func repeat(n int, sentence string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = sentence
	}
	return out
}

// count trains a word store on space separated sentences, each wrapped in
// sentence markers.
func count(wt *tables.WordTable, trigrams bool, groups ...[]string) *ngram.Store[ids.Word] {
	b := ngram.NewBuilder[ids.Word](wt.Len(), trigrams)
	for _, g := range groups {
		for _, s := range g {
			b.Feed(ids.SOSWord)
			for _, w := range strings.Fields(s) {
				b.Feed(wt.Lookup(w))
			}
			b.Feed(ids.EOSWord)
			b.Break()
		}
	}
	return b.Store()
}

func split(t *testing.T, sy *tables.SyllableTable, seq string) []ids.Syllable {
	t.Helper()
	out, err := sy.Split(seq)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func translate(t *testing.T, d Decoder, syllables []ids.Syllable) string {
	t.Helper()
	got, err := d.Translate(syllables)
	if err != nil {
		t.Fatalf("translate %v: %v", syllables, err)
	}
	return got
}

// bigramFixture: 甲 has the higher unigram count on "a", but only 乙 is
// ever followed by 丙. 丁 on "c" is frequent but never ends a sentence.
func bigramFixture(t *testing.T, trigrams bool) (*tables.SyllableTable, *tables.WordTable, *ngram.Store[ids.Word]) {
	t.Helper()
	sy, wt := vocab("甲 a", "乙 a", "丙 b", "丁 c", "戊 c")
	s := count(wt, trigrams,
		repeat(10, "甲"),
		repeat(2, "乙 丙"),
		repeat(9, "丁 甲"),
		repeat(1, "戊"),
	)
	return sy, wt, s
}

// trigramFixture: 丙 is usually followed by 丁, but after 乙 丙 always by 戊.
func trigramFixture(t *testing.T) (*tables.SyllableTable, *tables.WordTable, *ngram.Store[ids.Word]) {
	t.Helper()
	sy, wt := vocab("甲 a", "乙 a", "丙 b", "丁 c", "戊 c", "己 x")
	s := count(wt, true,
		repeat(3, "乙 丙 戊"),
		repeat(1, "甲 丙 丁"),
		repeat(5, "己 丙 丁"),
	)
	return sy, wt, s
}

func newWordBigram(t *testing.T, wt *tables.WordTable, s *ngram.Store[ids.Word], opts ...options.Options) *WordBigram {
	t.Helper()
	d, err := NewWordBigram(wt, s, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func newWordTrigram(t *testing.T, wt *tables.WordTable, s *ngram.Store[ids.Word], opts ...options.Options) *WordTrigram {
	t.Helper()
	d, err := NewWordTrigram(wt, s, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestWordBigramWeights(t *testing.T) {
	sy, wt, s := bigramFixture(t, false)
	in := split(t, sy, "a b")

	if got := translate(t, newWordBigram(t, wt, s, options.WithLambda(1)), in); got != "乙丙" {
		t.Errorf("bigram only: expected 乙丙, got %q", got)
	}
	if got := translate(t, newWordBigram(t, wt, s, options.WithLambda(0)), in); got != "甲丙" {
		t.Errorf("unigram only: expected 甲丙, got %q", got)
	}
}

func TestWordBigramEOS(t *testing.T) {
	sy, wt, s := bigramFixture(t, false)

	in := split(t, sy, "c")
	if got := translate(t, newWordBigram(t, wt, s), in); got != "戊" {
		t.Errorf("with eos: expected 戊, got %q", got)
	}
	if got := translate(t, newWordBigram(t, wt, s, options.WithoutEOS()), in); got != "丁" {
		t.Errorf("without eos: expected 丁, got %q", got)
	}

	// Only one state survives to the end; the eos score cannot change it.
	in = split(t, sy, "a b")
	for _, opts := range [][]options.Options{
		{options.WithLambda(1)},
		{options.WithLambda(1), options.WithoutEOS()},
	} {
		if got := translate(t, newWordBigram(t, wt, s, opts...), in); got != "乙丙" {
			t.Errorf("expected 乙丙, got %q", got)
		}
	}
}

func TestWordBigramDiscounted(t *testing.T) {
	sy, wt, s := bigramFixture(t, false)
	d := newWordBigram(t, wt, s, options.WithDiscounting())
	if got := translate(t, d, split(t, sy, "a b")); got != "乙丙" {
		t.Errorf("expected 乙丙, got %q", got)
	}
	if d.kn == nil {
		t.Error("expected discount statistics")
	}
}

func TestMultiSyllableWords(t *testing.T) {
	sy, wt := vocab("中国 zhong guo", "人 ren", "中 zhong", "国 guo")
	s := count(wt, false, repeat(5, "中国 人"), repeat(1, "中"))
	d := newWordBigram(t, wt, s)

	if got := translate(t, d, split(t, sy, "zhong guo ren")); got != "中国人" {
		t.Errorf("expected 中国人, got %q", got)
	}
}

func TestInferredSpelling(t *testing.T) {
	// 中国 has no recorded pinyin and is spelled from its characters.
	sy, wt := vocab("中 zhong", "国 guo", "中国")
	s := count(wt, false, repeat(5, "中国"))
	d := newWordBigram(t, wt, s, options.WithLambda(1))
	if got := translate(t, d, split(t, sy, "zhong guo")); got != "中国" {
		t.Errorf("expected 中国, got %q", got)
	}
}

func TestNoPath(t *testing.T) {
	sy, wt, s := bigramFixture(t, true)
	sy.Insert("d")
	in := split(t, sy, "a d b")

	decoders := map[string]Decoder{
		"bigram":  newWordBigram(t, wt, s),
		"trigram": newWordTrigram(t, wt, s),
	}
	for name, d := range decoders {
		if _, err := d.Translate(in); !errors.Is(err, ErrNoPath) {
			t.Errorf("%s: expected ErrNoPath, got %v", name, err)
		}
		// A failed call leaves the decoder usable.
		if got := translate(t, d, split(t, sy, "a b")); got == "" {
			t.Errorf("%s: expected text after failure", name)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	_, wt, s := bigramFixture(t, true)
	for name, d := range map[string]Decoder{
		"bigram":  newWordBigram(t, wt, s),
		"trigram": newWordTrigram(t, wt, s),
	} {
		if got := translate(t, d, nil); got != "" {
			t.Errorf("%s: expected empty text, got %q", name, got)
		}
	}
}

func TestWordTrigramContext(t *testing.T) {
	sy, wt, s := trigramFixture(t)
	in := split(t, sy, "a b c")

	if got := translate(t, newWordBigram(t, wt, s, options.WithLambda(1)), in); got != "乙丙丁" {
		t.Errorf("bigram: expected 乙丙丁, got %q", got)
	}
	if got := translate(t, newWordTrigram(t, wt, s, options.WithBeta(0.999999)), in); got != "乙丙戊" {
		t.Errorf("trigram: expected 乙丙戊, got %q", got)
	}
}

func TestPruningThresholdZero(t *testing.T) {
	sy, wt, s := trigramFixture(t)
	exact := newWordTrigram(t, wt, s, options.WithoutPruning())
	zero := newWordTrigram(t, wt, s, options.WithFilterThreshold(0))
	strict := newWordTrigram(t, wt, s, options.WithFilterThreshold(0.5))

	for _, seq := range []string{"a", "a b", "a b c", "c", "b c", "x b c", "c c a"} {
		in := split(t, sy, seq)
		want, wantErr := exact.Translate(in)
		got, err := zero.Translate(in)
		if got != want || !errors.Is(err, wantErr) {
			t.Errorf("%q: expected %q %v, got %q %v", seq, want, wantErr, got, err)
		}
	}
	if got := translate(t, strict, split(t, sy, "a b c")); got != "乙丙戊" {
		t.Errorf("strict pruning: expected 乙丙戊, got %q", got)
	}
}

func TestWordTrigramNeedsTrigrams(t *testing.T) {
	_, wt, s := bigramFixture(t, false)
	if _, err := NewWordTrigram(wt, s); err == nil {
		t.Error("expected error for bigram-only store")
	}
	other := tables.NewWordTable()
	if _, err := NewWordBigram(other, s); err == nil {
		t.Error("expected error for vocabulary mismatch")
	}
}

func TestDeterminism(t *testing.T) {
	sy, wt, s := trigramFixture(t)
	decoders := []Decoder{
		newWordBigram(t, wt, s),
		newWordBigram(t, wt, s, options.WithDiscounting()),
		newWordTrigram(t, wt, s),
	}
	in := split(t, sy, "a b c c a b")
	for _, d := range decoders {
		want, wantErr := d.Translate(in)

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 20 {
					got, err := d.Translate(in)
					if got != want || !errors.Is(err, wantErr) {
						t.Errorf("expected %q %v, got %q %v", want, wantErr, got, err)
						return
					}
				}
			}()
		}
		wg.Wait()
	}
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	sy, wt, s := trigramFixture(t)
	d := newWordTrigram(t, wt, s, options.WithDebug())
	translate(t, d, split(t, sy, "a b c"))
	if !strings.Contains(buf.String(), "乙 丙") {
		t.Errorf("expected state dump, got %q", buf.String())
	}
}

// charFixture loads 甲 乙 as readings of "a" and 丙 of "b".
func charFixture(t *testing.T) (*tables.SyllableTable, *tables.CharTable, *ngram.Store[ids.Char]) {
	t.Helper()
	src, err := simplifiedchinese.GBK.NewEncoder().String("a 甲 乙\nb 丙\n")
	if err != nil {
		t.Fatal(err)
	}
	sy, ch := tables.NewSyllableTable(), tables.NewCharTable()
	if err := tables.LoadPronunciations(strings.NewReader(src), sy, ch); err != nil {
		t.Fatal(err)
	}

	b := ngram.NewBuilder[ids.Char](ch.Len(), false)
	feed := func(n int, text string) {
		for range n {
			b.Feed(ids.SOSChar)
			for _, r := range text {
				b.Feed(ch.Lookup(r))
			}
			b.Feed(ids.EOSChar)
			b.Break()
		}
	}
	feed(10, "甲")
	feed(2, "乙丙")
	return sy, ch, b.Store()
}

func TestCharBigram(t *testing.T) {
	sy, ch, s := charFixture(t)
	in := split(t, sy, "a b")

	if got := translate(t, NewCharBigram(sy, ch, s, options.WithLambda(1)), in); got != "乙丙" {
		t.Errorf("bigram only: expected 乙丙, got %q", got)
	}
	if got := translate(t, NewCharBigram(sy, ch, s, options.WithLambda(0)), in); got != "甲丙" {
		t.Errorf("unigram only: expected 甲丙, got %q", got)
	}

	d := NewCharBigram(sy, ch, s)
	if d.total != 14 {
		t.Errorf("expected total 14, got %d", d.total)
	}
	if got := translate(t, d, nil); got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}

func TestCharBigramNoPath(t *testing.T) {
	sy, ch, s := charFixture(t)
	d := NewCharBigram(sy, ch, s)

	// Inserted after construction, so the decoder knows no characters for it.
	late := sy.Insert("d")
	if _, err := d.Translate([]ids.Syllable{late}); !errors.Is(err, ErrNoPath) {
		t.Errorf("expected ErrNoPath, got %v", err)
	}
	if _, err := d.Translate([]ids.Syllable{ids.InvalidSyllable}); !errors.Is(err, ErrNoPath) {
		t.Errorf("expected ErrNoPath, got %v", err)
	}
}

func TestColumnPrune(t *testing.T) {
	var c column[int]
	for i, p := range []float64{0.5, 0.01, 0.2, 0.001} {
		c.relax(i, p, -1, 1)
	}
	if c.relax(9, 0, -1, 1) {
		t.Error("zero probability should not be recorded")
	}
	if c.relax(0, 0.1, -1, 1) {
		t.Error("lower probability should not replace a state")
	}
	c.prune(0.1)
	if len(c.keys) != 2 || c.keys[0] != 0 || c.keys[1] != 2 {
		t.Fatalf("unexpected keys after prune: %v", c.keys)
	}
	if st, ok := c.get(2); !ok || st.prob != 0.2 {
		t.Errorf("index not rebuilt: %v %v", st, ok)
	}
	if _, ok := c.get(1); ok {
		t.Error("pruned state still indexed")
	}
}

// sosFixture: 甲 starts every sentence it is in, 乙 is three times as
// frequent but never starts one.
func sosFixture(t *testing.T, trigrams bool) (*tables.SyllableTable, *tables.WordTable, *ngram.Store[ids.Word]) {
	t.Helper()
	sy, wt := vocab("甲 a", "乙 a", "丙 b")
	s := count(wt, trigrams,
		repeat(3, "甲"),
		repeat(10, "丙 乙"),
	)
	return sy, wt, s
}

func TestWithoutSOS(t *testing.T) {
	sy, wt, s := sosFixture(t, false)
	in := split(t, sy, "a")
	if got := translate(t, newWordBigram(t, wt, s), in); got != "甲" {
		t.Errorf("bigram with <s>: expected 甲, got %q", got)
	}
	if got := translate(t, newWordBigram(t, wt, s, options.WithoutSOS()), in); got != "乙" {
		t.Errorf("bigram without <s>: expected 乙, got %q", got)
	}

	sy, wt, s = sosFixture(t, true)
	in = split(t, sy, "a")
	if got := translate(t, newWordTrigram(t, wt, s), in); got != "甲" {
		t.Errorf("trigram with <s>: expected 甲, got %q", got)
	}
	// Also needs the <s> 甲 </s> trigram to be ignored at the final step.
	if got := translate(t, newWordTrigram(t, wt, s, options.WithoutSOS()), in); got != "乙" {
		t.Errorf("trigram without <s>: expected 乙, got %q", got)
	}
}

func TestCharBigramNoSuccessors(t *testing.T) {
	sy, ch, _ := charFixture(t)
	jia, yi, bing := ch.Lookup('甲'), ch.Lookup('乙'), ch.Lookup('丙')

	// 丙 only ever ends a line without </s>, so it has no successors.
	b := ngram.NewBuilder[ids.Char](ch.Len(), false)
	for range 10 {
		b.Feed(ids.SOSChar)
		b.Feed(jia)
		b.Feed(ids.EOSChar)
		b.Break()
	}
	for range 2 {
		b.Feed(ids.SOSChar)
		b.Feed(yi)
		b.Feed(bing)
		b.Break()
	}
	s := b.Store()
	if s.Successors(bing) != 0 || s.Unigram(bing) == 0 {
		t.Fatal("fixture: 丙 should be counted but never followed")
	}

	d := NewCharBigram(sy, ch, s, options.WithLambda(0.5))
	want := 0.5 * float64(s.Unigram(ids.EOSChar)) / float64(d.total)
	if got := d.score(bing, ids.EOSChar, d.total); math.Abs(got-want) > 1e-12 {
		t.Errorf("score(丙, </s>) = %v, want unigram term %v", got, want)
	}

	// With the bigram term alone every path ends on 丙 and dies there.
	strict := NewCharBigram(sy, ch, s, options.WithLambda(1))
	if _, err := strict.Translate(split(t, sy, "a b")); !errors.Is(err, ErrNoPath) {
		t.Errorf("expected ErrNoPath, got %v", err)
	}
	if got := translate(t, strict, split(t, sy, "a")); got != "甲" {
		t.Errorf("expected 甲, got %q", got)
	}
}
