package tables

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"

	"pinyin/internal/ids"
)

func gbk(t *testing.T, s string) []byte {
	t.Helper()
	out, err := simplifiedchinese.GBK.NewEncoder().String(s)
	if err != nil {
		t.Fatalf("encode %q: %v", s, err)
	}
	return []byte(out)
}

func loadFixture(t *testing.T) (*SyllableTable, *CharTable) {
	t.Helper()
	data := gbk(t, "zhong 中 钟 种\nguo 国 果\n\nren 人\nzhong1 中\n")
	sy, ch := NewSyllableTable(), NewCharTable()
	if err := LoadPronunciations(bytes.NewReader(data), sy, ch); err != nil {
		t.Fatal(err)
	}
	return sy, ch
}

func TestSyllableSplit(t *testing.T) {
	sy := NewSyllableTable()
	zhong := sy.Insert("zhong")
	guo := sy.Insert("guo")

	got, err := sy.Split("  zhong guo\tzhong ")
	if err != nil {
		t.Fatal(err)
	}
	if want := []ids.Syllable{zhong, guo, zhong}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got := sy.Join(got); got != "zhong guo zhong" {
		t.Errorf("unexpected join %q", got)
	}

	_, err = sy.Split("zhong xyz")
	if !errors.Is(err, ErrUnknownSyllable) {
		t.Fatalf("expected ErrUnknownSyllable, got %v", err)
	}
	var se *SyllableError
	if !errors.As(err, &se) || se.Token != "xyz" {
		t.Errorf("expected token xyz, got %v", err)
	}

	if got, err := sy.Split(""); err != nil || len(got) != 0 {
		t.Errorf("empty input: %v %v", got, err)
	}
}

func TestDuplicateSyllablePanics(t *testing.T) {
	sy := NewSyllableTable()
	sy.Insert("a")
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	sy.Insert("a")
}

func TestGBKIndex(t *testing.T) {
	cases := []struct {
		code [2]byte
		want int
		ok   bool
	}{
		{[2]byte{0x81, 0x40}, 0, true},
		{[2]byte{0x81, 0x7e}, 0x3e, true},
		{[2]byte{0x81, 0x80}, 0x3f, true},
		{[2]byte{0x82, 0x40}, 190, true},
		{[2]byte{0xfe, 0xfe}, GBKCharCount - 1, true},
		{[2]byte{0x81, 0x7f}, 0, false},
		{[2]byte{0x41, 0x41}, 0, false},
		{[2]byte{0xff, 0x40}, 0, false},
	}
	for _, tc := range cases {
		got, ok := gbkIndex(tc.code)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("% x: expected %d %v, got %d %v", tc.code, tc.want, tc.ok, got, ok)
		}
	}
}

func TestLoadPronunciations(t *testing.T) {
	sy, ch := loadFixture(t)

	if sy.Len() != 4 {
		t.Fatalf("expected 4 syllables, got %d", sy.Len())
	}
	// sos, eos, then 中 钟 种 国 果 人
	if ch.Len() != 8 {
		t.Fatalf("expected 8 char ids, got %d", ch.Len())
	}

	zhong := ch.Chars(sy.Lookup("zhong"))
	if len(zhong) != 3 {
		t.Fatalf("expected 3 readings of zhong, got %d", len(zhong))
	}
	if got := ch.UTF8(zhong[0]); got != "中" {
		t.Errorf("expected 中, got %q", got)
	}
	// Polyphonic characters keep one id.
	if again := ch.Chars(sy.Lookup("zhong1")); len(again) != 1 || again[0] != zhong[0] {
		t.Errorf("expected shared id for 中, got %v", again)
	}
	if got := ch.Lookup('国'); ch.UTF8(got) != "国" {
		t.Errorf("rune lookup failed: %d", got)
	}
	code := gbk(t, "人")
	if got := ch.Get([2]byte{code[0], code[1]}); ch.UTF8(got) != "人" {
		t.Errorf("code lookup failed: %d", got)
	}
	if ch.Lookup('天') != ids.InvalidChar {
		t.Error("expected unknown rune")
	}
	if ch.UTF8(ch.SOS()) != "" || ch.UTF8(ch.EOS()) != "" {
		t.Error("markers should render empty")
	}
}

func TestIsChinese(t *testing.T) {
	_, ch := loadFixture(t)
	cases := map[string]bool{
		"中国":  true,
		"人":   true,
		"中a":  false,
		"天":   false,
		"":    false,
		"abc": false,
	}
	for s, want := range cases {
		if got := ch.IsChinese(s); got != want {
			t.Errorf("%q: expected %v, got %v", s, want, got)
		}
	}
}

func TestLoadPronunciationsErrors(t *testing.T) {
	cases := map[string]string{
		"no characters": "zhong\n",
		"single byte":   "zhong a\n",
		"duplicate":     "zhong 中\nzhong 钟\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			err := LoadPronunciations(bytes.NewReader(gbk(t, src)), NewSyllableTable(), NewCharTable())
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWordTable(t *testing.T) {
	sy, _ := loadFixture(t)
	wt := NewWordTable()
	zhong := wt.Insert("中", []ids.Syllable{sy.Lookup("zhong")})
	guo := wt.Insert("国", []ids.Syllable{sy.Lookup("guo")})
	word := wt.Insert("中国", nil)
	odd := wt.Insert("中天", nil)

	if zhong != ids.FirstWord || guo != zhong+1 {
		t.Errorf("unexpected ids %d %d", zhong, guo)
	}
	if wt.Lookup("<s>") != ids.InvalidWord {
		t.Error("markers should not be looked up")
	}
	if wt.Word(wt.SOS()) != "<s>" || wt.Word(wt.EOS()) != "</s>" {
		t.Error("unexpected marker rendering")
	}
	if wt.Word(ids.InvalidWord) != "<unk>" || wt.Word(1000) != "<unk>" {
		t.Error("unknown ids should render as <unk>")
	}

	want := []ids.Syllable{sy.Lookup("zhong"), sy.Lookup("guo")}
	if got := wt.InferPinyin(word); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got := wt.Spelling(word); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got := wt.InferPinyin(odd); got != nil {
		t.Errorf("expected empty inference, got %v", got)
	}

	c := wt.Clone()
	c.Insert("人", nil)
	if wt.Lookup("人") != ids.InvalidWord || wt.Len() != 6 {
		t.Error("clone shares state with original")
	}
}

func TestWordsRoundTrip(t *testing.T) {
	sy, _ := loadFixture(t)
	src := "<s>\n</s>\n中 zhong\n国 guo\n中国 zhong guo\n中国人\n"
	wt := NewWordTable()
	if err := LoadWords(strings.NewReader(src), sy, wt); err != nil {
		t.Fatal(err)
	}
	if wt.Len() != 6 {
		t.Fatalf("expected 6 ids, got %d", wt.Len())
	}
	if id := wt.Lookup("中国人"); len(wt.Pinyin(id)) != 0 {
		t.Error("expected empty pinyin")
	}

	path := filepath.Join(t.TempDir(), "words.txt")
	if err := WriteWordsFile(path, sy, wt); err != nil {
		t.Fatal(err)
	}
	got, err := LoadWordsFile(path, sy)
	if err != nil {
		t.Fatal(err)
	}
	for id := range ids.Word(wt.Len()) {
		if got.Word(id) != wt.Word(id) || !reflect.DeepEqual(got.Pinyin(id), wt.Pinyin(id)) {
			t.Errorf("id %d: expected %q %v, got %q %v", id, wt.Word(id), wt.Pinyin(id), got.Word(id), got.Pinyin(id))
		}
	}
}

func TestLoadWordsErrors(t *testing.T) {
	sy, _ := loadFixture(t)
	if err := LoadWords(strings.NewReader("中 zhong\n国 gou\n"), sy, NewWordTable()); !errors.Is(err, ErrUnknownSyllable) {
		t.Errorf("expected ErrUnknownSyllable, got %v", err)
	}
	if err := LoadWords(strings.NewReader("中 zhong\n中 zhong\n"), sy, NewWordTable()); err == nil {
		t.Error("expected duplicate error")
	}
}

func TestAnnotate(t *testing.T) {
	sy, _ := loadFixture(t)
	a := NewAnnotator(sy)

	got, err := a.Annotate("中国人")
	if err != nil {
		t.Fatal(err)
	}
	want := []ids.Syllable{sy.Lookup("zhong"), sy.Lookup("guo"), sy.Lookup("ren")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if _, err := a.Annotate("abc"); !errors.Is(err, ErrNoReading) {
		t.Errorf("expected ErrNoReading, got %v", err)
	}
	if _, err := a.Annotate("天"); !errors.Is(err, ErrUnknownSyllable) {
		t.Errorf("expected ErrUnknownSyllable, got %v", err)
	}
}
