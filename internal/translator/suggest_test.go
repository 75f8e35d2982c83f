package translator

import (
	"math"
	"reflect"
	"testing"

	lru "github.com/hashicorp/golang-lru/v2"
)

func newTestSuggester(spellings ...string) *suggester {
	return newSuggester(DefaultConfig().Suggest, spellings)
}

func TestWeightedDL(t *testing.T) {
	s := newTestSuggester()
	cases := []struct {
		a, b string
		want float64
	}{
		{"ren", "ren", 0},
		{"rne", "ren", 0.6},
		{"nv", "nu", 0.2},
		{"lan", "nan", 0.4},
		{"hao", "jao", 0.6},
		{"hao", "ha", 0.9},
		{"", "ab", 1.8},
	}
	for _, tc := range cases {
		if got := s.weightedDL(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("weightedDL(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestUnitDL(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "acb", 1},
		{"zhong", "zong", 1},
		{"guo", "gou", 1},
		{"kitten", "sitting", 3},
	}
	for _, tc := range cases {
		if got := unitDL(tc.a, tc.b); got != tc.want {
			t.Errorf("unitDL(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSuggest(t *testing.T) {
	s := newTestSuggester("zhong", "zong", "chong", "guo", "ren", "hao")

	if got := s.Suggest("zhogn"); len(got) == 0 || got[0] != "zhong" {
		t.Errorf("expected zhong first, got %v", got)
	}
	if got := s.Suggest("GOU"); !reflect.DeepEqual(got[:1], []string{"guo"}) {
		t.Errorf("expected guo first, got %v", got)
	}
	if got := s.Suggest("xxxxxxxx"); len(got) != 0 {
		t.Errorf("expected no suggestions, got %v", got)
	}

	s.cfg.TopK = 1
	if got := s.Suggest("zhon"); len(got) != 1 {
		t.Errorf("expected one suggestion, got %v", got)
	}
}

func TestSuggestCacheBounded(t *testing.T) {
	s := newTestSuggester("zhong", "zong", "chong", "guo", "ren", "hao")
	cache, err := lru.New[string, float64](4)
	if err != nil {
		t.Fatal(err)
	}
	s.distCache = cache
	for _, tok := range []string{"zhogn", "gou", "rne", "hoa", "chogn", "zogn"} {
		s.Suggest(tok)
	}
	if n := cache.Len(); n == 0 || n > 4 {
		t.Errorf("expected between 1 and 4 cached distances, got %d", n)
	}
	if got := s.weightedDL("rne", "ren"); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("distance after eviction: %v", got)
	}
}
