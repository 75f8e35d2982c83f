package translator

import (
	"cmp"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// distCacheSize bounds the number of memoized token/spelling distances.
const distCacheSize = 1 << 16

// suggester ranks known syllable spellings by keyboard-weighted
// Damerau-Levenshtein distance to a mistyped token.
type suggester struct {
	cfg       SuggestConfig
	spellings []string
	keyboard  editCosts
	distCache *lru.Cache[string, float64] // a+"\x00"+b
}

func newSuggester(cfg SuggestConfig, spellings []string) *suggester {
	s := &suggester{cfg: cfg, spellings: spellings}
	s.keyboard = editCosts{
		insDel:    cfg.NeighborInsDel,
		transpose: cfg.TransposeCost,
		sub:       s.substitutionCost,
	}
	// Only fails for a non-positive size.
	s.distCache, _ = lru.New[string, float64](distCacheSize)
	return s
}

type candidate struct {
	term string
	cost float64
}

// Suggest returns up to TopK spellings within MaxEditDistance unit edits of
// token, cheapest first.
func (s *suggester) Suggest(token string) []string {
	token = strings.ToLower(token)
	var cands []candidate
	for _, sp := range s.spellings {
		if abs(len(sp)-len(token)) > s.cfg.MaxEditDistance {
			continue
		}
		if unitDL(token, sp) > s.cfg.MaxEditDistance {
			continue
		}
		cands = append(cands, candidate{term: sp, cost: s.weightedDL(token, sp)})
	}
	slices.SortFunc(cands, func(a, b candidate) int {
		if c := cmp.Compare(a.cost, b.cost); c != 0 {
			return c
		}
		return strings.Compare(a.term, b.term)
	})
	if len(cands) > s.cfg.TopK {
		cands = cands[:s.cfg.TopK]
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.term
	}
	return out
}

func (s *suggester) weightedDL(a, b string) float64 {
	key := a + "\x00" + b
	if v, ok := s.distCache.Get(key); ok {
		return v
	}
	d := s.keyboard.distance(a, b)
	s.distCache.Add(key, d)
	return d
}

func unitDL(a, b string) int {
	return int(unitCosts.distance(a, b))
}

// editCosts weighs the edits of an optimal string alignment distance:
// Damerau-Levenshtein where a transposed pair is not edited again.
type editCosts struct {
	insDel    float64
	transpose float64
	sub       func(a, b rune) float64 // called for differing runes only
}

var unitCosts = editCosts{
	insDel:    1,
	transpose: 1,
	sub:       func(rune, rune) float64 { return 1 },
}

func (c editCosts) distance(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	lb := len(rb)
	prev2 := make([]float64, lb+1)
	prev := make([]float64, lb+1)
	curr := make([]float64, lb+1)
	for j := range prev {
		prev[j] = float64(j) * c.insDel
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = float64(i) * c.insDel
		for j := 1; j <= lb; j++ {
			var sub float64
			if ra[i-1] != rb[j-1] {
				sub = c.sub(ra[i-1], rb[j-1])
			}
			best := min(prev[j]+c.insDel, curr[j-1]+c.insDel, prev[j-1]+sub)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				best = min(best, prev2[j-2]+c.transpose)
			}
			curr[j] = best
		}
		prev2, prev, curr = prev, curr, prev2
	}
	return prev[lb]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
