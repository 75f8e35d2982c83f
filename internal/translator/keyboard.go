package translator

import (
	"math"
	"unicode"
)

var keyboardRows = []string{
	"qwertyuiop",
	"asdfghjkl",
	"zxcvbnm",
}

var keyPos = func() map[rune][2]int {
	m := make(map[rune][2]int)
	for r, row := range keyboardRows {
		for c, ch := range row {
			m[ch] = [2]int{r, c}
		}
	}
	return m
}()

// Pairs confused for reasons other than key geometry: v stands for ü, and
// n/l and f/h are merged in several dialects.
var specialSubstitutions = map[[2]rune]float64{
	{'v', 'u'}: 0.2, {'u', 'v'}: 0.2,
	{'n', 'l'}: 0.4, {'l', 'n'}: 0.4,
	{'f', 'h'}: 0.5, {'h', 'f'}: 0.5,
}

func keyDistance(a, b rune) float64 {
	pa, oka := keyPos[unicode.ToLower(a)]
	pb, okb := keyPos[unicode.ToLower(b)]
	if !oka || !okb {
		return 2.5
	}
	dr := float64(pa[0] - pb[0])
	dc := float64(pa[1] - pb[1])
	return math.Sqrt(dr*dr + dc*dc)
}

// keyTiers prices substitutions of keys further apart than direct
// neighbours, which cost KeyboardNearSub.
var keyTiers = []struct{ upTo, cost float64 }{
	{1.5, 0.8},
	{2.2, 1.2},
	{math.Inf(1), 1.8},
}

func (s *suggester) substitutionCost(a, b rune) float64 {
	a, b = unicode.ToLower(a), unicode.ToLower(b)
	if v, ok := specialSubstitutions[[2]rune{a, b}]; ok {
		return v
	}
	d := keyDistance(a, b)
	if d <= 1.0 {
		return s.cfg.KeyboardNearSub
	}
	for _, t := range keyTiers {
		if d <= t.upTo {
			return t.cost
		}
	}
	return keyTiers[len(keyTiers)-1].cost
}
