package ime

import (
	"pinyin/internal/acmatch"
	"pinyin/internal/ids"
	"pinyin/internal/ngram"
	"pinyin/internal/tables"
)

// lexicon finds every word whose pinyin ends at the current syllable.
type lexicon struct {
	ac *acmatch.Automaton[ids.Syllable, *Match[ids.Word]]
}

// newLexicon indexes every word from id 2 on by its recorded or inferred
// pinyin. Words with neither are unreachable.
func newLexicon(words *tables.WordTable, s *ngram.Store[ids.Word]) *lexicon {
	ac := acmatch.New[ids.Syllable, *Match[ids.Word]]()
	for id := ids.FirstWord; int(id) < words.Len(); id++ {
		py := words.Spelling(id)
		if len(py) == 0 {
			continue
		}
		n := ac.Insert(py)
		m, ok := ac.Get(n)
		if !ok {
			m = &Match[ids.Word]{Length: len(py)}
			ac.Set(n, m)
		}
		m.Targets = append(m.Targets, id)
		m.Freq += s.Unigram(id)
	}
	ac.Build()
	return &lexicon{ac: ac}
}

func (l *lexicon) cursor() cursor[ids.Word] {
	node := acmatch.Root
	return func(s ids.Syllable, visit func(*Match[ids.Word])) {
		node = l.ac.Transit(node, s)
		l.ac.ForAllValues(node, visit)
	}
}
