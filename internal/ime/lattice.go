package ime

import (
	"cmp"
	"log"
	"slices"
	"strings"

	"pinyin/internal/ids"
	"pinyin/pkg/options"
)

const debugStates = 20

// model is what a decoder plugs into the shared sweep. K is the context a
// lattice state carries, T the emitted id.
type model[K comparable, T ids.ID] interface {
	// score returns the probability of target after context from. freq is
	// the Freq of the match target came from.
	score(from K, target T, freq uint64) float64
	// next returns the context after emitting target.
	next(from K, target T) K
	// last returns the id most recently emitted in key.
	last(key K) T
	text(t T) string
	label(key K) string
}

// cursor reports every match ending at the next input syllable. It is called
// once per syllable, in input order.
type cursor[T ids.ID] func(s ids.Syllable, visit func(*Match[T]))

type state[K comparable] struct {
	prob   float64
	prev   K
	length int
}

// column holds the states ending at one position in insertion order, so the
// sweep is deterministic.
type column[K comparable] struct {
	keys   []K
	states []state[K]
	index  map[K]int
}

// relax records (prev, length) for key if prob beats the best seen. Only
// positive probabilities are recorded.
func (c *column[K]) relax(key K, prob float64, prev K, length int) bool {
	if !(prob > 0) {
		return false
	}
	if i, ok := c.index[key]; ok {
		if prob <= c.states[i].prob {
			return false
		}
		c.states[i] = state[K]{prob, prev, length}
		return true
	}
	if c.index == nil {
		c.index = make(map[K]int)
	}
	c.index[key] = len(c.keys)
	c.keys = append(c.keys, key)
	c.states = append(c.states, state[K]{prob, prev, length})
	return true
}

func (c *column[K]) get(key K) (state[K], bool) {
	i, ok := c.index[key]
	if !ok {
		return state[K]{}, false
	}
	return c.states[i], true
}

// prune drops every state below threshold.
func (c *column[K]) prune(threshold float64) {
	n := 0
	for i, st := range c.states {
		if st.prob < threshold {
			delete(c.index, c.keys[i])
			continue
		}
		c.keys[n], c.states[n] = c.keys[i], st
		c.index[c.keys[n]] = n
		n++
	}
	c.keys, c.states = c.keys[:n], c.states[:n]
}

type sweep[K comparable, T ids.ID] struct {
	m    model[K, T]
	cols []column[K]
	max  float64
}

// transit extends every state at i-Length by every target of mt.
func (s *sweep[K, T]) transit(i int, mt *Match[T]) {
	if mt.Length < 1 || i < mt.Length {
		return
	}
	from, to := &s.cols[i-mt.Length], &s.cols[i]
	for j, key := range from.keys {
		src := from.states[j].prob
		for _, t := range mt.Targets {
			p := src * s.m.score(key, t, mt.Freq)
			if to.relax(s.m.next(key, t), p, key, mt.Length) && p > s.max {
				s.max = p
			}
		}
	}
}

func (s *sweep[K, T]) dump(i int) {
	c := &s.cols[i]
	order := make([]int, len(c.keys))
	for j := range order {
		order[j] = j
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(c.states[b].prob, c.states[a].prob)
	})
	for _, j := range order[:min(debugStates, len(order))] {
		st := c.states[j]
		log.Printf("ime: pos %d: %s -> %s: %g", i, s.m.label(st.prev), s.m.label(c.keys[j]), st.prob)
	}
}

// decode runs the forward sweep from seed over syllables, then the final
// transition, and renders the best path. States at each syllable position
// are pruned when prune is set.
func decode[K comparable, T ids.ID](m model[K, T], seed K, syllables []ids.Syllable, next cursor[T], final *Match[T], o *options.DecoderOptions, prune bool) (string, error) {
	s := &sweep[K, T]{m: m, cols: make([]column[K], len(syllables)+2)}
	s.cols[0].relax(seed, 1, seed, 0)

	for j, sy := range syllables {
		i := j + 1
		s.max = 0
		next(sy, func(mt *Match[T]) { s.transit(i, mt) })
		if prune {
			s.cols[i].prune(s.max * o.FilterThreshold)
		}
		if o.Debug {
			s.dump(i)
		}
	}
	end := len(syllables) + 1
	s.transit(end, final)

	last := &s.cols[end]
	if len(last.keys) == 0 {
		return "", ErrNoPath
	}
	best := 0
	for j, st := range last.states {
		if st.prob > last.states[best].prob {
			best = j
		}
	}

	var out []T
	key, i := last.keys[best], end
	for {
		st, ok := s.cols[i].get(key)
		if !ok {
			return "", ErrNoPath
		}
		key, i = st.prev, i-st.length
		if i <= 0 {
			break
		}
		out = append(out, m.last(key))
	}

	var sb strings.Builder
	for _, t := range slices.Backward(out) {
		sb.WriteString(m.text(t))
	}
	return sb.String(), nil
}
