// Package acmatch implements an Aho-Corasick automaton over sequences of
// comparable symbols.
//
// Keys are inserted first, then Build computes failure links once. After
// Build the automaton is read-only and safe for concurrent queries. Insert
// and Build are single-writer operations and must finish before any query;
// the automaton does not check this.
package acmatch

// NodeID addresses a node in the automaton. The root is always 0.
type NodeID int32

const (
	// Root is the start state.
	Root NodeID = 0
	// NoNode marks an absent failure link. Only the root has one.
	NoNode NodeID = -1
)

type node[E comparable, V any] struct {
	children map[E]NodeID
	fail     NodeID
	value    V
	hasValue bool
}

// Automaton maps keys ([]E) to values of type V.
type Automaton[E comparable, V any] struct {
	nodes []node[E, V]
}

// New returns an automaton holding only the root.
func New[E comparable, V any]() *Automaton[E, V] {
	return &Automaton[E, V]{nodes: []node[E, V]{{fail: NoNode}}}
}

// Len returns the number of nodes, root included.
func (a *Automaton[E, V]) Len() int { return len(a.nodes) }

// Insert walks key from the root, creating missing nodes, and returns the
// terminal node. Inserting the same key again returns the same node.
func (a *Automaton[E, V]) Insert(key []E) NodeID {
	cur := Root
	for _, e := range key {
		if child, ok := a.nodes[cur].children[e]; ok {
			cur = child
			continue
		}
		child := NodeID(len(a.nodes))
		if a.nodes[cur].children == nil {
			a.nodes[cur].children = make(map[E]NodeID)
		}
		a.nodes[cur].children[e] = child
		a.nodes = append(a.nodes, node[E, V]{})
		cur = child
	}
	return cur
}

// Add inserts key and attaches v to its node, replacing any previous value.
func (a *Automaton[E, V]) Add(key []E, v V) {
	a.Set(a.Insert(key), v)
}

// Get returns the value attached to n, if any.
func (a *Automaton[E, V]) Get(n NodeID) (V, bool) {
	nd := &a.nodes[n]
	return nd.value, nd.hasValue
}

// Set attaches v to n.
func (a *Automaton[E, V]) Set(n NodeID, v V) {
	nd := &a.nodes[n]
	nd.value = v
	nd.hasValue = true
}

// Build computes failure links breadth-first. Call it once, after the last
// Insert.
func (a *Automaton[E, V]) Build() {
	queue := []NodeID{Root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for e, child := range a.nodes[cur].children {
			// Ancestors are shallower, so their failure links are final.
			a.nodes[child].fail = a.Transit(a.nodes[cur].fail, e)
			queue = append(queue, child)
		}
	}
}

// Transit returns the state reached from n on symbol e. It never fails: if
// nothing matches, the root is returned. Passing NoNode is allowed and
// behaves like the root's failure.
func (a *Automaton[E, V]) Transit(n NodeID, e E) NodeID {
	for n != NoNode {
		if child, ok := a.nodes[n].children[e]; ok {
			return child
		}
		n = a.nodes[n].fail
	}
	return Root
}

// TransitAll folds Transit over key starting at n.
func (a *Automaton[E, V]) TransitAll(n NodeID, key []E) NodeID {
	for _, e := range key {
		n = a.Transit(n, e)
	}
	return n
}

// Node returns the state reached by matching key from the root.
func (a *Automaton[E, V]) Node(key []E) NodeID {
	return a.TransitAll(Root, key)
}

// ForAllValues calls visit for every value attached to n or to a node on its
// failure chain, deepest first. These are exactly the values whose keys are
// suffixes of the path to n.
func (a *Automaton[E, V]) ForAllValues(n NodeID, visit func(V)) {
	for n != NoNode {
		nd := &a.nodes[n]
		if nd.hasValue {
			visit(nd.value)
		}
		n = nd.fail
	}
}
