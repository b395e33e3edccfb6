// Package trellis decodes the most probable correction of a word sequence
// with a pruned Viterbi lattice.
//
// The lattice is a tree: every node keeps only its best predecessor, so it is
// stored as an arena of nodes with parent indexes and backtraced in O(depth).
package trellis

import (
	"math"
)

// Floor is applied to unknown priors.
const Floor = 1e-6

// StateSource yields the candidate true words for an observed word.
type StateSource interface {
	States(observed string) []string
}

// Chain provides first-order transition and emission probabilities.
type Chain interface {
	Transition(prev, next string) float64
	Emission(observed, word string) float64
}

// Prior scores a word on its own.
type Prior interface {
	Score(word string) float64
}

const root = 0

type node struct {
	word   string
	parent int
	depth  int
	logp   float64
}

// Node is a read-only view of a trellis node.
type Node struct {
	ID     int
	Word   string
	Parent int
	Depth  int
	// Weight is the cumulative best-path probability from the root.
	Weight float64
}

// Trellis is the lattice for one sequence. It is not safe for concurrent use.
type Trellis struct {
	states StateSource
	chain  Chain
	prior  Prior

	nodes    []node
	frontier []int
}

// New returns a trellis holding only the root.
func New(states StateSource, chain Chain, prior Prior) *Trellis {
	t := &Trellis{states: states, chain: chain, prior: prior}
	t.Reset()
	return t
}

// Reset discards everything but the root.
func (t *Trellis) Reset() {
	t.nodes = append(t.nodes[:0], node{parent: -1})
	t.frontier = append(t.frontier[:0], root)
}

// Depth returns the number of words fed so far.
func (t *Trellis) Depth() int {
	return t.nodes[t.frontier[0]].depth
}

// Len returns the number of nodes, root included.
func (t *Trellis) Len() int { return len(t.nodes) }

// Node returns node id.
func (t *Trellis) Node(id int) Node {
	n := t.nodes[id]
	return Node{ID: id, Word: n.word, Parent: n.parent, Depth: n.depth, Weight: math.Exp(n.logp)}
}

// Frontier returns the ids of the nodes at the current depth.
func (t *Trellis) Frontier() []int {
	return append([]int(nil), t.frontier...)
}

// Feed extends the lattice by one observed word.
func (t *Trellis) Feed(observed string) {
	states := t.states.States(observed)
	if len(states) == 0 {
		states = []string{observed}
	}
	depth := t.Depth() + 1
	first := depth == 1

	next := make([]int, 0, len(states))
	for _, s := range states {
		emit := math.Log(t.chain.Emission(observed, s))

		parent, best := root, emit+math.Log(prior(t.prior, s))
		if !first {
			parent = -1
			for _, id := range t.frontier {
				leaf := t.nodes[id]
				p := emit + math.Log(t.chain.Transition(leaf.word, s)) + leaf.logp
				if parent < 0 || p > best {
					parent, best = id, p
				}
			}
		}

		t.nodes = append(t.nodes, node{word: s, parent: parent, depth: depth, logp: best})
		next = append(next, len(t.nodes)-1)
	}
	t.frontier = next
}

func prior(p Prior, word string) float64 {
	if s := p.Score(word); s > 0 {
		return s
	}
	return Floor
}

// Best returns the word labels on the path to the most probable node at the
// current depth. Ties go to the node created first.
func (t *Trellis) Best() []string {
	if t.Depth() == 0 {
		return []string{}
	}
	best := t.frontier[0]
	for _, id := range t.frontier[1:] {
		if t.nodes[id].logp > t.nodes[best].logp {
			best = id
		}
	}

	out := make([]string, t.nodes[best].depth)
	for id := best; id != root; id = t.nodes[id].parent {
		out[t.nodes[id].depth-1] = t.nodes[id].word
	}
	return out
}

// Decoder decodes whole sequences. It holds no per-sequence state, so one
// Decoder may serve concurrent calls.
type Decoder struct {
	states StateSource
	chain  Chain
	prior  Prior
}

// NewDecoder returns a decoder over the given models.
func NewDecoder(states StateSource, chain Chain, prior Prior) *Decoder {
	return &Decoder{states: states, chain: chain, prior: prior}
}

// Decode returns the most probable correction of words.
func (d *Decoder) Decode(words []string) []string {
	t := New(d.states, d.chain, d.prior)
	for _, w := range words {
		t.Feed(w)
	}
	return t.Best()
}
