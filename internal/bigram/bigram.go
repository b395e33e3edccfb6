// Package bigram records, per word, which words follow it in clean text and
// which misspellings were observed for it.
package bigram

// Floor is returned for transitions and emissions never observed.
const Floor = 1e-6

// Multiset counts occurrences of strings.
type Multiset struct {
	counts map[string]int
	total  int
}

func newMultiset() *Multiset { return &Multiset{counts: make(map[string]int)} }

func (s *Multiset) add(w string, n int) {
	s.counts[w] += n
	s.total += n
}

// Count returns how often w occurs.
func (s *Multiset) Count(w string) int {
	if s == nil {
		return 0
	}
	return s.counts[w]
}

// Total returns the number of recorded occurrences.
func (s *Multiset) Total() int {
	if s == nil {
		return 0
	}
	return s.total
}

// Freq returns Count(w)/Total(), or Floor when either is zero.
func (s *Multiset) Freq(w string) float64 {
	n, total := s.Count(w), s.Total()
	if n == 0 || total == 0 {
		return Floor
	}
	return float64(n) / float64(total)
}

// Counts returns a copy of the underlying counts.
func (s *Multiset) Counts() map[string]int {
	out := make(map[string]int)
	if s == nil {
		return out
	}
	for w, n := range s.counts {
		out[w] = n
	}
	return out
}

// Entry is the record kept for one word.
type Entry struct {
	Next  *Multiset
	Typos *Multiset
}

// Graph is a frozen bigram + observed-typo table. Safe for concurrent reads.
type Graph struct {
	entries map[string]*Entry
}

// Len returns the number of words with a record.
func (g *Graph) Len() int { return len(g.entries) }

// Entry returns the record for word, or nil.
func (g *Graph) Entry(word string) *Entry { return g.entries[word] }

// Transition returns P(next | prev) estimated from successor counts.
func (g *Graph) Transition(prev, next string) float64 {
	e := g.entries[prev]
	if e == nil {
		return Floor
	}
	return e.Next.Freq(next)
}

// Emission returns P(observed | word) estimated from recorded typos.
func (g *Graph) Emission(observed, word string) float64 {
	e := g.entries[word]
	if e == nil {
		return Floor
	}
	return e.Typos.Freq(observed)
}

// Words calls fn for every word with a record, in no particular order.
func (g *Graph) Words(fn func(word string, e *Entry)) {
	for w, e := range g.entries {
		fn(w, e)
	}
}

// Builder accumulates counts. It is not safe for concurrent use.
type Builder struct {
	entries map[string]*Entry
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{entries: make(map[string]*Entry)}
}

func (b *Builder) entry(w string) *Entry {
	e, ok := b.entries[w]
	if !ok {
		e = &Entry{Next: newMultiset(), Typos: newMultiset()}
		b.entries[w] = e
	}
	return e
}

// AddCorpus records every adjacent pair of tokens.
func (b *Builder) AddCorpus(tokens []string) {
	for i := 0; i+1 < len(tokens); i++ {
		b.AddSuccessor(tokens[i], tokens[i+1], 1)
	}
}

// AddSuccessor records that next followed prev n times.
func (b *Builder) AddSuccessor(prev, next string, n int) {
	b.entry(prev).Next.add(next, n)
}

// AddTypo records that typo was observed for word n times.
func (b *Builder) AddTypo(word, typo string, n int) {
	b.entry(word).Typos.add(typo, n)
}

// Build freezes the counts into a Graph. The builder must not be used
// afterwards.
func (b *Builder) Build() *Graph {
	g := &Graph{entries: b.entries}
	b.entries = nil
	return g
}
