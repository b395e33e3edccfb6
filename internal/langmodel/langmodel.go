// Package langmodel maps known words to a plausibility score, falling back
// to a word's lemma when the surface form was never seen.
package langmodel

import (
	"sort"
	"sync"
)

// Floor is the score of a word that is neither known nor lemma-resolvable.
const Floor = 1e-6

// Lemmatizer reduces an inflected form to its base form.
type Lemmatizer interface {
	Lemma(word string) string
}

// LemmaCache memoizes surface word -> lemma resolutions. Only successful
// resolutions are stored and nothing is evicted, so it is bounded by the
// number of distinct surface forms whose lemma is in the vocabulary.
// Safe for concurrent use.
type LemmaCache struct {
	m sync.Map // map[string]string
}

// NewLemmaCache returns an empty cache.
func NewLemmaCache() *LemmaCache { return &LemmaCache{} }

// Get returns the memoized lemma for word.
func (c *LemmaCache) Get(word string) (string, bool) {
	v, ok := c.m.Load(word)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Put stores lemma for word unless one is already there, and returns the
// stored value.
func (c *LemmaCache) Put(word, lemma string) string {
	v, _ := c.m.LoadOrStore(word, lemma)
	return v.(string)
}

// Len returns the number of memoized words.
func (c *LemmaCache) Len() int {
	n := 0
	c.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Option configures a LanguageModel.
type Option func(*LanguageModel)

// WithLemmatizer enables lemma fallback through l. A nil l disables it.
func WithLemmatizer(l Lemmatizer) Option {
	return func(m *LanguageModel) { m.lemmatizer = l }
}

// WithCache makes the model memoize lemmas into c, so a cache can outlive a
// model. Share c only between models over the same vocabulary; a lemma
// cached by one is ignored by another that does not know it.
func WithCache(c *LemmaCache) Option {
	return func(m *LanguageModel) { m.cache = c }
}

// LanguageModel is an immutable word -> score table.
type LanguageModel struct {
	scores     map[string]float64
	lemmatizer Lemmatizer
	cache      *LemmaCache
}

// New builds a model from precomputed scores. Non-positive scores are
// dropped. The map is copied.
func New(scores map[string]float64, opts ...Option) *LanguageModel {
	m := &LanguageModel{scores: make(map[string]float64, len(scores))}
	for w, s := range scores {
		if s > 0 {
			m.scores[w] = s
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.cache == nil {
		m.cache = NewLemmaCache()
	}
	return m
}

// Len returns the vocabulary size.
func (m *LanguageModel) Len() int { return len(m.scores) }

// Cache returns the lemma cache owned by the model.
func (m *LanguageModel) Cache() *LemmaCache { return m.cache }

// Lemmatizer returns the configured lemmatizer, or nil.
func (m *LanguageModel) Lemmatizer() Lemmatizer { return m.lemmatizer }

// Resolve returns the vocabulary entry word stands for: itself when known,
// else its lemma when that is known.
func (m *LanguageModel) Resolve(word string) (string, bool) {
	if _, ok := m.scores[word]; ok {
		return word, true
	}
	if m.lemmatizer == nil {
		return "", false
	}
	if lemma, ok := m.cache.Get(word); ok {
		if _, known := m.scores[lemma]; known {
			return lemma, true
		}
		return "", false
	}
	lemma := m.lemmatizer.Lemma(word)
	if lemma == word || lemma == "" {
		return "", false
	}
	if _, ok := m.scores[lemma]; !ok {
		return "", false
	}
	return m.cache.Put(word, lemma), true
}

// Known reports whether word resolves to a vocabulary entry.
func (m *LanguageModel) Known(word string) bool {
	_, ok := m.Resolve(word)
	return ok
}

// Score returns the plausibility of word, or Floor when unresolvable.
func (m *LanguageModel) Score(word string) float64 {
	w, ok := m.Resolve(word)
	if !ok {
		return Floor
	}
	return m.scores[w]
}

// Exact returns the score stored for word without lemma fallback.
func (m *LanguageModel) Exact(word string) (float64, bool) {
	s, ok := m.scores[word]
	return s, ok
}

// Scores returns a copy of the score table.
func (m *LanguageModel) Scores() map[string]float64 {
	out := make(map[string]float64, len(m.scores))
	for w, s := range m.scores {
		out[w] = s
	}
	return out
}

// Words returns the vocabulary in lexicographic order.
func (m *LanguageModel) Words() []string {
	out := make([]string, 0, len(m.scores))
	for w := range m.scores {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// With returns a new model with extra words scored at score. It shares the
// lemmatizer but starts an empty lemma cache, since its vocabulary differs.
// The receiver is unchanged.
func (m *LanguageModel) With(words []string, score float64) *LanguageModel {
	scores := m.Scores()
	for _, w := range words {
		scores[w] = score
	}
	return New(scores, WithLemmatizer(m.lemmatizer))
}

// FromFrequencies scores every word as freq/scale.
func FromFrequencies(freq map[string]float64, scale float64, opts ...Option) *LanguageModel {
	scores := make(map[string]float64, len(freq))
	for w, f := range freq {
		scores[w] = f / scale
	}
	return New(scores, opts...)
}
