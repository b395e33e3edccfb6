package langmodel

import (
	"github.com/kljensen/snowball/english"
)

// SnowballLemmatizer approximates lemmatization with the English Porter2
// stemmer. A stem only counts when it is itself a vocabulary word, which
// keeps over-stemmed forms from resolving.
type SnowballLemmatizer struct{}

func (SnowballLemmatizer) Lemma(word string) string {
	return english.Stem(word, false)
}

// MapLemmatizer resolves forms from a fixed table; unknown forms map to
// themselves.
type MapLemmatizer map[string]string

func (m MapLemmatizer) Lemma(word string) string {
	if l, ok := m[word]; ok {
		return l
	}
	return word
}
