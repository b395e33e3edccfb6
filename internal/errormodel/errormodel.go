// Package errormodel learns how typists corrupt words from labelled
// (typo, correct) pairs and scores candidate corrections with it.
package errormodel

import (
	"errors"
	"fmt"
	"math"
	"unicode"
)

// DefaultSubstitution is returned by Sub for pairs never observed.
const DefaultSubstitution = 1e-4

var (
	ErrEmptyLabelledSet    = errors.New("no labelled typo pairs")
	ErrNoCorrectCharacters = errors.New("labelled pairs contain no correct characters")
)

// Params holds the learned probabilities.
type Params struct {
	// Substitution[typed][correct] is P(typed | correct).
	Substitution    map[rune]map[rune]float64
	Insertion       float64
	Deletion        float64
	Swap            float64
	AvgEditDistance float64
}

// ErrorModel is a read-only character error model.
type ErrorModel struct {
	p Params
}

// New wraps already normalized parameters. The maps are copied.
func New(p Params) *ErrorModel {
	sub := make(map[rune]map[rune]float64, len(p.Substitution))
	for typed, row := range p.Substitution {
		cp := make(map[rune]float64, len(row))
		for correct, v := range row {
			cp[correct] = v
		}
		sub[typed] = cp
	}
	p.Substitution = sub
	return &ErrorModel{p: p}
}

// Sub returns P(typed | correct), or DefaultSubstitution when unseen.
func (m *ErrorModel) Sub(typed, correct rune) float64 {
	if row, ok := m.p.Substitution[typed]; ok {
		if v, ok := row[correct]; ok {
			return v
		}
	}
	return DefaultSubstitution
}

// Insertion returns the per-character probability of an extra typed character.
func (m *ErrorModel) Insertion() float64 { return m.p.Insertion }

// Deletion returns the per-character probability of a left out character.
func (m *ErrorModel) Deletion() float64 { return m.p.Deletion }

// Swap returns the probability of one adjacent transposition.
func (m *ErrorModel) Swap() float64 { return m.p.Swap }

// AvgEditDistance returns the mean edit distance per correct character.
func (m *ErrorModel) AvgEditDistance() float64 { return m.p.AvgEditDistance }

// Params returns a deep copy of the model parameters.
func (m *ErrorModel) Params() Params {
	return New(m.p).p
}

// Channel returns P(typo | correct) under the model. An exact match scores 1.
func (m *ErrorModel) Channel(typo, correct string) float64 {
	if typo == correct {
		return 1
	}
	e := Classify(typo, correct)
	if e.IsSwap() {
		return math.Pow(m.p.Swap, math.Trunc(e.Swaps))
	}
	p := math.Pow(m.p.Insertion, float64(e.Insertions)) *
		math.Pow(m.p.Deletion, float64(e.Deletions))
	for _, cp := range e.Pairs {
		p *= m.Sub(cp.Typed, cp.Correct)
	}
	return p
}

// Tally accumulates raw error counts over labelled pairs.
type Tally struct {
	Substitution map[rune]map[rune]float64
	// CorrectCount[c] is how often c was aligned as a correct character.
	CorrectCount map[rune]int
	Insertions   int
	Deletions    int
	Swaps        float64
	EditDistance int
	CorrectChars int
	Pairs        int
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{
		Substitution: make(map[rune]map[rune]float64),
		CorrectCount: make(map[rune]int),
	}
}

// Add records one labelled pair and returns its classification.
func (t *Tally) Add(typo, correct string) Edit {
	e := Classify(typo, correct)
	t.Pairs++
	t.EditDistance += e.Distance
	t.CorrectChars += len([]rune(correct))

	if e.IsSwap() {
		t.Swaps += e.Swaps
		return e
	}
	t.Insertions += e.Insertions
	t.Deletions += e.Deletions
	for _, cp := range e.Pairs {
		row, ok := t.Substitution[cp.Typed]
		if !ok {
			row = make(map[rune]float64)
			t.Substitution[cp.Typed] = row
		}
		row[cp.Correct]++
		t.CorrectCount[cp.Correct]++
	}
	return e
}

// Normalize turns the counts into an ErrorModel.
//
// Rows for typed punctuation or symbols are dropped. Each substitution count
// is divided by how often its correct character was seen; characters never
// seen as correct use the average count instead. Scalars are divided by the
// total number of correct characters.
func (t *Tally) Normalize() (*ErrorModel, error) {
	if t.Pairs == 0 {
		return nil, ErrEmptyLabelledSet
	}
	if t.CorrectChars == 0 {
		return nil, fmt.Errorf("%w (%d pairs)", ErrNoCorrectCharacters, t.Pairs)
	}

	var avg float64
	if len(t.CorrectCount) > 0 {
		sum := 0
		for _, c := range t.CorrectCount {
			sum += c
		}
		avg = float64(sum) / float64(len(t.CorrectCount))
	}

	sub := make(map[rune]map[rune]float64, len(t.Substitution))
	for typed, row := range t.Substitution {
		if isSymbol(typed) {
			continue
		}
		out := make(map[rune]float64, len(row))
		for correct, n := range row {
			div := float64(t.CorrectCount[correct])
			if div == 0 {
				div = avg
			}
			out[correct] = n / div
		}
		sub[typed] = out
	}

	total := float64(t.CorrectChars)
	return &ErrorModel{p: Params{
		Substitution:    sub,
		Insertion:       clamp(float64(t.Insertions) / total),
		Deletion:        clamp(float64(t.Deletions) / total),
		Swap:            clamp(t.Swaps / total),
		AvgEditDistance: clamp(float64(t.EditDistance) / total),
	}}, nil
}

// Train tallies every pair and normalizes the result.
func Train(pairs [][2]string) (*ErrorModel, error) {
	t := NewTally()
	for _, p := range pairs {
		t.Add(p[0], p[1])
	}
	return t.Normalize()
}

func isSymbol(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r)
}

// clamp keeps rates in [0,1]; a typo can carry more edits than its
// correct word has characters.
func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
