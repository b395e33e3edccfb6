package corrector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hbollon/go-edlib"

	"noisyspell/internal/bigram"
	"noisyspell/internal/errormodel"
	"noisyspell/internal/langmodel"
	"noisyspell/internal/trellis"
)

var (
	ErrNilModel  = errors.New("corrector: nil model")
	ErrEmptyWord = errors.New("corrector: empty word")
)

// Model is the trained state. All three parts are read-only.
type Model struct {
	LM     *langmodel.LanguageModel
	Errors *errormodel.ErrorModel
	Graph  *bigram.Graph
}

func (m *Model) withLM(lm *langmodel.LanguageModel) *Model {
	return &Model{LM: lm, Errors: m.Errors, Graph: m.Graph}
}

// WordStore persists custom dictionary words.
type WordStore interface {
	Add(ctx context.Context, word string) error
	Remove(ctx context.Context, word string) error
	All(ctx context.Context) ([]string, error)
}

type SpellCorrector struct {
	config CorrectorConfig
	log    *slog.Logger
	dict   WordStore

	base  *Model
	model atomic.Pointer[Model]

	mu          sync.Mutex // guards customWords and model swaps
	customWords map[string]bool
}

// NewSpellCorrector serves queries over a trained model. dict may be nil.
func NewSpellCorrector(ctx context.Context, cfg CorrectorConfig, model *Model, dict WordStore, logger *slog.Logger) (*SpellCorrector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if model == nil || model.LM == nil || model.Errors == nil || model.Graph == nil {
		return nil, ErrNilModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	sc := &SpellCorrector{
		config:      cfg,
		log:         logger,
		dict:        dict,
		base:        model,
		customWords: make(map[string]bool),
	}
	sc.model.Store(model)
	sc.loadCustomWords(ctx)
	return sc, nil
}

// Config returns the configuration the corrector runs with.
func (sc *SpellCorrector) Config() CorrectorConfig { return sc.config }

// Model returns the model currently answering queries, custom words included.
func (sc *SpellCorrector) Model() *Model { return sc.model.Load() }

// =====================
// Candidates
// =====================

// Candidates ranks corrections for a single word by P(word|candidate)·P(candidate).
// At most MaxStates candidates are returned; only an empty word yields none.
func (sc *SpellCorrector) Candidates(word string) []Candidate {
	return sc.candidates(sc.model.Load(), word)
}

func (sc *SpellCorrector) candidates(m *Model, word string) []Candidate {
	w := sc.normalize(word)
	if w == "" {
		return []Candidate{}
	}

	var known []string
	for c := range editsUpTo(w, sc.config.MaxEdits).Iter() {
		if m.LM.Known(c) {
			known = append(known, c)
		}
	}
	if len(known) == 0 {
		known = []string{w}
	}

	out := make([]Candidate, 0, len(known))
	for _, c := range known {
		out = append(out, Candidate{
			Word:  c,
			Score: m.Errors.Channel(w, c) * m.LM.Score(c),
		})
	}
	// descending score, ties in lexicographic order
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > sc.config.MaxStates {
		out = out[:sc.config.MaxStates]
	}
	for i := range out {
		out[i].Distance = edlib.OSADamerauLevenshteinDistance(w, out[i].Word)
	}
	return out
}

// states adapts candidate generation to the trellis.
type states struct {
	sc *SpellCorrector
	m  *Model
}

func (s states) States(observed string) []string {
	cands := s.sc.candidates(s.m, observed)
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Word
	}
	return out
}

// =====================
// Sequences
// =====================

// PredictSequence decodes the most probable correction of words.
func (sc *SpellCorrector) PredictSequence(words []string) []string {
	m := sc.model.Load()
	return trellis.NewDecoder(states{sc: sc, m: m}, m.Graph, m.LM).Decode(words)
}

var tokenRe = regexp.MustCompile(`[A-Za-z]+|\d+|\s+|[^\sA-Za-z0-9]`)

var wordRe = regexp.MustCompile(`^[A-Za-z]+$`)

// CorrectText decodes the words of text as one sequence and puts the
// corrections back in place, keeping the original casing, spacing and
// punctuation.
func (sc *SpellCorrector) CorrectText(text string) CorrectionResult {
	tokens := tokenRe.FindAllString(text, -1)

	var positions []int
	var words []string
	for i, t := range tokens {
		if wordRe.MatchString(t) {
			positions = append(positions, i)
			words = append(words, strings.ToLower(t))
		}
	}

	corrected := sc.PredictSequence(words)
	res := CorrectionResult{Original: text, Words: corrected}
	for k, idx := range positions {
		if corrected[k] != words[k] {
			tokens[idx] = restoreCase(tokens[idx], corrected[k])
			res.Changed = append(res.Changed, k)
		}
	}
	res.Corrected = strings.Join(tokens, "")
	return res
}

// =====================
// Custom dictionary
// =====================

func (sc *SpellCorrector) loadCustomWords(ctx context.Context) {
	if sc.dict == nil {
		return
	}
	words, err := sc.dict.All(ctx)
	if err != nil {
		sc.log.Warn("failed to load custom words", "error", err)
		return
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for _, w := range words {
		if lw := strings.ToLower(strings.TrimSpace(w)); lw != "" {
			sc.customWords[lw] = true
		}
	}
	sc.rebuildLocked()
	sc.log.Info("custom words loaded", "count", len(sc.customWords))
}

// rebuildLocked swaps in a model whose vocabulary is the trained one plus
// the custom words.
func (sc *SpellCorrector) rebuildLocked() {
	if len(sc.customWords) == 0 {
		sc.model.Store(sc.base)
		return
	}
	words := make([]string, 0, len(sc.customWords))
	for w := range sc.customWords {
		words = append(words, w)
	}
	score := sc.config.CustomWordFrequency / sc.config.FrequencyScale
	sc.model.Store(sc.base.withLM(sc.base.LM.With(words, score)))
}

// AddCustomWord adds a custom word to the vocabulary and the word store.
func (sc *SpellCorrector) AddCustomWord(ctx context.Context, word string) error {
	lw := strings.ToLower(strings.TrimSpace(word))
	if lw == "" {
		return ErrEmptyWord
	}
	if sc.dict != nil {
		if err := sc.dict.Add(ctx, lw); err != nil {
			return fmt.Errorf("add custom word %q: %w", lw, err)
		}
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.customWords[lw] = true
	sc.rebuildLocked()
	return nil
}

// RemoveCustomWord removes a custom word. A word that was also in the
// trained lexicon keeps its trained score.
func (sc *SpellCorrector) RemoveCustomWord(ctx context.Context, word string) error {
	lw := strings.ToLower(strings.TrimSpace(word))
	if lw == "" {
		return ErrEmptyWord
	}
	if sc.dict != nil {
		if err := sc.dict.Remove(ctx, lw); err != nil {
			return fmt.Errorf("remove custom word %q: %w", lw, err)
		}
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.customWords, lw)
	sc.rebuildLocked()
	return nil
}

// CustomWords returns the custom words in lexicographic order.
func (sc *SpellCorrector) CustomWords() []string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	out := make([]string, 0, len(sc.customWords))
	for w := range sc.customWords {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
