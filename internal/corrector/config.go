package corrector

import (
	"errors"
	"fmt"

	"noisyspell/internal/langmodel"
	"noisyspell/pkg/options"
)

var ErrInvalidConfig = errors.New("invalid corrector config")

// MaxEditsLimit bounds MaxEdits; the edit neighbourhood grows roughly 54x per
// extra depth.
const MaxEditsLimit = 3

type CorrectorConfig struct {
	MaxEdits             int
	MaxStates            int
	FrequencyScale       float64
	LemmaFallback        bool
	CustomWordFrequency  float64
	CollapseElongation   bool
	ElongationRunToKeep  int
	ElongationRunToMatch int
}

// NewConfig resolves opts over the defaults.
func NewConfig(opts ...options.Options) CorrectorConfig {
	o := options.Resolve(opts...)
	return CorrectorConfig{
		MaxEdits:             o.MaxEdits,
		MaxStates:            o.MaxStates,
		FrequencyScale:       o.FrequencyScale,
		LemmaFallback:        o.LemmaFallback,
		CustomWordFrequency:  o.CustomWordFrequency,
		CollapseElongation:   o.CollapseElongation,
		ElongationRunToKeep:  o.ElongationRunToKeep,
		ElongationRunToMatch: o.ElongationRunToMatch,
	}
}

func (c CorrectorConfig) Validate() error {
	switch {
	case c.MaxEdits < 1 || c.MaxEdits > MaxEditsLimit:
		return fmt.Errorf("%w: max edits %d not in [1,%d]", ErrInvalidConfig, c.MaxEdits, MaxEditsLimit)
	case c.MaxStates < 1:
		return fmt.Errorf("%w: max states %d < 1", ErrInvalidConfig, c.MaxStates)
	case c.FrequencyScale <= 0:
		return fmt.Errorf("%w: frequency scale %v <= 0", ErrInvalidConfig, c.FrequencyScale)
	case c.CollapseElongation && (c.ElongationRunToKeep < 1 || c.ElongationRunToMatch <= c.ElongationRunToKeep):
		return fmt.Errorf("%w: elongation run %d->%d", ErrInvalidConfig, c.ElongationRunToMatch, c.ElongationRunToKeep)
	}
	return nil
}

type Candidate struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
	// Distance is the OSA edit distance between the query and Word.
	Distance int `json:"distance"`
}

type CorrectionResult struct {
	Original  string   `json:"original"`
	Corrected string   `json:"corrected"`
	Words     []string `json:"words"`
	Changed   []int    `json:"changed,omitempty"`
}

// LanguageModelOptions returns the language model options the config implies.
func (c CorrectorConfig) LanguageModelOptions() []langmodel.Option {
	if !c.LemmaFallback {
		return nil
	}
	return []langmodel.Option{langmodel.WithLemmatizer(langmodel.SnowballLemmatizer{})}
}
