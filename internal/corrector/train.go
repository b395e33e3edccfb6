package corrector

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"noisyspell/internal/bigram"
	"noisyspell/internal/dataset"
	"noisyspell/internal/errormodel"
	"noisyspell/internal/langmodel"
)

var ErrEmptyDataset = errors.New("empty dataset")

// TrainError is a configuration error raised while building a model.
type TrainError struct {
	Dataset string // corpus, lexicon or typos
	Stage   string
	Err     error
}

func (e *TrainError) Error() string {
	return fmt.Sprintf("train %s: %s: %v", e.Dataset, e.Stage, e.Err)
}

func (e *TrainError) Unwrap() error { return e.Err }

// TrainingData holds the three training inputs.
type TrainingData struct {
	Corpus  []string
	Lexicon []dataset.LexiconEntry
	Typos   []dataset.TypoPair
}

// LoadTrainingData reads the three inputs from disk.
func LoadTrainingData(corpusPath, lexiconPath, typosPath string) (TrainingData, error) {
	var data TrainingData
	var err error
	if data.Corpus, err = dataset.LoadCorpus(corpusPath); err != nil {
		return data, &TrainError{Dataset: "corpus", Stage: "load", Err: err}
	}
	if data.Lexicon, err = dataset.LoadLexicon(lexiconPath); err != nil {
		return data, &TrainError{Dataset: "lexicon", Stage: "load", Err: err}
	}
	if data.Typos, err = dataset.LoadTypos(typosPath); err != nil {
		return data, &TrainError{Dataset: "typos", Stage: "load", Err: err}
	}
	return data, nil
}

// Train builds the language model, the error model and the bigram graph in
// one pass over data.
func Train(cfg CorrectorConfig, data TrainingData, logger *slog.Logger) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	switch {
	case len(data.Corpus) == 0:
		return nil, &TrainError{Dataset: "corpus", Stage: "bigrams", Err: ErrEmptyDataset}
	case len(data.Lexicon) == 0:
		return nil, &TrainError{Dataset: "lexicon", Stage: "language model", Err: ErrEmptyDataset}
	case len(data.Typos) == 0:
		return nil, &TrainError{Dataset: "typos", Stage: "error model", Err: errormodel.ErrEmptyLabelledSet}
	}

	graph := bigram.NewBuilder()
	graph.AddCorpus(data.Corpus)

	freq := make(map[string]float64, len(data.Lexicon))
	for _, e := range data.Lexicon {
		freq[e.Word] = e.Frequency
	}
	lm := langmodel.FromFrequencies(freq, cfg.FrequencyScale, cfg.LanguageModelOptions()...)

	tally := errormodel.NewTally()
	for _, p := range data.Typos {
		tally.Add(p.Typo, p.Correct)
		graph.AddTypo(p.Correct, p.Typo, 1)
	}
	em, err := tally.Normalize()
	if err != nil {
		return nil, &TrainError{Dataset: "typos", Stage: "normalize", Err: err}
	}

	m := &Model{LM: lm, Errors: em, Graph: graph.Build()}
	logger.Info("model trained",
		"corpus_tokens", len(data.Corpus),
		"vocabulary", lm.Len(),
		"labelled_pairs", tally.Pairs,
		"graph_words", m.Graph.Len(),
		"insertion", em.Insertion(),
		"deletion", em.Deletion(),
		"swap", em.Swap(),
		"elapsed", time.Since(start),
	)
	return m, nil
}
