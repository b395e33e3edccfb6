package options

// DefaultOptions matches the reference training setup: two edits deep,
// three states per trellis position.
var DefaultOptions = EngineOptions{
	MaxEdits:             2,
	MaxStates:            3,
	FrequencyScale:       100,
	LemmaFallback:        true,
	CustomWordFrequency:  1_000_000_000,
	CollapseElongation:   true,
	ElongationRunToKeep:  2,
	ElongationRunToMatch: 3,
}

type EngineOptions struct {
	MaxEdits       int     // edit depth explored by candidate generation
	MaxStates      int     // candidates kept per query and per trellis position
	FrequencyScale float64 // raw lexicon frequency is divided by this
	LemmaFallback  bool
	// CustomWordFrequency is the raw frequency given to custom dictionary words.
	CustomWordFrequency float64
	CollapseElongation  bool
	// Runs of ElongationRunToMatch or more identical characters are cut to
	// ElongationRunToKeep.
	ElongationRunToKeep  int
	ElongationRunToMatch int
}

type Options interface {
	Apply(options *EngineOptions)
}

type FuncConfig struct {
	ops func(options *EngineOptions)
}

func (w FuncConfig) Apply(conf *EngineOptions) {
	w.ops(conf)
}

func NewFuncOption(f func(options *EngineOptions)) *FuncConfig {
	return &FuncConfig{ops: f}
}

// Resolve applies opts over DefaultOptions.
func Resolve(opts ...Options) EngineOptions {
	o := DefaultOptions
	for _, opt := range opts {
		opt.Apply(&o)
	}
	return o
}

func WithMaxEdits(maxEdits int) Options {
	return NewFuncOption(func(options *EngineOptions) {
		options.MaxEdits = maxEdits
	})
}

func WithMaxStates(maxStates int) Options {
	return NewFuncOption(func(options *EngineOptions) {
		options.MaxStates = maxStates
	})
}

func WithFrequencyScale(scale float64) Options {
	return NewFuncOption(func(options *EngineOptions) {
		options.FrequencyScale = scale
	})
}

func WithCustomWordFrequency(freq float64) Options {
	return NewFuncOption(func(options *EngineOptions) {
		options.CustomWordFrequency = freq
	})
}

func WithoutLemmaFallback() Options {
	return NewFuncOption(func(options *EngineOptions) {
		options.LemmaFallback = false
	})
}

// WithoutElongationFilter keeps repeated characters as typed.
func WithoutElongationFilter() Options {
	return NewFuncOption(func(options *EngineOptions) {
		options.CollapseElongation = false
	})
}

// WithElongation sets the run lengths of the elongation filter.
func WithElongation(match, keep int) Options {
	return NewFuncOption(func(options *EngineOptions) {
		options.CollapseElongation = true
		options.ElongationRunToMatch = match
		options.ElongationRunToKeep = keep
	})
}
