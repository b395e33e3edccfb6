package corrector

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"
	"testing"

	"noisyspell/internal/bigram"
	"noisyspell/internal/dataset"
	"noisyspell/internal/errormodel"
	"noisyspell/internal/langmodel"
	"noisyspell/pkg/options"
)

func identities(p float64, chars string) map[rune]map[rune]float64 {
	sub := make(map[rune]map[rune]float64)
	for _, c := range chars {
		sub[c] = map[rune]float64{c: p}
	}
	return sub
}

func newTestCorrector(t *testing.T, m *Model, opts ...options.Options) *SpellCorrector {
	t.Helper()
	opts = append([]options.Options{options.WithoutLemmaFallback()}, opts...)
	sc, err := NewSpellCorrector(context.Background(), NewConfig(opts...), m, nil, nil)
	if err != nil {
		t.Fatalf("NewSpellCorrector: %v", err)
	}
	return sc
}

func helloModel() *Model {
	return &Model{
		LM: langmodel.New(map[string]float64{"hello": 50, "help": 10}),
		Errors: errormodel.New(errormodel.Params{
			Substitution: identities(1, "helo"),
			Deletion:     1e-4,
			Insertion:    1e-4,
		}),
		Graph: bigram.NewBuilder().Build(),
	}
}

// teaModel ranks "tea" first for "teh" on its own while the corpus strongly
// suggests "the" before "cat".
func teaModel() *Model {
	sub := identities(0.9, "tecat")
	sub['h'] = map[rune]float64{'a': 0.05}

	b := bigram.NewBuilder()
	b.AddCorpus([]string{"the", "cat", "sat", "on", "the", "mat", "the", "cat"})
	return &Model{
		LM: langmodel.New(map[string]float64{"tea": 90, "the": 50, "ten": 10, "cat": 8}),
		Errors: errormodel.New(errormodel.Params{
			Substitution: sub,
			Swap:         1e-3,
			Insertion:    1e-3,
			Deletion:     1e-3,
		}),
		Graph: b.Build(),
	}
}

func words(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Word
	}
	return out
}

func TestCandidates_LanguageModelBreaksTie(t *testing.T) {
	sc := newTestCorrector(t, helloModel())
	got := sc.Candidates("helo")

	if want := []string{"hello", "help"}; !reflect.DeepEqual(words(got), want) {
		t.Fatalf("Candidates(helo) = %v, want %v", words(got), want)
	}
	if got[0].Distance != 1 || got[1].Distance != 1 {
		t.Errorf("distances = %d, %d; want 1, 1", got[0].Distance, got[1].Distance)
	}
}

func TestCandidates_Properties(t *testing.T) {
	sc := newTestCorrector(t, teaModel(), options.WithMaxStates(2))

	for _, w := range []string{"teh", "cat", "tha", "x", "zzzzzz", "TEH", "ca"} {
		t.Run(w, func(t *testing.T) {
			got := sc.Candidates(w)
			if len(got) == 0 {
				t.Fatal("empty result for non-empty word")
			}
			if len(got) > 2 {
				t.Errorf("len = %d, want <= 2", len(got))
			}
			if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i].Score > got[j].Score }) {
				t.Errorf("not sorted by score: %v", got)
			}
		})
	}
}

func TestCandidates_IdentityFallback(t *testing.T) {
	sc := newTestCorrector(t, teaModel())
	got := sc.Candidates("Qwxzvbk")
	if len(got) != 1 || got[0].Word != "qwxzvbk" {
		t.Fatalf("Candidates = %v, want identity fallback", got)
	}
	if got[0].Score != langmodel.Floor {
		t.Errorf("Score = %v, want %v", got[0].Score, langmodel.Floor)
	}
}

func TestCandidates_Empty(t *testing.T) {
	sc := newTestCorrector(t, teaModel())
	if got := sc.Candidates(""); len(got) != 0 {
		t.Errorf("Candidates(\"\") = %v, want empty", got)
	}
}

func TestCandidates_ExactMatch(t *testing.T) {
	sc := newTestCorrector(t, teaModel())
	got := sc.Candidates("cat")
	if got[0].Word != "cat" || got[0].Score != 8 {
		t.Errorf("Candidates(cat)[0] = %+v, want cat scored 1*8", got[0])
	}
}

func TestCandidates_TieBreakLexicographic(t *testing.T) {
	m := &Model{
		LM:     langmodel.New(map[string]float64{"bat": 1, "cat": 1, "hat": 1}),
		Errors: errormodel.New(errormodel.Params{}),
		Graph:  bigram.NewBuilder().Build(),
	}
	sc := newTestCorrector(t, m)
	if got := words(sc.Candidates("xat")); !reflect.DeepEqual(got, []string{"bat", "cat", "hat"}) {
		t.Errorf("Candidates(xat) = %v, want lexicographic ties", got)
	}
}

func TestNormalize_Elongation(t *testing.T) {
	sc := newTestCorrector(t, teaModel())
	for _, in := range []string{"SOOOOO", "SoOoO", "sooo"} {
		if got := sc.normalize(in); got != "soo" {
			t.Errorf("normalize(%q) = %q, want soo", in, got)
		}
	}
	if got := sc.Candidates("caaaaat"); got[0].Word != "cat" {
		t.Errorf("Candidates(caaaaat)[0] = %v, want cat", got[0])
	}

	raw := newTestCorrector(t, teaModel(), options.WithoutElongationFilter())
	if got := raw.normalize("sooo"); got != "sooo" {
		t.Errorf("normalize without filter = %q", got)
	}
}

func TestCandidates_LemmaFallback(t *testing.T) {
	m := teaModel()
	m.LM = langmodel.New(m.LM.Scores(), langmodel.WithLemmatizer(langmodel.MapLemmatizer{"cats": "cat"}))
	sc := newTestCorrector(t, m)

	got := sc.Candidates("cats")
	if got[0].Word != "cats" || got[0].Score != 8 {
		t.Errorf("Candidates(cats)[0] = %+v, want cats scored as cat", got[0])
	}
	if lemma, ok := m.LM.Cache().Get("cats"); !ok || lemma != "cat" {
		t.Errorf("lemma cache[cats] = %q, %v", lemma, ok)
	}
}

func TestPredictSequence_UsesContext(t *testing.T) {
	sc := newTestCorrector(t, teaModel())

	if got := sc.Candidates("teh"); got[0].Word != "tea" {
		t.Fatalf("unigram best for teh = %q, want tea", got[0].Word)
	}
	if got := sc.PredictSequence([]string{"teh"}); !reflect.DeepEqual(got, []string{"tea"}) {
		t.Errorf("PredictSequence([teh]) = %v, want [tea]", got)
	}
	got := sc.PredictSequence([]string{"teh", "cat"})
	if want := []string{"the", "cat"}; !reflect.DeepEqual(got, want) {
		t.Errorf("PredictSequence = %v, want %v", got, want)
	}
	if got := sc.PredictSequence(nil); len(got) != 0 {
		t.Errorf("PredictSequence(nil) = %v, want empty", got)
	}
}

func TestCorrectText(t *testing.T) {
	sc := newTestCorrector(t, teaModel())
	res := sc.CorrectText("Teh  cat, 42!")

	if res.Corrected != "The  cat, 42!" {
		t.Errorf("Corrected = %q", res.Corrected)
	}
	if !reflect.DeepEqual(res.Words, []string{"the", "cat"}) {
		t.Errorf("Words = %v", res.Words)
	}
	if !reflect.DeepEqual(res.Changed, []int{0}) {
		t.Errorf("Changed = %v, want [0]", res.Changed)
	}
}

func TestRestoreCase(t *testing.T) {
	tests := []struct{ orig, word, want string }{
		{"Teh", "the", "The"},
		{"TEH", "the", "THE"},
		{"teh", "the", "the"},
		{"I", "a", "A"},
	}
	for _, tt := range tests {
		if got := restoreCase(tt.orig, tt.word); got != tt.want {
			t.Errorf("restoreCase(%q, %q) = %q, want %q", tt.orig, tt.word, got, tt.want)
		}
	}
}

type memStore struct {
	mu    sync.Mutex
	words map[string]bool
	err   error
}

func (s *memStore) Add(_ context.Context, w string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.words[w] = true
	return nil
}

func (s *memStore) Remove(_ context.Context, w string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.words, w)
	return nil
}

func (s *memStore) All(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for w := range s.words {
		out = append(out, w)
	}
	return out, s.err
}

func TestCustomWords(t *testing.T) {
	ctx := context.Background()
	store := &memStore{words: map[string]bool{"kubectl": true}}
	m := teaModel()
	sc, err := NewSpellCorrector(ctx, NewConfig(options.WithoutLemmaFallback()), m, store, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := sc.Candidates("kubectl"); got[0].Word != "kubectl" {
		t.Errorf("stored custom word not loaded: %v", got)
	}
	if err := sc.AddCustomWord(ctx, " Cat "); err != nil {
		t.Fatal(err)
	}
	if !store.words["cat"] {
		t.Error("custom word not persisted")
	}
	if got := sc.Candidates("cat")[0].Score; got != 1e7 {
		t.Errorf("custom score = %v, want 1e7", got)
	}
	if m.LM.Known("kubectl") {
		t.Error("trained model mutated")
	}

	if err := sc.RemoveCustomWord(ctx, "cat"); err != nil {
		t.Fatal(err)
	}
	if got := sc.Candidates("cat")[0].Score; got != 8 {
		t.Errorf("score after removal = %v, want trained 8", got)
	}
	if got := sc.CustomWords(); !reflect.DeepEqual(got, []string{"kubectl"}) {
		t.Errorf("CustomWords = %v", got)
	}

	if err := sc.AddCustomWord(ctx, "  "); !errors.Is(err, ErrEmptyWord) {
		t.Errorf("empty word: err = %v", err)
	}
	store.err = errors.New("down")
	if err := sc.AddCustomWord(ctx, "kubelet"); err == nil {
		t.Error("store failure not reported")
	}
	if sc.Model().LM.Known("kubelet") {
		t.Error("word added despite store failure")
	}
}

func TestCustomWords_RemovalDropsLemma(t *testing.T) {
	ctx := context.Background()
	m := teaModel()
	m.LM = langmodel.New(m.LM.Scores(), langmodel.WithLemmatizer(langmodel.MapLemmatizer{"kubelets": "kubelet"}))
	sc := newTestCorrector(t, m)

	if err := sc.AddCustomWord(ctx, "kubelet"); err != nil {
		t.Fatal(err)
	}
	if got := sc.Model().LM.Score("kubelets"); got != 1e7 {
		t.Fatalf("Score(kubelets) with custom word = %v, want 1e7", got)
	}
	if err := sc.RemoveCustomWord(ctx, "kubelet"); err != nil {
		t.Fatal(err)
	}

	lm := sc.Model().LM
	if lm.Known("kubelets") {
		t.Error("Known(kubelets) after removal, want false")
	}
	if got := lm.Score("kubelets"); got != langmodel.Floor {
		t.Errorf("Score(kubelets) after removal = %v, want %v", got, langmodel.Floor)
	}
	for _, c := range sc.Candidates("kubelets") {
		if c.Score <= 0 {
			t.Errorf("candidate %+v scored zero", c)
		}
	}
	if _, ok := m.LM.Cache().Get("kubelets"); ok {
		t.Error("trained model cache holds a lemma outside its vocabulary")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		opts []options.Options
		ok   bool
	}{
		{"defaults", nil, true},
		{"max edits 3", []options.Options{options.WithMaxEdits(MaxEditsLimit)}, true},
		{"max edits 0", []options.Options{options.WithMaxEdits(0)}, false},
		{"max edits over limit", []options.Options{options.WithMaxEdits(MaxEditsLimit + 1)}, false},
		{"zero scale", []options.Options{options.WithFrequencyScale(0)}, false},
		{"keep >= match", []options.Options{options.WithElongation(2, 2)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opts...).Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNewSpellCorrector_Invalid(t *testing.T) {
	ctx := context.Background()
	if _, err := NewSpellCorrector(ctx, NewConfig(), nil, nil, nil); !errors.Is(err, ErrNilModel) {
		t.Errorf("nil model: err = %v", err)
	}
	if _, err := NewSpellCorrector(ctx, NewConfig(options.WithMaxStates(0)), teaModel(), nil, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("max states 0: err = %v", err)
	}
}

func trainingData() TrainingData {
	return TrainingData{
		Corpus: []string{"the", "cat", "sat", "on", "the", "mat", "and", "the", "cat", "ran"},
		Lexicon: []dataset.LexiconEntry{
			{Word: "the", Frequency: 5000},
			{Word: "cat", Frequency: 800},
			{Word: "sat", Frequency: 300},
			{Word: "on", Frequency: 4000},
			{Word: "mat", Frequency: 100},
			{Word: "and", Frequency: 4500},
			{Word: "ran", Frequency: 200},
		},
		Typos: []dataset.TypoPair{
			{Typo: "teh", Correct: "the"},
			{Typo: "hte", Correct: "the"},
			{Typo: "cta", Correct: "cat"},
			{Typo: "catt", Correct: "cat"},
			{Typo: "sta", Correct: "sat"},
			{Typo: "mta", Correct: "mat"},
			{Typo: "nad", Correct: "and"},
			{Typo: "rn", Correct: "ran"},
		},
	}
}

func TestTrain(t *testing.T) {
	m, err := Train(NewConfig(options.WithoutLemmaFallback()), trainingData(), nil)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if got := m.LM.Score("the"); got != 50 {
		t.Errorf("LM(the) = %v, want 50", got)
	}
	if got := m.Graph.Emission("teh", "the"); got != 0.5 {
		t.Errorf("Emission(teh|the) = %v, want 0.5", got)
	}
	if got := m.Graph.Transition("the", "cat"); got != 2.0/3 {
		t.Errorf("Transition(the,cat) = %v, want 2/3", got)
	}
	for name, v := range map[string]float64{"ins": m.Errors.Insertion(), "del": m.Errors.Deletion(), "swap": m.Errors.Swap()} {
		if v <= 0 || v > 1 {
			t.Errorf("%s = %v, want in (0,1]", name, v)
		}
	}

	sc := newTestCorrector(t, m)
	got := sc.PredictSequence([]string{"teh", "cta", "sat"})
	if want := []string{"the", "cat", "sat"}; !reflect.DeepEqual(got, want) {
		t.Errorf("PredictSequence = %v, want %v", got, want)
	}
}

func TestTrain_ConfigurationErrors(t *testing.T) {
	cfg := NewConfig(options.WithoutLemmaFallback())
	tests := []struct {
		name    string
		mutate  func(*TrainingData)
		dataset string
		target  error
	}{
		{"no typos", func(d *TrainingData) { d.Typos = nil }, "typos", errormodel.ErrEmptyLabelledSet},
		{"no lexicon", func(d *TrainingData) { d.Lexicon = nil }, "lexicon", ErrEmptyDataset},
		{"no corpus", func(d *TrainingData) { d.Corpus = nil }, "corpus", ErrEmptyDataset},
		{"empty correct words", func(d *TrainingData) { d.Typos = []dataset.TypoPair{{Typo: "", Correct: ""}} }, "typos", errormodel.ErrNoCorrectCharacters},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := trainingData()
			tt.mutate(&data)
			_, err := Train(cfg, data, nil)
			if !errors.Is(err, tt.target) {
				t.Fatalf("err = %v, want %v", err, tt.target)
			}
			var te *TrainError
			if !errors.As(err, &te) || te.Dataset != tt.dataset {
				t.Errorf("err = %v, want TrainError for %s", err, tt.dataset)
			}
		})
	}
}

func TestCandidates_Concurrent(t *testing.T) {
	m, err := Train(NewConfig(), trainingData(), nil)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := NewSpellCorrector(context.Background(), NewConfig(), m, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := sc.Candidates("cats")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := sc.Candidates("cats"); !reflect.DeepEqual(got, want) {
				t.Errorf("Candidates differ under concurrency: %v vs %v", got, want)
			}
			sc.PredictSequence([]string{"teh", "cats"})
		}()
	}
	wg.Wait()
}
