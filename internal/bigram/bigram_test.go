package bigram

import (
	"math"
	"testing"
)

func TestGraph_Transition(t *testing.T) {
	b := NewBuilder()
	b.AddCorpus([]string{"the", "cat", "sat", "on", "the", "mat", "the", "cat"})
	g := b.Build()

	tests := []struct {
		prev, next string
		want       float64
	}{
		{"the", "cat", 2.0 / 3},
		{"the", "mat", 1.0 / 3},
		{"cat", "sat", 1},
		{"the", "dog", Floor},
		{"dog", "the", Floor},
	}
	for _, tt := range tests {
		if got := g.Transition(tt.prev, tt.next); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Transition(%q, %q) = %v, want %v", tt.prev, tt.next, got, tt.want)
		}
	}

	// the final pair is counted
	if got := g.Entry("the").Next.Count("cat"); got != 2 {
		t.Errorf("Count(the->cat) = %d, want 2", got)
	}
}

func TestGraph_Emission(t *testing.T) {
	b := NewBuilder()
	b.AddTypo("the", "teh", 3)
	b.AddTypo("the", "hte", 1)
	g := b.Build()

	if got := g.Emission("teh", "the"); got != 0.75 {
		t.Errorf("Emission(teh|the) = %v, want 0.75", got)
	}
	if got := g.Emission("tje", "the"); got != Floor {
		t.Errorf("Emission(tje|the) = %v, want floor", got)
	}
	if got := g.Emission("teh", "ten"); got != Floor {
		t.Errorf("Emission(teh|ten) = %v, want floor", got)
	}
}

func TestMultiset_Nil(t *testing.T) {
	var s *Multiset
	if s.Count("x") != 0 || s.Total() != 0 || s.Freq("x") != Floor {
		t.Error("nil multiset should behave as empty")
	}
	if len(s.Counts()) != 0 {
		t.Error("nil multiset Counts not empty")
	}
}

func TestGraph_Short(t *testing.T) {
	b := NewBuilder()
	b.AddCorpus(nil)
	b.AddCorpus([]string{"alone"})
	if g := b.Build(); g.Len() != 0 {
		t.Errorf("Len = %d, want 0", g.Len())
	}
}
