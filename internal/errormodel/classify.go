package errormodel

import (
	"sort"

	"noisyspell/internal/align"
)

// CharPair is one aligned (typed, correct) character pair.
type CharPair struct {
	Typed   rune
	Correct rune
}

// Edit describes how a typo diverges from its correct word.
type Edit struct {
	Distance int
	// Swaps is non-zero only for pure transpositions; nothing else is set then.
	Swaps float64
	// Insertions counts extra characters the typist added.
	Insertions int
	// Deletions counts characters the typist left out.
	Deletions int
	// Pairs are the aligned characters after realignment, placeholders excluded.
	Pairs []CharPair
}

// IsSwap reports whether the edit was classified as a transposition.
func (e Edit) IsSwap() bool { return e.Swaps > 0 }

// Classify aligns typo against correct and classifies the divergence either
// as a pure transposition or as a general insert/delete/substitute edit.
func Classify(typo, correct string) Edit {
	a := align.Align(correct, typo)
	rt, rc := []rune(typo), []rune(correct)

	if len(rt) == len(rc) && isAnagram(rt, rc) && hasSwapRun(a.Script) {
		mismatched := 0
		for i := range rt {
			if rt[i] != rc[i] {
				mismatched++
			}
		}
		return Edit{Distance: a.Distance, Swaps: float64(mismatched) / 2}
	}

	e := Edit{Distance: a.Distance}
	var ti, ci int
	for _, op := range a.Ops() {
		switch op {
		case align.Match, align.Mismatch:
			e.Pairs = append(e.Pairs, CharPair{Typed: rt[ti], Correct: rc[ci]})
			ti++
			ci++
		case align.Insert:
			// placeholder position: never paired
			e.Deletions++
			ci++
		case align.Delete:
			// extra typed character is dropped from the working copy
			e.Insertions++
			ti++
		}
	}
	return e
}

// hasSwapRun reports whether the script contains a unit indel, a unit match
// and the opposite unit indel in sequence.
func hasSwapRun(script []align.Run) bool {
	for k := 0; k+2 < len(script); k++ {
		a, m, b := script[k], script[k+1], script[k+2]
		if a.Len != 1 || m.Len != 1 || b.Len != 1 || m.Op != align.Match {
			continue
		}
		if (a.Op == align.Delete && b.Op == align.Insert) || (a.Op == align.Insert && b.Op == align.Delete) {
			return true
		}
	}
	return false
}

func isAnagram(a, b []rune) bool {
	x := append([]rune(nil), a...)
	y := append([]rune(nil), b...)
	sort.Slice(x, func(i, j int) bool { return x[i] < x[j] })
	sort.Slice(y, func(i, j int) bool { return y[i] < y[j] })
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
