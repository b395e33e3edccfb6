package corrector

import (
	mapset "github.com/deckarep/golang-set/v2"
)

const letters = "abcdefghijklmnopqrstuvwxyz"

// edits1 returns every string one deletion, transposition, replacement or
// insertion away from word, over the a-z alphabet.
func edits1(word string, into mapset.Set[string]) {
	r := []rune(word)
	for i := 0; i <= len(r); i++ {
		left, right := r[:i], r[i:]
		if len(right) > 0 {
			into.Add(string(left) + string(right[1:]))
		}
		if len(right) > 1 {
			into.Add(string(left) + string(right[1]) + string(right[0]) + string(right[2:]))
		}
		for _, c := range letters {
			if len(right) > 0 {
				into.Add(string(left) + string(c) + string(right[1:]))
			}
			into.Add(string(left) + string(c) + string(right))
		}
	}
}

// editsUpTo returns the union of the edit neighbourhoods of depths 1..n,
// where depth k applies edits1 to every string of depth k-1.
func editsUpTo(word string, n int) mapset.Set[string] {
	all := mapset.NewThreadUnsafeSet[string]()
	level := mapset.NewThreadUnsafeSet[string](word)
	for d := 0; d < n; d++ {
		next := mapset.NewThreadUnsafeSet[string]()
		for w := range level.Iter() {
			edits1(w, next)
		}
		all = all.Union(next)
		level = next
	}
	return all
}
