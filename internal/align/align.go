// Package align computes minimum edit distance alignments between a correct
// word and a typed word.
package align

import (
	"strconv"
	"strings"
)

// Op is a single edit script operation, expressed relative to the typed word.
type Op byte

const (
	Match    Op = '=' // same character in both words
	Mismatch Op = 'X' // substituted character
	Insert   Op = 'I' // character of the correct word missing from the typo
	Delete   Op = 'D' // extra character in the typo
)

// Run is a run of identical consecutive operations.
type Run struct {
	Op  Op
	Len int
}

// Alignment is the result of aligning two strings.
type Alignment struct {
	Distance int
	Script   []Run
}

// String renders the script as a CIGAR string, e.g. "1D1=1I1=".
func (a Alignment) String() string {
	var b strings.Builder
	for _, r := range a.Script {
		b.WriteString(strconv.Itoa(r.Len))
		b.WriteByte(byte(r.Op))
	}
	return b.String()
}

// Ops expands the script into one operation per alignment column.
func (a Alignment) Ops() []Op {
	var out []Op
	for _, r := range a.Script {
		for i := 0; i < r.Len; i++ {
			out = append(out, r.Op)
		}
	}
	return out
}

// Align returns the Levenshtein alignment of typo against correct.
//
// When several minimum cost alignments exist the backtrace, walking from the
// end of both words, prefers in order: match, Insert, Delete, Mismatch. With
// that order an adjacent transposition always surfaces as "1D1=1I".
func Align(correct, typo string) Alignment {
	rc, rt := []rune(correct), []rune(typo)
	n, m := len(rc), len(rt)

	// dp[i][j] = distance between rc[:i] and rt[:j]
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
		dp[i][0] = i
	}
	for j := 0; j <= m; j++ {
		dp[0][j] = j
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := 1
			if rc[i-1] == rt[j-1] {
				cost = 0
			}
			best := dp[i-1][j-1] + cost
			if v := dp[i-1][j] + 1; v < best {
				best = v
			}
			if v := dp[i][j-1] + 1; v < best {
				best = v
			}
			dp[i][j] = best
		}
	}

	rev := make([]Op, 0, n+m)
	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && rc[i-1] == rt[j-1] && dp[i][j] == dp[i-1][j-1]:
			rev = append(rev, Match)
			i--
			j--
		case i > 0 && dp[i][j] == dp[i-1][j]+1:
			rev = append(rev, Insert)
			i--
		case j > 0 && dp[i][j] == dp[i][j-1]+1:
			rev = append(rev, Delete)
			j--
		default:
			rev = append(rev, Mismatch)
			i--
			j--
		}
	}

	var script []Run
	for k := len(rev) - 1; k >= 0; k-- {
		op := rev[k]
		if len(script) > 0 && script[len(script)-1].Op == op {
			script[len(script)-1].Len++
			continue
		}
		script = append(script, Run{Op: op, Len: 1})
	}
	return Alignment{Distance: dp[n][m], Script: script}
}
