package corrector

import "strings"

// collapseRuns cuts every run of match or more identical characters down to
// keep characters, e.g. "soooo" -> "soo" for match=3, keep=2.
func collapseRuns(s string, match, keep int) string {
	r := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(r); {
		j := i
		for j < len(r) && r[j] == r[i] {
			j++
		}
		n := j - i
		if n >= match {
			n = keep
		}
		for k := 0; k < n; k++ {
			b.WriteRune(r[i])
		}
		i = j
	}
	return b.String()
}

// normalize lowercases first so mixed-case runs like "SoOoO" collapse too.
func (sc *SpellCorrector) normalize(word string) string {
	cfg := sc.config
	word = strings.ToLower(word)
	if cfg.CollapseElongation {
		word = collapseRuns(word, cfg.ElongationRunToMatch, cfg.ElongationRunToKeep)
	}
	return word
}

func isTitle(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) == string(r[0]) && strings.ToLower(string(r[1:])) == string(r[1:])
}

func isUpper(s string) bool { return strings.ToUpper(s) == s }

func title(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}

// restoreCase applies the casing pattern of orig to the lowercase word.
func restoreCase(orig, word string) string {
	switch {
	case len([]rune(orig)) > 1 && isUpper(orig):
		return strings.ToUpper(word)
	case isTitle(orig):
		return title(word)
	}
	return word
}
