// Package dataset reads the three training inputs: a whitespace tokenized
// corpus, a word,frequency lexicon and typo,correct pairs.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var ErrMalformed = errors.New("malformed dataset row")

// LexiconEntry is one row of the frequency lexicon.
type LexiconEntry struct {
	Word      string
	Frequency float64
}

// TypoPair is one labelled misspelling.
type TypoPair struct {
	Typo    string
	Correct string
}

// ParseError reports a malformed row.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReadCorpus splits r on whitespace.
func ReadCorpus(r io.Reader) ([]string, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	s.Split(bufio.ScanWords)
	var words []string
	for s.Scan() {
		words = append(words, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return words, nil
}

func newCSV(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return cr
}

// forEachRow calls fn with every non-blank row and its 1-based line.
func forEachRow(r io.Reader, fn func(line int, rec []string) error) error {
	cr := newCSV(r)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var ce *csv.ParseError
			line := 0
			if errors.As(err, &ce) {
				line = ce.Line
			}
			return &ParseError{Line: line, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
		}
		line, _ := cr.FieldPos(0)
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
}

// ReadLexicon parses "word,frequency" rows. A first row whose frequency is
// not a number is taken as a header and skipped.
func ReadLexicon(r io.Reader) ([]LexiconEntry, error) {
	var out []LexiconEntry
	err := forEachRow(r, func(line int, rec []string) error {
		if len(rec) < 2 {
			return &ParseError{Line: line, Err: fmt.Errorf("%w: want word,frequency, got %d fields", ErrMalformed, len(rec))}
		}
		word := strings.TrimSpace(rec[0])
		f, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			if len(out) == 0 && line == 1 {
				return nil
			}
			return &ParseError{Line: line, Err: fmt.Errorf("%w: frequency %q", ErrMalformed, rec[1])}
		}
		if word == "" || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return &ParseError{Line: line, Err: fmt.Errorf("%w: entry %q,%q", ErrMalformed, rec[0], rec[1])}
		}
		out = append(out, LexiconEntry{Word: word, Frequency: f})
		return nil
	})
	return out, err
}

// ReadTypos parses "typo,correct" rows.
func ReadTypos(r io.Reader) ([]TypoPair, error) {
	var out []TypoPair
	err := forEachRow(r, func(line int, rec []string) error {
		if len(rec) < 2 {
			return &ParseError{Line: line, Err: fmt.Errorf("%w: want typo,correct, got %d fields", ErrMalformed, len(rec))}
		}
		typo, correct := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if typo == "" || correct == "" {
			return &ParseError{Line: line, Err: fmt.Errorf("%w: empty field", ErrMalformed)}
		}
		out = append(out, TypoPair{Typo: typo, Correct: correct})
		return nil
	})
	return out, err
}

func openWith[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	v, err := read(f)
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Path = path
	}
	if err != nil {
		return zero, err
	}
	return v, nil
}

// LoadCorpus reads the corpus at path.
func LoadCorpus(path string) ([]string, error) { return openWith(path, ReadCorpus) }

// LoadLexicon reads the lexicon at path.
func LoadLexicon(path string) ([]LexiconEntry, error) { return openWith(path, ReadLexicon) }

// LoadTypos reads the labelled pairs at path.
func LoadTypos(path string) ([]TypoPair, error) { return openWith(path, ReadTypos) }
