package similarity

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
)

// Cosine compares bag-of-words vectors of the two sentences
type Cosine struct {
	threshold float64
}

// NewCosine creates a cosine comparator; pairs scoring at or above
// threshold are similar
func NewCosine(threshold float64) (*Cosine, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("cosine threshold %.2f outside [0, 1]", threshold)
	}
	return &Cosine{threshold: threshold}, nil
}

// Similar reports whether the score reaches the threshold
func (c *Cosine) Similar(ctx context.Context, a, b []string) (bool, error) {
	return Score(a, b) >= c.threshold, nil
}

// Score returns the cosine similarity of the term-count vectors of a and b.
// Punctuation is ignored. Empty input scores 0.
func Score(a, b []string) float64 {
	vocab := make(map[string]int)
	index := func(words []string) {
		for _, w := range words {
			w = normalize(w)
			if w == "" {
				continue
			}
			if _, ok := vocab[w]; !ok {
				vocab[w] = len(vocab)
			}
		}
	}
	index(a)
	index(b)
	if len(vocab) == 0 {
		return 0
	}

	va := counts(a, vocab)
	vb := counts(b, vocab)

	na, nb := floats.Norm(va, 2), floats.Norm(vb, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(va, vb) / (na * nb)
}

func counts(words []string, vocab map[string]int) []float64 {
	v := make([]float64, len(vocab))
	for _, w := range words {
		if i, ok := vocab[normalize(w)]; ok {
			v[i]++
		}
	}
	return v
}

// normalize lower-cases w and returns "" for pure punctuation or space
func normalize(w string) string {
	w = strings.TrimSpace(w)
	for _, r := range w {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) && !unicode.IsSpace(r) {
			return strings.ToLower(w)
		}
	}
	return ""
}
