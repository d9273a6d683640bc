// Package classifier trains and scores the bag-of-n-grams linear model used
// to measure how classifier quality scales with the weak-label budget.
package classifier

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMinDF is the minimum number of documents a term must appear in to
// enter the vocabulary.
const DefaultMinDF = 2

// term is one feature occurrence in a document vector.
type term struct {
	Index int
	Count float64
}

// docVector is a sparse count vector over the fitted vocabulary.
type docVector []term

// stripDiacritics removes combining marks so accented and unaccented
// spellings of the same word share a feature.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeToken(s string) string {
	out, _, err := transform.String(stripDiacritics, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

func tokenize(text string) []string {
	normalized := normalizeToken(text)
	return strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// ngrams returns the word unigrams and bigrams of a document.
func ngrams(text string) []string {
	tokens := tokenize(text)
	grams := make([]string, 0, 2*len(tokens))
	grams = append(grams, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		grams = append(grams, tokens[i]+" "+tokens[i+1])
	}
	return grams
}

// Vectorizer maps documents to sparse counts of word and bigram features.
// The vocabulary is fitted jointly over every document it will ever
// transform: the trainer fits it on the concatenated train+test text so both
// partitions share one feature space, and on nothing else.
type Vectorizer struct {
	minDF int
	vocab map[string]int
}

// NewVectorizer creates a Vectorizer. minDF values below 1 use DefaultMinDF.
func NewVectorizer(minDF int) *Vectorizer {
	if minDF < 1 {
		minDF = DefaultMinDF
	}
	return &Vectorizer{minDF: minDF}
}

// Fit builds the vocabulary from the given documents. Terms seen in fewer
// than minDF documents are discarded. Vocabulary indices are assigned in
// lexicographic term order, so fitting is deterministic.
func (v *Vectorizer) Fit(docs []string) {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, g := range ngrams(doc) {
			if _, dup := seen[g]; dup {
				continue
			}
			seen[g] = struct{}{}
			df[g]++
		}
	}

	kept := make([]string, 0, len(df))
	for g, n := range df {
		if n >= v.minDF {
			kept = append(kept, g)
		}
	}
	sort.Strings(kept)

	v.vocab = make(map[string]int, len(kept))
	for i, g := range kept {
		v.vocab[g] = i
	}
}

// Size returns the fitted vocabulary size.
func (v *Vectorizer) Size() int {
	return len(v.vocab)
}

// Transform converts documents to sparse count vectors over the fitted
// vocabulary, preserving input order.
func (v *Vectorizer) Transform(docs []string) []docVector {
	out := make([]docVector, len(docs))
	for i, doc := range docs {
		counts := make(map[int]float64)
		for _, g := range ngrams(doc) {
			if idx, ok := v.vocab[g]; ok {
				counts[idx]++
			}
		}

		vec := make(docVector, 0, len(counts))
		for idx, c := range counts {
			vec = append(vec, term{Index: idx, Count: c})
		}
		sort.Slice(vec, func(a, b int) bool { return vec[a].Index < vec[b].Index })
		out[i] = vec
	}
	return out
}
