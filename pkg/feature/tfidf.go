// Package feature turns query/document pairs into the numeric vectors
// consumed by the ranking models.
package feature

import (
	"math"
	"strings"
	"unicode"
)

// Tokenize lowercases text and splits it into alphanumeric terms,
// dropping single-character tokens.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) > 1 {
			terms = append(terms, f)
		}
	}
	return terms
}

// TermStats holds the per-term statistics for one document.
type TermStats struct {
	TF    float64
	IDF   float64
	TFIDF float64
}

// Corpus is a term-frequency index over a set of documents, keyed by
// document id.
type Corpus struct {
	n      int
	counts map[string]map[string]int
	length map[string]int
	df     map[string]int
	avgLen float64
}

// NewCorpus indexes the given documents (doc id -> text).
func NewCorpus(docs map[string]string) *Corpus {
	c := &Corpus{
		n:      len(docs),
		counts: make(map[string]map[string]int, len(docs)),
		length: make(map[string]int, len(docs)),
		df:     make(map[string]int),
	}

	var total int
	for id, text := range docs {
		terms := Tokenize(text)
		tc := make(map[string]int, len(terms))
		for _, t := range terms {
			tc[t]++
		}
		c.counts[id] = tc
		c.length[id] = len(terms)
		total += len(terms)
		for t := range tc {
			c.df[t]++
		}
	}
	if c.n > 0 {
		c.avgLen = float64(total) / float64(c.n)
	}

	return c
}

// Len returns the number of indexed documents.
func (c *Corpus) Len() int { return c.n }

// Stats returns the tf/idf/tf-idf triple for a term in a document.
// Terms absent from the corpus vocabulary yield all zeros. IDF is
// smoothed: ln((1+n)/(1+df)) + 1, with raw term counts and no
// normalization, so tfidf = tf * idf.
func (c *Corpus) Stats(docID, term string) TermStats {
	df, ok := c.df[term]
	if !ok {
		return TermStats{}
	}

	idf := math.Log(float64(1+c.n)/float64(1+df)) + 1
	tf := float64(c.counts[docID][term])

	return TermStats{TF: tf, IDF: idf, TFIDF: tf * idf}
}
