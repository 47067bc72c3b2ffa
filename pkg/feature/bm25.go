package feature

import "math"

// Default Okapi BM25 parameters.
const (
	DefaultBM25K1 = 1.5
	DefaultBM25B  = 0.75
)

// BM25 scores documents against a query with the Okapi BM25 formula
// over a corpus index.
type BM25 struct {
	corpus *Corpus
	k1     float64
	b      float64
}

// NewBM25 creates a scorer over the corpus. Non-positive parameters
// fall back to the defaults.
func NewBM25(c *Corpus, k1, b float64) *BM25 {
	if k1 <= 0 {
		k1 = DefaultBM25K1
	}
	if b <= 0 {
		b = DefaultBM25B
	}
	return &BM25{corpus: c, k1: k1, b: b}
}

// Score returns the BM25 score of a document for the query terms.
func (s *BM25) Score(docID string, queryTerms []string) float64 {
	c := s.corpus
	if c.n == 0 || c.avgLen == 0 {
		return 0
	}

	docLen := float64(c.length[docID])
	var score float64
	for _, term := range queryTerms {
		df, ok := c.df[term]
		if !ok {
			continue
		}
		tf := float64(c.counts[docID][term])
		if tf == 0 {
			continue
		}

		idf := math.Log(1 + (float64(c.n)-float64(df)+0.5)/(float64(df)+0.5))
		score += idf * (tf * (s.k1 + 1)) / (tf + s.k1*(1-s.b+s.b*docLen/c.avgLen))
	}

	return score
}
