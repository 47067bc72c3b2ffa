package feature

import (
	"math"
	"strings"

	"github.com/rankpulse/rankpulse/pkg/data"
)

// NumFeatures is the width of the query/document feature vector.
const NumFeatures = 20

// Vector is the query/document relation vector: aggregated term
// statistics plus swarm and freshness signals.
type Vector struct {
	TFMin       float64
	TFMax       float64
	TFMean      float64
	TFSum       float64
	TFVariance  float64
	IDFMin      float64
	IDFMax      float64
	IDFMean     float64
	IDFSum      float64
	IDFVariance float64
	TIMin       float64
	TIMax       float64
	TIMean      float64
	TISum       float64
	TIVariance  float64
	BM25        float64
	Seeders     int
	Leechers    int
	Age         float64
	HitCount    int
}

// Slice returns the features in their fixed serialization order.
func (v *Vector) Slice() []float64 {
	return []float64{
		float64(v.Seeders), float64(v.Leechers), v.Age, v.BM25, float64(v.HitCount),
		v.TFMin, v.TFMax, v.TFMean, v.TFSum,
		v.IDFMin, v.IDFMax, v.IDFMean, v.IDFSum,
		v.TIMin, v.TIMax, v.TIMean, v.TISum,
		v.TFVariance, v.IDFVariance, v.TIVariance,
	}
}

// Extractor derives feature vectors from a training context: the
// document corpus, a BM25 scorer over it, and per-query click counts.
type Extractor struct {
	corpus *Corpus
	bm25   *BM25
	hits   map[string]map[string]int
}

// NewExtractor indexes the slates of the given activities. Torrents
// without metadata contribute empty documents.
func NewExtractor(list []*data.Activity, k1, b float64) *Extractor {
	docs := make(map[string]string)
	hits := make(map[string]map[string]int)

	for _, a := range list {
		for _, t := range a.Results {
			if _, ok := docs[t.Infohash]; !ok {
				docs[t.Infohash] = DocText(t)
			}
		}
		if a.Chosen != nil {
			byHash := hits[a.Query]
			if byHash == nil {
				byHash = make(map[string]int)
				hits[a.Query] = byHash
			}
			byHash[a.Chosen.Infohash]++
		}
	}

	corpus := NewCorpus(docs)
	return &Extractor{
		corpus: corpus,
		bm25:   NewBM25(corpus, k1, b),
		hits:   hits,
	}
}

// DocText renders the indexable text of a torrent: title plus tags.
func DocText(t *data.Torrent) string {
	if t.Meta == nil {
		return ""
	}
	if len(t.Meta.Tags) == 0 {
		return t.Meta.Title
	}
	return t.Meta.Title + " " + strings.Join(t.Meta.Tags, " ")
}

// Extract builds the feature vector for one torrent within an activity.
func (e *Extractor) Extract(a *data.Activity, t *data.Torrent) *Vector {
	terms := Tokenize(a.Query)

	v := &Vector{
		Seeders:  t.Seeders,
		Leechers: t.Leechers,
		BM25:     e.bm25.Score(t.Infohash, terms),
		HitCount: e.hits[a.Query][t.Infohash],
	}
	if t.Meta != nil && t.Meta.Timestamp > 0 && a.Timestamp > t.Meta.Timestamp {
		v.Age = float64(a.Timestamp - t.Meta.Timestamp)
	}

	if len(terms) == 0 {
		return v
	}

	tf := make([]float64, len(terms))
	idf := make([]float64, len(terms))
	ti := make([]float64, len(terms))
	for i, term := range terms {
		st := e.corpus.Stats(t.Infohash, term)
		tf[i] = st.TF
		idf[i] = st.IDF
		ti[i] = st.TFIDF
	}

	v.TFMin, v.TFMax, v.TFMean, v.TFSum, v.TFVariance = aggregate(tf)
	v.IDFMin, v.IDFMax, v.IDFMean, v.IDFSum, v.IDFVariance = aggregate(idf)
	v.TIMin, v.TIMax, v.TIMean, v.TISum, v.TIVariance = aggregate(ti)

	return v
}

func aggregate(vals []float64) (min, max, mean, sum, variance float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, v := range vals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean = sum / float64(len(vals))
	for _, v := range vals {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(vals))
	return min, max, mean, sum, variance
}
