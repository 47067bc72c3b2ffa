package rank

import (
	"math"

	"github.com/rankpulse/rankpulse/pkg/data"
)

// NDCG returns the NDCG@k of a ranked activity under binary relevance:
// the chosen result is the single relevant document. k <= 0 means no
// cutoff.
func NDCG(a *data.Activity, k int) float64 {
	pos := a.ChosenIndex()
	if pos < 0 {
		return 0
	}
	if k > 0 && pos >= k {
		return 0
	}
	// ideal DCG is 1 (relevant document at position 0)
	return 1 / math.Log2(float64(pos)+2)
}

// MeanNDCG averages NDCG@k over a set of ranked activities.
func MeanNDCG(list []*data.Activity, k int) float64 {
	if len(list) == 0 {
		return 0
	}
	var sum float64
	for _, a := range list {
		sum += NDCG(a, k)
	}
	return sum / float64(len(list))
}

// ModelNDCG computes the mean NDCG@k of a model over LETOR records,
// grouped by qid. Queries without a relevant record are skipped.
func ModelNDCG(m *LinearModel, records []*data.Record, k int) float64 {
	type scored struct {
		rel   float64
		score float64
	}

	groups := make(map[int][]scored)
	var qids []int
	for _, r := range records {
		if _, ok := groups[r.QID]; !ok {
			qids = append(qids, r.QID)
		}
		groups[r.QID] = append(groups[r.QID], scored{rel: r.Rel, score: m.Score(r.Features)})
	}

	var sum float64
	var n int
	for _, qid := range qids {
		g := groups[qid]

		relevant := false
		for _, s := range g {
			if s.rel > 0 {
				relevant = true
				break
			}
		}
		if !relevant {
			continue
		}

		// position of the first relevant record when sorted by score
		pos := 0
		var best scored
		found := false
		for _, s := range g {
			if s.rel > 0 && (!found || s.score > best.score) {
				best = s
				found = true
			}
		}
		for _, s := range g {
			if s.score > best.score {
				pos++
			}
		}

		if k <= 0 || pos < k {
			sum += 1 / math.Log2(float64(pos)+2)
		}
		n++
	}

	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
