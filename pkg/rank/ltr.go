package rank

import (
	"context"
	"errors"
	"sort"

	"github.com/rankpulse/rankpulse/pkg/data"
	"github.com/rankpulse/rankpulse/pkg/feature"
)

// LTROptions configures the learning-to-rank baseline.
type LTROptions struct {
	Epochs       int
	LearningRate float64
	BM25K1       float64
	BM25B        float64
	Seed         uint64
}

// LTRRanker trains a linear click model on the training context and
// scores test slates with it. Training happens on every Rank call, so
// the evaluator treats it as costly.
type LTRRanker struct {
	opts LTROptions
}

// NewLTRRanker creates the learning-to-rank baseline.
func NewLTRRanker(opts LTROptions) *LTRRanker {
	return &LTRRanker{opts: opts}
}

func (r *LTRRanker) Name() string { return "ltr" }

func (r *LTRRanker) CostlyTraining() bool { return true }

func (r *LTRRanker) Rank(ctx context.Context, train, test []*data.Activity) ([]*data.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(train) == 0 {
		return nil, errors.New("empty training context")
	}

	ex := feature.NewExtractor(train, r.opts.BM25K1, r.opts.BM25B)
	records := BuildRecords(train, ex)

	model, err := TrainLinear(records, TrainOptions{
		Epochs:       r.opts.Epochs,
		LearningRate: r.opts.LearningRate,
		Seed:         r.opts.Seed,
	})
	if err != nil {
		return nil, err
	}

	out := prepareSlates(r.opts.Seed, uint64(len(train)), test)
	for _, a := range out {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		scores := make(map[*data.Torrent]float64, len(a.Results))
		for _, t := range a.Results {
			scores[t] = model.Score(ex.Extract(a, t).Slice())
		}
		res := a.Results
		sort.SliceStable(res, func(i, j int) bool {
			return scores[res[i]] > scores[res[j]]
		})
	}

	return out, nil
}

// BuildRecords turns activities into LETOR records using the given
// extractor: one record per slate entry, relevance 1 for the chosen
// result, qid numbered per activity starting at 1.
func BuildRecords(list []*data.Activity, ex *feature.Extractor) []*data.Record {
	var records []*data.Record
	for qi, a := range list {
		for _, t := range a.Results {
			rel := 0.0
			if t == a.Chosen {
				rel = 1.0
			}
			records = append(records, &data.Record{
				Rel:      rel,
				QID:      qi + 1,
				Features: ex.Extract(a, t).Slice(),
			})
		}
	}
	return records
}
