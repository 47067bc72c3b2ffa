// Package rank implements the ranking baselines, the trainable linear
// model, and the chronological NDCG evaluation harness.
package rank

import (
	"context"
	"math/rand/v2"

	"github.com/rankpulse/rankpulse/pkg/data"
)

// Ranker reorders the result slates of test activities, given the
// preceding activities as training context. Implementations must not
// mutate their inputs.
type Ranker interface {
	Name() string
	Rank(ctx context.Context, train, test []*data.Activity) ([]*data.Activity, error)
}

// CostlyTrainer marks rankers that train a model on every call; the
// evaluator probes them at geometrically spaced context sizes instead
// of every index.
type CostlyTrainer interface {
	CostlyTraining() bool
}

// prepareSlates deep-copies the test activities and shuffles each slate
// so that ranking starts from a position-neutral order. The shuffle is
// deterministic for a given seed and salt.
func prepareSlates(seed, salt uint64, test []*data.Activity) []*data.Activity {
	rng := rand.New(rand.NewPCG(seed, salt))
	out := make([]*data.Activity, len(test))
	for i, a := range test {
		c := a.Clone()
		rng.Shuffle(len(c.Results), func(x, y int) {
			c.Results[x], c.Results[y] = c.Results[y], c.Results[x]
		})
		out[i] = c
	}
	return out
}
