package rank

import (
	"context"
	"errors"
	"testing"

	"github.com/rankpulse/rankpulse/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRanker keeps slates in shuffled order and optionally fails below
// a minimum context size.
type fakeRanker struct {
	minTrain int
	costly   bool
}

func (r *fakeRanker) Name() string { return "fake" }

func (r *fakeRanker) CostlyTraining() bool { return r.costly }

func (r *fakeRanker) Rank(ctx context.Context, train, test []*data.Activity) ([]*data.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(train) < r.minTrain {
		return nil, errors.New("not enough context")
	}
	return prepareSlates(1, uint64(len(train)), test), nil
}

func TestContextSizes_Cheap(t *testing.T) {
	sizes := contextSizes(&RandomRanker{}, 5)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, sizes)
}

func TestContextSizes_Costly(t *testing.T) {
	sizes := contextSizes(&fakeRanker{costly: true}, 500)

	assert.Equal(t, 0, sizes[0])
	assert.Equal(t, 500, sizes[len(sizes)-1])
	assert.Less(t, len(sizes), 500, "costly rankers use a sparse range")
	for i := 1; i < len(sizes); i++ {
		assert.Greater(t, sizes[i], sizes[i-1])
	}
}

func TestContextSizes_SmallEnd(t *testing.T) {
	assert.Equal(t, []int{0}, contextSizes(&RandomRanker{}, 0))
}

func TestEvaluate(t *testing.T) {
	list := seederBiasedActivities(12)
	e := &Evaluator{Cutoffs: []int{2, 0}, SampleSize: 5, Workers: 2, Seed: 42}

	eval, err := e.Evaluate(context.Background(), &fakeRanker{}, list)
	require.NoError(t, err)
	assert.Equal(t, "fake", eval.Ranker)
	assert.Len(t, eval.ByContext, 7) // context sizes 0..6

	for _, size := range eval.ContextSizes() {
		byCutoff := eval.ByContext[size]
		require.Len(t, byCutoff, 2)
		assert.GreaterOrEqual(t, byCutoff[0], byCutoff[2], "unbounded NDCG never below NDCG@2")
	}
}

func TestEvaluate_SkipsFailingSizes(t *testing.T) {
	list := seederBiasedActivities(12)
	e := &Evaluator{Cutoffs: []int{0}, SampleSize: 5, Workers: 2, Seed: 42}

	eval, err := e.Evaluate(context.Background(), &fakeRanker{minTrain: 3}, list)
	require.NoError(t, err)

	sizes := eval.ContextSizes()
	require.NotEmpty(t, sizes)
	assert.GreaterOrEqual(t, sizes[0], 3, "failing context sizes are skipped")
}

func TestEvaluate_AllSizesFail(t *testing.T) {
	list := seederBiasedActivities(12)
	e := &Evaluator{Cutoffs: []int{0}, SampleSize: 5, Workers: 2, Seed: 42}

	_, err := e.Evaluate(context.Background(), &fakeRanker{minTrain: 100}, list)
	assert.Error(t, err)
}

func TestEvaluate_NotEnoughActivities(t *testing.T) {
	e := &Evaluator{SampleSize: 100, Workers: 1}
	_, err := e.Evaluate(context.Background(), &fakeRanker{}, seederBiasedActivities(10))
	assert.Error(t, err)
}

func TestEvaluateAll(t *testing.T) {
	list := seederBiasedActivities(12)
	e := &Evaluator{Cutoffs: []int{0}, SampleSize: 5, Workers: 2, Seed: 42}

	evals, err := e.EvaluateAll(context.Background(), []Ranker{
		&RandomRanker{Seed: 42},
		&SeedersRanker{Seed: 42},
	}, list)
	require.NoError(t, err)
	require.Len(t, evals, 2)
	assert.Equal(t, "random", evals[0].Ranker)
	assert.Equal(t, "seeders", evals[1].Ranker)
}

func TestEvaluateAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := &Evaluator{Cutoffs: []int{0}, SampleSize: 5, Workers: 2, Seed: 42}
	_, err := e.EvaluateAll(ctx, []Ranker{&RandomRanker{Seed: 1}}, seederBiasedActivities(12))
	assert.Error(t, err)
}
