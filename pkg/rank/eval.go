package rank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/rankpulse/rankpulse/pkg/data"
	"golang.org/x/sync/errgroup"
)

// DefaultSampleSize is the number of future activities sampled as the
// test set at every context size.
const DefaultSampleSize = 100

// Evaluation holds the chronological results of one ranker: for each
// training-context size, the mean NDCG per cutoff (cutoff 0 means
// unbounded).
type Evaluation struct {
	Ranker    string                  `json:"ranker"`
	ByContext map[int]map[int]float64 `json:"by_context"`
}

// ContextSizes returns the measured context sizes in ascending order.
func (e *Evaluation) ContextSizes() []int {
	sizes := make([]int, 0, len(e.ByContext))
	for s := range e.ByContext {
		sizes = append(sizes, s)
	}
	sort.Ints(sizes)
	return sizes
}

// Evaluator runs chronological evaluations: rankers are trained on an
// ever-growing prefix of the activity stream and measured on slates
// sampled from its future.
type Evaluator struct {
	Cutoffs    []int
	SampleSize int
	Workers    int
	Seed       uint64
	Logger     *slog.Logger
}

func (e *Evaluator) defaults() {
	if len(e.Cutoffs) == 0 {
		e.Cutoffs = []int{5, 10, 30, 0}
	}
	if e.SampleSize <= 0 {
		e.SampleSize = DefaultSampleSize
	}
	if e.Workers <= 0 {
		e.Workers = runtime.NumCPU()
	}
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
}

// Evaluate measures one ranker across context sizes. Individual
// context sizes that fail are logged and skipped; the evaluation fails
// only when the context is canceled or no size succeeds.
func (e *Evaluator) Evaluate(ctx context.Context, r Ranker, list []*data.Activity) (*Evaluation, error) {
	e.defaults()

	if len(list) <= e.SampleSize {
		return nil, fmt.Errorf("need more than %d activities, have %d", e.SampleSize, len(list))
	}

	end := len(list) - e.SampleSize
	indices := contextSizes(r, end)

	pool, err := ants.NewPool(e.Workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	eval := &Evaluation{
		Ranker:    r.Name(),
		ByContext: make(map[int]map[int]float64, len(indices)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, i := range indices {
		if ctx.Err() != nil {
			break
		}

		i := i
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			byCutoff, err := e.evaluateAt(ctx, r, list, i)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					e.Logger.Warn("skipping context size", "ranker", r.Name(), "size", i, "error", err)
				}
				return
			}

			mu.Lock()
			eval.ByContext[i] = byCutoff
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			return nil, fmt.Errorf("submitting eval task: %w", submitErr)
		}
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(eval.ByContext) == 0 {
		return nil, fmt.Errorf("ranker %s produced no results", r.Name())
	}

	return eval, nil
}

// EvaluateAll runs every ranker concurrently over the same activities.
func (e *Evaluator) EvaluateAll(ctx context.Context, rankers []Ranker, list []*data.Activity) ([]*Evaluation, error) {
	e.defaults()

	evals := make([]*Evaluation, len(rankers))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range rankers {
		i, r := i, r
		g.Go(func() error {
			e.Logger.Info("evaluating ranker", "ranker", r.Name())
			ev, err := e.Evaluate(gctx, r, list)
			if err != nil {
				return fmt.Errorf("evaluating %s: %w", r.Name(), err)
			}
			evals[i] = ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return evals, nil
}

func (e *Evaluator) evaluateAt(ctx context.Context, r Ranker, list []*data.Activity, i int) (map[int]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// sample the test slates from the future of the context
	rng := rand.New(rand.NewPCG(e.Seed, uint64(i)))
	future := rng.Perm(len(list) - i)
	test := make([]*data.Activity, e.SampleSize)
	for j := 0; j < e.SampleSize; j++ {
		test[j] = list[i+future[j]]
	}

	ranked, err := r.Rank(ctx, list[:i], test)
	if err != nil {
		return nil, err
	}

	byCutoff := make(map[int]float64, len(e.Cutoffs))
	for _, k := range e.Cutoffs {
		byCutoff[k] = MeanNDCG(ranked, k)
	}
	return byCutoff, nil
}

// contextSizes yields every index for cheap rankers and a geometric
// progression (step ~5%) for rankers that train on every call.
func contextSizes(r Ranker, end int) []int {
	if end <= 0 {
		return []int{0}
	}

	if ct, ok := r.(CostlyTrainer); ok && ct.CostlyTraining() {
		sizes := []int{0}
		for i := 1; i < end; i = i*105/100 + 1 {
			sizes = append(sizes, i)
		}
		return append(sizes, end)
	}

	sizes := make([]int, end)
	for i := range sizes {
		sizes[i] = i
	}
	return sizes
}
