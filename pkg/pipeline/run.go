package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rankpulse/rankpulse/pkg/data"
	"github.com/rankpulse/rankpulse/pkg/rank"
)

// RunSummary reports one evaluation run.
type RunSummary struct {
	RunID    string   `json:"run_id"`
	Rankers  []string `json:"rankers"`
	Results  int      `json:"results"`
	Duration string   `json:"duration"`
}

func (p *Pipeline) doRun(ctx context.Context) (*RunSummary, error) {
	start := time.Now()
	cfg := p.cfg

	acts, err := data.ReadActivities(filepath.Join(cfg.OutputDir, ActivitiesFileName))
	if err != nil {
		return nil, fmt.Errorf("loading activities (run fetch first?): %w", err)
	}
	p.logger.Info("loaded activities", "count", len(acts))

	train, err := data.ReadRecords(filepath.Join(cfg.OutputDir, TrainFileName))
	if err != nil {
		return nil, fmt.Errorf("loading train records: %w", err)
	}
	vali, err := data.ReadRecords(filepath.Join(cfg.OutputDir, ValiFileName))
	if err != nil {
		return nil, fmt.Errorf("loading vali records: %w", err)
	}
	test, err := data.ReadRecords(filepath.Join(cfg.OutputDir, TestFileName))
	if err != nil {
		return nil, fmt.Errorf("loading test records: %w", err)
	}

	run := &data.Run{
		ID:           uuid.NewString(),
		Seed:         int64(cfg.Seed),
		TrainQueries: data.CountQIDs(train),
		ValiQueries:  data.CountQIDs(vali),
		TestQueries:  data.CountQIDs(test),
	}
	if err := data.SaveRun(p.db, run); err != nil {
		return nil, fmt.Errorf("saving run: %w", err)
	}

	var results []*data.Result

	// holdout: train once on the prepared split, measure on vali and test
	p.logger.Info("training linear model", "records", len(train))
	model, err := rank.TrainLinear(train, rank.TrainOptions{
		Epochs:       cfg.Epochs,
		LearningRate: cfg.LearningRate,
		Seed:         cfg.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("training linear model: %w", err)
	}
	if err := model.Save(filepath.Join(cfg.OutputDir, ModelFileName)); err != nil {
		return nil, fmt.Errorf("saving model: %w", err)
	}

	for name, part := range map[string][]*data.Record{
		"linear/vali": vali,
		"linear/test": test,
	} {
		for _, k := range cfg.Cutoffs {
			results = append(results, &data.Result{
				RunID:       run.ID,
				Stage:       data.StageHoldout,
				Ranker:      name,
				ContextSize: run.TrainQueries,
				Cutoff:      k,
				NDCG:        rank.ModelNDCG(model, part, k),
			})
		}
	}

	// chronological evaluation of every ranker
	rankers := p.rankers()
	ev := &rank.Evaluator{
		Cutoffs:    cfg.Cutoffs,
		SampleSize: cfg.SampleSize,
		Workers:    cfg.Workers,
		Seed:       cfg.Seed,
		Logger:     p.logger,
	}

	evals, err := ev.EvaluateAll(ctx, rankers, acts)
	if err != nil {
		return nil, fmt.Errorf("chronological evaluation: %w", err)
	}

	names := make([]string, 0, len(rankers))
	for _, e := range evals {
		names = append(names, e.Ranker)
		for _, size := range e.ContextSizes() {
			for k, ndcg := range e.ByContext[size] {
				results = append(results, &data.Result{
					RunID:       run.ID,
					Stage:       data.StageChrono,
					Ranker:      e.Ranker,
					ContextSize: size,
					Cutoff:      k,
					NDCG:        ndcg,
				})
			}
		}
	}

	if err := data.SaveResults(p.db, results); err != nil {
		return nil, fmt.Errorf("saving results: %w", err)
	}

	s := &RunSummary{
		RunID:    run.ID,
		Rankers:  names,
		Results:  len(results),
		Duration: time.Since(start).String(),
	}
	p.logger.Info("run done", "run_id", s.RunID, "results", s.Results, "duration", s.Duration)
	return s, nil
}

func (p *Pipeline) rankers() []rank.Ranker {
	cfg := p.cfg
	ltr := rank.NewLTRRanker(rank.LTROptions{
		Epochs:       cfg.Epochs,
		LearningRate: cfg.LearningRate,
		BM25K1:       cfg.BM25K1,
		BM25B:        cfg.BM25B,
		Seed:         cfg.Seed,
	})

	if p.ltrOnly {
		return []rank.Ranker{ltr}
	}
	return []rank.Ranker{
		&rank.RandomRanker{Seed: cfg.Seed},
		&rank.SeedersRanker{Seed: cfg.Seed},
		&rank.FreshnessRanker{Seed: cfg.Seed},
		ltr,
	}
}
