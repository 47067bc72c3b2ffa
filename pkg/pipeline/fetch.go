package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rankpulse/rankpulse/pkg/data"
	"github.com/rankpulse/rankpulse/pkg/feature"
	"github.com/rankpulse/rankpulse/pkg/net"
	"github.com/rankpulse/rankpulse/pkg/rank"
)

// FetchSummary reports what the fetch step produced.
type FetchSummary struct {
	Activities   int    `json:"activities"`
	Dropped      int    `json:"dropped,omitempty"`
	MetaFound    int    `json:"meta_found"`
	MetaMissing  int    `json:"meta_missing"`
	Records      int    `json:"records"`
	TrainQueries int    `json:"train_queries"`
	ValiQueries  int    `json:"vali_queries"`
	TestQueries  int    `json:"test_queries"`
	Duration     string `json:"duration"`
}

func (p *Pipeline) doFetch(ctx context.Context) (*FetchSummary, error) {
	start := time.Now()
	cfg := p.cfg

	if cfg.ClickLog.URL != "" {
		p.logger.Info("downloading click log", "url", cfg.ClickLog.URL)
		if err := net.Download(ctx, cfg.ClickLog.URL, cfg.ClickLog.Path, p.token); err != nil {
			return nil, fmt.Errorf("downloading click log: %w", err)
		}
	}

	p.logger.Info("loading click log", "path", cfg.ClickLog.Path)
	acts, err := data.LoadClickLog(cfg.ClickLog.Path)
	if err != nil {
		return nil, fmt.Errorf("loading click log: %w", err)
	}
	if cfg.MaxActivities > 0 && len(acts) > cfg.MaxActivities {
		acts = acts[:cfg.MaxActivities]
	}

	acts, dropped := capSlates(acts, cfg.SlateLimit)
	if len(acts) == 0 {
		return nil, fmt.Errorf("no usable activities in %s", cfg.ClickLog.Path)
	}
	p.logger.Info("loaded activities", "count", len(acts), "dropped", dropped)

	mdb, err := data.GetDB(cfg.MetadataDB)
	if err != nil {
		return nil, fmt.Errorf("opening metadata db: %w", err)
	}
	defer mdb.Close()

	p.logger.Info("enriching with torrent metadata", "db", cfg.MetadataDB)
	enr, err := data.EnrichActivities(mdb, acts)
	if err != nil {
		return nil, fmt.Errorf("enriching activities: %w", err)
	}
	p.logger.Info("metadata resolved", "found", enr.Found, "missing", enr.Missing)

	if err := os.MkdirAll(cfg.OutputDir, 0700); err != nil {
		return nil, fmt.Errorf("creating output dir %s: %w", cfg.OutputDir, err)
	}

	if err := data.WriteActivities(filepath.Join(cfg.OutputDir, ActivitiesFileName), acts); err != nil {
		return nil, fmt.Errorf("writing activities: %w", err)
	}

	p.logger.Info("extracting features")
	ex := feature.NewExtractor(acts, cfg.BM25K1, cfg.BM25B)
	records := rank.BuildRecords(acts, ex)

	train, vali, test := data.SplitByQID(records, cfg.TrainRatio, cfg.ValiRatio)
	for name, part := range map[string][]*data.Record{
		TrainFileName: train,
		ValiFileName:  vali,
		TestFileName:  test,
	} {
		if err := data.WriteRecords(filepath.Join(cfg.OutputDir, name), part); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
	}

	s := &FetchSummary{
		Activities:   len(acts),
		Dropped:      dropped,
		MetaFound:    enr.Found,
		MetaMissing:  enr.Missing,
		Records:      len(records),
		TrainQueries: data.CountQIDs(train),
		ValiQueries:  data.CountQIDs(vali),
		TestQueries:  data.CountQIDs(test),
		Duration:     time.Since(start).String(),
	}

	for name, v := range map[string]int{
		"fetch_activities":   s.Activities,
		"fetch_meta_found":   s.MetaFound,
		"fetch_meta_missing": s.MetaMissing,
		"fetch_records":      s.Records,
	} {
		if err := data.SaveState(p.db, name, int64(v)); err != nil {
			return nil, fmt.Errorf("saving fetch state: %w", err)
		}
	}

	p.logger.Info("fetch done", "records", s.Records, "duration", s.Duration)
	return s, nil
}

// capSlates truncates oversized slates. Activities whose chosen result
// falls outside the cap are dropped rather than mislabeled.
func capSlates(acts []*data.Activity, limit int) (kept []*data.Activity, dropped int) {
	kept = acts[:0]
	for _, a := range acts {
		if len(a.Results) > limit {
			ci := a.ChosenIndex()
			if ci >= limit {
				dropped++
				continue
			}
			a.Results = a.Results[:limit]
		}
		kept = append(kept, a)
	}
	return kept, dropped
}
