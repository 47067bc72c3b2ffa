package rank

import (
	"context"
	"sort"

	"github.com/rankpulse/rankpulse/pkg/data"
)

// RandomRanker returns the slates in shuffled order. It is the floor
// every other ranker is measured against.
type RandomRanker struct {
	Seed uint64
}

func (r *RandomRanker) Name() string { return "random" }

func (r *RandomRanker) Rank(ctx context.Context, train, test []*data.Activity) ([]*data.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return prepareSlates(r.Seed, uint64(len(train)), test), nil
}

// SeedersRanker orders slates by swarm size: seeders descending,
// leechers breaking ties.
type SeedersRanker struct {
	Seed uint64
}

func (r *SeedersRanker) Name() string { return "seeders" }

func (r *SeedersRanker) Rank(ctx context.Context, train, test []*data.Activity) ([]*data.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := prepareSlates(r.Seed, uint64(len(train)), test)
	for _, a := range out {
		res := a.Results
		sort.SliceStable(res, func(i, j int) bool {
			if res[i].Seeders != res[j].Seeders {
				return res[i].Seeders > res[j].Seeders
			}
			return res[i].Leechers > res[j].Leechers
		})
	}
	return out, nil
}

// FreshnessRanker orders slates by torrent creation time, newest first.
// Torrents without metadata sort last.
type FreshnessRanker struct {
	Seed uint64
}

func (r *FreshnessRanker) Name() string { return "freshness" }

func (r *FreshnessRanker) Rank(ctx context.Context, train, test []*data.Activity) ([]*data.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := prepareSlates(r.Seed, uint64(len(train)), test)
	for _, a := range out {
		res := a.Results
		sort.SliceStable(res, func(i, j int) bool {
			return torrentTime(res[i]) > torrentTime(res[j])
		})
	}
	return out, nil
}

func torrentTime(t *data.Torrent) int64 {
	if t.Meta == nil {
		return 0
	}
	return t.Meta.Timestamp
}
