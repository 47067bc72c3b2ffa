package rank

import (
	"context"
	"testing"

	"github.com/rankpulse/rankpulse/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swarmActivity(seeders ...int) *data.Activity {
	a := &data.Activity{Query: "q", Timestamp: 1000, Results: make([]*data.Torrent, len(seeders))}
	for i, s := range seeders {
		a.Results[i] = &data.Torrent{
			Infohash: string(rune('a' + i)),
			Seeders:  s,
			Leechers: i,
			Meta:     &data.TorrentMeta{Timestamp: int64(100 * (i + 1))},
		}
	}
	a.Chosen = a.Results[0]
	return a
}

func TestSeedersRanker(t *testing.T) {
	r := &SeedersRanker{Seed: 42}
	test := []*data.Activity{swarmActivity(3, 50, 7)}

	out, err := r.Rank(context.Background(), nil, test)
	require.NoError(t, err)
	require.Len(t, out, 1)

	res := out[0].Results
	assert.Equal(t, 50, res[0].Seeders)
	assert.Equal(t, 7, res[1].Seeders)
	assert.Equal(t, 3, res[2].Seeders)
}

func TestFreshnessRanker(t *testing.T) {
	r := &FreshnessRanker{Seed: 42}
	test := []*data.Activity{swarmActivity(1, 2, 3)}

	out, err := r.Rank(context.Background(), nil, test)
	require.NoError(t, err)

	res := out[0].Results
	assert.Equal(t, int64(300), res[0].Meta.Timestamp)
	assert.Equal(t, int64(100), res[2].Meta.Timestamp)
}

func TestRankers_DoNotMutateInput(t *testing.T) {
	orig := swarmActivity(3, 50, 7)
	test := []*data.Activity{orig}

	for _, r := range []Ranker{
		&RandomRanker{Seed: 1},
		&SeedersRanker{Seed: 1},
		&FreshnessRanker{Seed: 1},
	} {
		out, err := r.Rank(context.Background(), nil, test)
		require.NoError(t, err, r.Name())
		assert.NotSame(t, orig, out[0], r.Name())
		assert.Equal(t, 3, orig.Results[0].Seeders, "%s mutated input order", r.Name())
	}
}

func TestRandomRanker_Deterministic(t *testing.T) {
	test := []*data.Activity{swarmActivity(1, 2, 3, 4, 5)}

	a, err := (&RandomRanker{Seed: 7}).Rank(context.Background(), nil, test)
	require.NoError(t, err)
	b, err := (&RandomRanker{Seed: 7}).Rank(context.Background(), nil, test)
	require.NoError(t, err)

	for i := range a[0].Results {
		assert.Equal(t, a[0].Results[i].Infohash, b[0].Results[i].Infohash)
	}
}

func TestRankers_KeepChosenPointer(t *testing.T) {
	test := []*data.Activity{swarmActivity(3, 50, 7)}

	out, err := (&SeedersRanker{Seed: 1}).Rank(context.Background(), nil, test)
	require.NoError(t, err)

	// chosen follows its slate entry through the reorder
	assert.Equal(t, test[0].Chosen.Infohash, out[0].Chosen.Infohash)
	assert.GreaterOrEqual(t, out[0].ChosenIndex(), 0)
}

func TestRankers_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&RandomRanker{Seed: 1}).Rank(ctx, nil, []*data.Activity{swarmActivity(1)})
	assert.Error(t, err)
}
