package rank

import (
	"context"
	"fmt"
	"testing"

	"github.com/rankpulse/rankpulse/pkg/data"
	"github.com/rankpulse/rankpulse/pkg/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seederBiasedActivities builds a stream where users always pick the
// torrent with the most seeders.
func seederBiasedActivities(n int) []*data.Activity {
	var list []*data.Activity
	for i := 0; i < n; i++ {
		a := &data.Activity{
			Query:     fmt.Sprintf("query %d", i),
			Timestamp: int64(1000 + i),
			Results: []*data.Torrent{
				{Infohash: fmt.Sprintf("high-%d", i), Seeders: 100, Leechers: 10},
				{Infohash: fmt.Sprintf("mid-%d", i), Seeders: 5, Leechers: 2},
				{Infohash: fmt.Sprintf("low-%d", i), Seeders: 0, Leechers: 0},
			},
		}
		a.Chosen = a.Results[0]
		list = append(list, a)
	}
	return list
}

func TestLTRRanker(t *testing.T) {
	list := seederBiasedActivities(40)
	r := NewLTRRanker(LTROptions{Seed: 42})

	out, err := r.Rank(context.Background(), list[:30], list[30:])
	require.NoError(t, err)
	require.Len(t, out, 10)

	// the model should have learned the seeder preference
	top := 0
	for _, a := range out {
		if a.ChosenIndex() == 0 {
			top++
		}
	}
	assert.GreaterOrEqual(t, top, 8, "chosen result ranked first in %d/10 slates", top)
}

func TestLTRRanker_EmptyContext(t *testing.T) {
	list := seederBiasedActivities(5)
	r := NewLTRRanker(LTROptions{Seed: 42})

	_, err := r.Rank(context.Background(), nil, list)
	assert.Error(t, err)
}

func TestLTRRanker_CostlyTraining(t *testing.T) {
	var r Ranker = NewLTRRanker(LTROptions{})
	ct, ok := r.(CostlyTrainer)
	require.True(t, ok)
	assert.True(t, ct.CostlyTraining())
	assert.Equal(t, "ltr", r.Name())
}

func TestBuildRecords(t *testing.T) {
	list := seederBiasedActivities(2)
	ex := feature.NewExtractor(list, 0, 0)

	records := BuildRecords(list, ex)
	require.Len(t, records, 6)

	assert.Equal(t, 1.0, records[0].Rel)
	assert.Equal(t, 0.0, records[1].Rel)
	assert.Equal(t, 1, records[0].QID)
	assert.Equal(t, 2, records[3].QID)
	assert.Len(t, records[0].Features, feature.NumFeatures)
}
