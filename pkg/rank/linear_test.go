package rank

import (
	"path/filepath"
	"testing"

	"github.com/rankpulse/rankpulse/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separableRecords builds a dataset where clicks follow feature 0.
func separableRecords(n int) []*data.Record {
	var records []*data.Record
	for q := 1; q <= n; q++ {
		records = append(records,
			&data.Record{Rel: 1, QID: q, Features: []float64{5, 1}},
			&data.Record{Rel: 0, QID: q, Features: []float64{1, 1}},
			&data.Record{Rel: 0, QID: q, Features: []float64{0, 1}},
		)
	}
	return records
}

func TestTrainLinear_LearnsSeparableData(t *testing.T) {
	m, err := TrainLinear(separableRecords(30), TrainOptions{Seed: 42})
	require.NoError(t, err)

	clicked := m.Score([]float64{5, 1})
	skipped := m.Score([]float64{0, 1})
	assert.Greater(t, clicked, skipped)
	assert.Greater(t, clicked, 0.5)
}

func TestTrainLinear_Errors(t *testing.T) {
	_, err := TrainLinear(nil, TrainOptions{})
	assert.Error(t, err)

	// inconsistent feature widths
	records := []*data.Record{
		{Rel: 1, QID: 1, Features: []float64{1, 2}},
		{Rel: 0, QID: 1, Features: []float64{1}},
	}
	_, err = TrainLinear(records, TrainOptions{})
	assert.Error(t, err)
}

func TestTrainLinear_Deterministic(t *testing.T) {
	records := separableRecords(10)

	a, err := TrainLinear(records, TrainOptions{Seed: 7})
	require.NoError(t, err)
	b, err := TrainLinear(records, TrainOptions{Seed: 7})
	require.NoError(t, err)

	assert.Equal(t, a.Bias, b.Bias)
	assert.Equal(t, a.Weights, b.Weights)
}

func TestTrainLinear_ConstantFeature(t *testing.T) {
	// feature 1 is constant; zero std must not divide by zero
	m, err := TrainLinear(separableRecords(5), TrainOptions{Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Std[1])
}

func TestLinearModel_SaveLoad(t *testing.T) {
	m, err := TrainLinear(separableRecords(5), TrainOptions{Seed: 1})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, m.Save(path))

	got, err := LoadLinearModel(path)
	require.NoError(t, err)
	assert.Equal(t, m.Weights, got.Weights)
	assert.Equal(t, m.Bias, got.Bias)
}
