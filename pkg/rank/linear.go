package rank

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"github.com/rankpulse/rankpulse/pkg/data"
)

// Default training parameters for the linear model.
const (
	DefaultEpochs       = 20
	DefaultLearningRate = 0.05
)

// LinearModel is a logistic click model: standardized features,
// weighted sum plus bias, sigmoid output. The score orders documents
// within a slate.
type LinearModel struct {
	Bias    float64   `json:"bias"`
	Weights []float64 `json:"weights"`
	Mean    []float64 `json:"mean"`
	Std     []float64 `json:"std"`
}

// TrainOptions configures SGD training.
type TrainOptions struct {
	Epochs       int
	LearningRate float64
	Seed         uint64
}

func (o *TrainOptions) defaults() {
	if o.Epochs <= 0 {
		o.Epochs = DefaultEpochs
	}
	if o.LearningRate <= 0 {
		o.LearningRate = DefaultLearningRate
	}
}

// TrainLinear fits a logistic model to LETOR records with plain SGD.
// Relevance labels above zero are treated as clicks.
func TrainLinear(records []*data.Record, opts TrainOptions) (*LinearModel, error) {
	if len(records) == 0 {
		return nil, errors.New("no training records")
	}
	opts.defaults()

	dim := len(records[0].Features)
	for i, r := range records {
		if len(r.Features) != dim {
			return nil, fmt.Errorf("record %d has %d features, want %d", i, len(r.Features), dim)
		}
	}

	m := &LinearModel{
		Weights: make([]float64, dim),
		Mean:    make([]float64, dim),
		Std:     make([]float64, dim),
	}
	m.fitScaler(records)

	rng := rand.New(rand.NewPCG(opts.Seed, uint64(len(records))))
	order := rng.Perm(len(records))
	x := make([]float64, dim)

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, idx := range order {
			r := records[idx]
			m.standardize(r.Features, x)

			y := 0.0
			if r.Rel > 0 {
				y = 1.0
			}
			grad := y - sigmoid(m.raw(x))

			m.Bias += opts.LearningRate * grad
			for d := 0; d < dim; d++ {
				m.Weights[d] += opts.LearningRate * grad * x[d]
			}
		}
	}

	return m, nil
}

// Score returns the click probability for a raw feature vector.
func (m *LinearModel) Score(features []float64) float64 {
	x := make([]float64, len(features))
	m.standardize(features, x)
	return sigmoid(m.raw(x))
}

func (m *LinearModel) raw(x []float64) float64 {
	z := m.Bias
	for d, w := range m.Weights {
		z += w * x[d]
	}
	return z
}

func (m *LinearModel) fitScaler(records []*data.Record) {
	n := float64(len(records))
	for _, r := range records {
		for d, v := range r.Features {
			m.Mean[d] += v
		}
	}
	for d := range m.Mean {
		m.Mean[d] /= n
	}
	for _, r := range records {
		for d, v := range r.Features {
			diff := v - m.Mean[d]
			m.Std[d] += diff * diff
		}
	}
	for d := range m.Std {
		m.Std[d] = math.Sqrt(m.Std[d] / n)
		if m.Std[d] == 0 {
			m.Std[d] = 1
		}
	}
}

func (m *LinearModel) standardize(in, out []float64) {
	for d, v := range in {
		out[d] = (v - m.Mean[d]) / m.Std[d]
	}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Save writes the model as JSON.
func (m *LinearModel) Save(path string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling model: %w", err)
	}
	if err := os.WriteFile(path, b, 0600); err != nil {
		return fmt.Errorf("writing model file %s: %w", path, err)
	}
	return nil
}

// LoadLinearModel reads a model written by Save.
func LoadLinearModel(path string) (*LinearModel, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file %s: %w", path, err)
	}
	var m LinearModel
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshaling model file %s: %w", path, err)
	}
	return &m, nil
}
