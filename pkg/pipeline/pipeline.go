// Package pipeline sequences the fetch and run steps of the ranking
// experiment.
package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/rankpulse/rankpulse/pkg/config"
)

// Dataset file names produced by the fetch step under the output dir.
const (
	ActivitiesFileName = "activities.jsonl"
	TrainFileName      = "train.txt"
	ValiFileName       = "vali.txt"
	TestFileName       = "test.txt"
	ModelFileName      = "model.json"
)

// Pipeline owns the fetch and run steps. Steps execute sequentially,
// make a single attempt each, and the first failure aborts whatever
// remains.
type Pipeline struct {
	cfg     *config.Config
	db      *sql.DB
	logger  *slog.Logger
	token   string
	ltrOnly bool

	// step indirection, swapped in tests
	fetch func(context.Context) (*FetchSummary, error)
	run   func(context.Context) (*RunSummary, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithToken sets the bearer token used for authenticated click-log
// downloads.
func WithToken(token string) Option {
	return func(p *Pipeline) error {
		p.token = token
		return nil
	}
}

// WithLTROnly restricts the run step to the learning-to-rank baseline.
func WithLTROnly(only bool) Option {
	return func(p *Pipeline) error {
		p.ltrOnly = only
		return nil
	}
}

// New creates a pipeline over a validated config and an open results
// database.
func New(cfg *config.Config, db *sql.DB, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if db == nil {
		return nil, errors.New("results database required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:    cfg,
		db:     db,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	p.fetch = p.doFetch
	p.run = p.doRun
	return p, nil
}

// Fetch acquires the click log, enriches it with torrent metadata, and
// writes the LETOR dataset.
func (p *Pipeline) Fetch(ctx context.Context) (*FetchSummary, error) {
	return p.fetch(ctx)
}

// Run trains the linear model on the prepared dataset and evaluates
// every ranker chronologically, persisting the results.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	return p.run(ctx)
}

// AllSummary combines the summaries of both steps.
type AllSummary struct {
	Fetch *FetchSummary `json:"fetch"`
	Run   *RunSummary   `json:"run"`
}

// All runs fetch then run. A fetch failure aborts before run starts.
func (p *Pipeline) All(ctx context.Context) (*AllSummary, error) {
	fs, err := p.fetch(ctx)
	if err != nil {
		return nil, err
	}

	rs, err := p.run(ctx)
	if err != nil {
		return nil, err
	}

	return &AllSummary{Fetch: fs, Run: rs}, nil
}
