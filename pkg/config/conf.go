// Package config loads and persists the pipeline configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600
)

// ClickLog describes where the raw click log comes from. When URL is
// set, the file is downloaded to Path first.
type ClickLog struct {
	Path string `yaml:"path"`
	URL  string `yaml:"url,omitempty"`
}

// Config holds every knob of the fetch and run steps.
type Config struct {
	ClickLog      ClickLog `yaml:"clicklog"`
	MetadataDB    string   `yaml:"metadata_db"`
	OutputDir     string   `yaml:"output_dir"`
	ResultsDB     string   `yaml:"results_db"`
	TrainRatio    float64  `yaml:"train_ratio"`
	ValiRatio     float64  `yaml:"vali_ratio"`
	Cutoffs       []int    `yaml:"cutoffs"`
	SampleSize    int      `yaml:"sample_size"`
	Workers       int      `yaml:"workers"`
	SlateLimit    int      `yaml:"slate_limit"`
	MaxActivities int      `yaml:"max_activities,omitempty"`
	Seed          uint64   `yaml:"seed"`
	BM25K1        float64  `yaml:"bm25_k1"`
	BM25B         float64  `yaml:"bm25_b"`
	Epochs        int      `yaml:"epochs"`
	LearningRate  float64  `yaml:"learning_rate"`
}

func getDefaultConfig(dirPath string) *Config {
	return &Config{
		ClickLog:     ClickLog{Path: filepath.Join(dirPath, "clicklog.jsonl")},
		MetadataDB:   filepath.Join(dirPath, "metadata.db"),
		OutputDir:    filepath.Join(dirPath, "dataset"),
		ResultsDB:    filepath.Join(dirPath, "results.db"),
		TrainRatio:   0.8,
		ValiRatio:    0.1,
		Cutoffs:      []int{5, 10, 30, 0},
		SampleSize:   100,
		Workers:      4,
		SlateLimit:   240,
		Seed:         42,
		BM25K1:       1.5,
		BM25B:        0.75,
		Epochs:       20,
		LearningRate: 0.05,
	}
}

// Validate checks ratio and size constraints.
func (c *Config) Validate() error {
	if c.ClickLog.Path == "" {
		return errors.New("clicklog path required")
	}
	if c.TrainRatio <= 0 || c.ValiRatio < 0 || c.TrainRatio+c.ValiRatio >= 1 {
		return fmt.Errorf("invalid split ratios: train=%v vali=%v", c.TrainRatio, c.ValiRatio)
	}
	if c.SampleSize <= 0 {
		return errors.New("sample_size must be positive")
	}
	if c.SlateLimit <= 0 {
		return errors.New("slate_limit must be positive")
	}
	return nil
}

// Save writes the config into the directory.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}

	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// ReadOrCreate reads the config from a directory, creating the
// directory and a default config when either is missing.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return nil, fmt.Errorf("creating dir %s: %w", dirPath, err)
		}
	}

	path := filepath.Join(dirPath, configFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(dirPath, getDefaultConfig(dirPath)); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("unmarshaling config file %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &c, nil
}
