package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOrCreate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conf")

	c, err := ReadOrCreate(dir)
	require.NoError(t, err)
	require.NotNil(t, c)

	// directory and file created with defaults
	_, err = os.Stat(filepath.Join(dir, configFileName))
	assert.NoError(t, err)
	assert.Equal(t, 0.8, c.TrainRatio)
	assert.Equal(t, []int{5, 10, 30, 0}, c.Cutoffs)
	assert.Equal(t, uint64(42), c.Seed)
	assert.Equal(t, filepath.Join(dir, "results.db"), c.ResultsDB)

	// second read returns the persisted config
	c2, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, c, c2)
}

func TestReadOrCreate_Edits(t *testing.T) {
	dir := t.TempDir()

	c, err := ReadOrCreate(dir)
	require.NoError(t, err)

	c.SampleSize = 25
	c.ClickLog.URL = "https://example.com/clicklog.jsonl"
	require.NoError(t, Save(dir, c))

	got, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, 25, got.SampleSize)
	assert.Equal(t, "https://example.com/clicklog.jsonl", got.ClickLog.URL)
}

func TestReadOrCreate_Invalid(t *testing.T) {
	dir := t.TempDir()

	c, err := ReadOrCreate(dir)
	require.NoError(t, err)
	c.TrainRatio = 0.9
	c.ValiRatio = 0.2
	require.NoError(t, Save(dir, c))

	_, err = ReadOrCreate(dir)
	assert.Error(t, err)

	_, err = ReadOrCreate("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	for name, mod := range map[string]func(*Config){
		"missing clicklog path": func(c *Config) { c.ClickLog.Path = "" },
		"zero train ratio":      func(c *Config) { c.TrainRatio = 0 },
		"negative vali ratio":   func(c *Config) { c.ValiRatio = -0.1 },
		"ratios exceed one":     func(c *Config) { c.TrainRatio = 0.95; c.ValiRatio = 0.1 },
		"zero sample size":      func(c *Config) { c.SampleSize = 0 },
		"zero slate limit":      func(c *Config) { c.SlateLimit = 0 },
	} {
		c := getDefaultConfig(t.TempDir())
		mod(c)
		assert.Error(t, c.Validate(), name)
	}

	assert.NoError(t, getDefaultConfig(t.TempDir()).Validate())
}

func TestSave_Errors(t *testing.T) {
	assert.Error(t, Save("", getDefaultConfig(t.TempDir())))
	assert.Error(t, Save(t.TempDir(), nil))
}
