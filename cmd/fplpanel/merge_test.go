package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/fplpanel/internal/config"
)

func TestMergeOptionsFlagsOverrideConfig(t *testing.T) {
	cfg = &config.Config{Merge: config.MergeConfig{
		Root:   "data/raw",
		Output: "out/config.csv",
		Glob:   "**/*.csv",
		Season: "2324",
	}}
	mergeFlags.output = "out/flag.csv"
	mergeFlags.season = "2425"
	t.Cleanup(func() { mergeFlags.output, mergeFlags.season = "", "" })

	opts, err := mergeOptions()
	require.NoError(t, err)
	assert.Equal(t, "data/raw", opts.Root)
	assert.Equal(t, "out/flag.csv", opts.Output)
	assert.Equal(t, "**/*.csv", opts.Glob)
	assert.Equal(t, 2425, opts.Season)
}

func TestMergeOptionsValidation(t *testing.T) {
	cfg = &config.Config{}
	_, err := mergeOptions()
	assert.ErrorContains(t, err, "--root")

	cfg.Merge.Root = "data/raw"
	_, err = mergeOptions()
	assert.ErrorContains(t, err, "--output")

	cfg.Merge.Output = "out.csv"
	cfg.Merge.Season = "not-a-season"
	_, err = mergeOptions()
	assert.ErrorContains(t, err, "--season")
}
