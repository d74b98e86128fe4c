package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Pow2/internal/factors/catalog"
	"github.com/MikeSquared-Agency/Pow2/internal/season"
)

const catsS1 = `
collection: {slugs: [cats]}
season: {slug: cats-s1, title: Cats One}
cpu:
  base: 100
  factors:
    - name: rare
      config: {algorithm: fixed, weights: {1: 2, 2: 1}}
    - name: combination
      config: {algorithm: value}
`

func writeSeason(t *testing.T, dir, category, name, doc string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, category), 0o755))
	path := filepath.Join(dir, category, name+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"pow2ctl", "--no-color"}, args...))
	return out.String(), err
}

func TestSlugForFile(t *testing.T) {
	assert.Equal(t, "gcw-s6", slugForFile(filepath.Join("resource", "config", "gcw", "s6.yaml")))
	assert.Equal(t, "cats-s1", slugForFile("cats/s1.yml"))
}

func TestValidateFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeSeason(t, dir, "cats", "s1", catsS1)
	bad := writeSeason(t, dir, "cats", "s2", "cpu: {base: 1}")
	missing := filepath.Join(dir, "cats", "s3.yaml")

	parser := season.NewParser(catalog.NewRegistry(), catalog.DefaultTZHours)
	results := validateFiles(parser, []string{bad, good, missing})
	require.Len(t, results, 3)

	assert.Equal(t, bad, results[0].path)
	assert.Error(t, results[0].err)

	assert.Equal(t, good, results[1].path)
	assert.NoError(t, results[1].err)
	assert.Equal(t, "cats-s1", results[1].slug)
	assert.Equal(t, 2, results[1].factors)

	assert.ErrorIs(t, results[2].err, os.ErrNotExist)
}

func TestFactorsCommand(t *testing.T) {
	out, err := run(t, "--format", "json", "factors")
	require.NoError(t, err)

	var infos []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	names := make([]string, 0, len(infos))
	for _, f := range infos {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, catalog.NameListingStats)
	assert.Contains(t, names, catalog.NameMiningLimitReached)

	out, err = run(t, "factors")
	require.NoError(t, err)
	assert.Contains(t, out, "composite")
}

func TestSeasonCommand(t *testing.T) {
	dir := t.TempDir()
	writeSeason(t, dir, "cats", "s1", catsS1)

	out, err := run(t, "-d", dir, "season", "cats-s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Cats One (cats-s1)")
	assert.Contains(t, out, "cpu base: 100")
	assert.Contains(t, out, "combination")

	_, err = run(t, "-d", dir, "season", "cats-s9")
	assert.ErrorIs(t, err, season.ErrNotFound)

	_, err = run(t, "-d", dir, "season")
	assert.Error(t, err)
}

func TestCalcCommand(t *testing.T) {
	dir := t.TempDir()
	writeSeason(t, dir, "cats", "s1", catsS1)
	input := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(input, []byte(`{
		"entities": [
			{"id": "a", "inputs": {"rare": {"rare": 1}, "combination": {"ratio": 1.5}}},
			{"id": "b", "inputs": {"rare": {"rare": 7}, "combination": {"ratio": 1}}}
		]
	}`), 0o644))

	out, err := run(t, "-d", dir, "-f", "json", "calc", "-i", input, "--now", "2024-03-01T00:00:00Z", "cats-s1")
	require.NoError(t, err)

	var resp struct {
		Season  string `json:"season"`
		Now     string `json:"now"`
		Failed  int    `json:"failed"`
		Results []struct {
			ID     string `json:"id"`
			Kind   string `json:"kind"`
			Result *struct {
				CPU string `json:"cpu"`
			} `json:"result"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "cats-s1", resp.Season)
	assert.Equal(t, "2024-03-01T00:00:00Z", resp.Now)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 2)
	require.NotNil(t, resp.Results[0].Result)
	assert.True(t, decimal.RequireFromString(resp.Results[0].Result.CPU).Equal(decimal.NewFromInt(300)), resp.Results[0].Result.CPU)
	assert.Equal(t, "value_not_found", resp.Results[1].Kind)

	out, err = run(t, "-d", dir, "calc", "-i", input, "cats-s1")
	require.NoError(t, err)
	assert.Contains(t, out, "cpu 300.")
}

func TestCalcCommandRequiresInput(t *testing.T) {
	_, err := run(t, "calc", "cats-s1")
	assert.Error(t, err)
}
