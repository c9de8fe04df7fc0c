package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"energy-planner/internal/results"
	"energy-planner/internal/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeries(t *testing.T) {
	v, err := ParseSeries([]byte(" [1, 2.5, 0] "))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, 0}, v)

	v, err = ParseSeries([]byte(`{"values": [3, 4]}`))
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, v)

	_, err = ParseSeries([]byte(`{"other": 1}`))
	assert.Error(t, err)
	_, err = ParseSeries(nil)
	assert.Error(t, err)
	_, err = ParseSeries([]byte(`[1, "x"]`))
	assert.Error(t, err)
}

func TestLoadSeriesAndJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "series.json")
	require.NoError(t, WriteJSON(path, map[string][]float64{"values": {5, 6}}))

	v, err := LoadSeries(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6}, v)

	var back map[string][]float64
	require.NoError(t, LoadJSON(path, &back))
	assert.Equal(t, []float64{5, 6}, back["values"])

	_, err = LoadSeries(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func outcome(id string) *scenario.Outcome {
	return &scenario.Outcome{Result: &results.Result{ID: id}}
}

func TestResultCacheExpiry(t *testing.T) {
	c := NewResultCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	sizes := []int{}
	c.OnChange(func(n int) { sizes = append(sizes, n) })

	c.Set(outcome("a"))
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.Result.ID)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Evict())
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, []int{1, 0}, sizes)
}

func TestNilResultCache(t *testing.T) {
	var c *ResultCache
	c.Set(outcome("a"))
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Evict())
}
