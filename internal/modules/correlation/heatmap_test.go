package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHeatmap(t *testing.T) {
	tickers := []string{"A", "B", "C"}
	records := []*Record{
		{Ticker1: "A", Ticker2: "B", Correlation1Y: f(0.8)},
		{Ticker1: "A", Ticker2: "C", Correlation1Y: f(-0.4)},
		// B/C has no 1Y value
		{Ticker1: "B", Ticker2: "C", Correlation3M: f(0.1)},
	}

	hm := BuildHeatmap(tickers, records)

	assert.Equal(t, tickers, hm.Labels)
	require.Len(t, hm.WindowData, 3)

	var oneYear HeatmapWindow
	for _, wd := range hm.WindowData {
		if wd.Window == Window1Y {
			oneYear = wd
		}
	}

	require.Len(t, oneYear.Matrix, 3)
	assert.Equal(t, 1.0, oneYear.Matrix[0][0])
	assert.Equal(t, 0.8, oneYear.Matrix[0][1])
	assert.Equal(t, 0.8, oneYear.Matrix[1][0], "pair matches either orientation")
	assert.Equal(t, 0.0, oneYear.Matrix[1][2], "missing value renders as 0.0")

	// Aggregates cover only defined off-diagonal values: 0.8 and -0.4
	assert.Equal(t, -0.4, oneYear.MinValue)
	assert.Equal(t, 0.8, oneYear.MaxValue)
	assert.InDelta(t, 0.2, oneYear.AvgValue, 1e-9)
}

func TestBuildHeatmapNoDefinedValues(t *testing.T) {
	records := []*Record{{Ticker1: "A", Ticker2: "B"}}

	hm := BuildHeatmap([]string{"A", "B"}, records)

	for _, wd := range hm.WindowData {
		assert.Equal(t, 0.0, wd.MinValue)
		assert.Equal(t, 0.0, wd.MaxValue)
		assert.Equal(t, 0.0, wd.AvgValue)
	}
}
