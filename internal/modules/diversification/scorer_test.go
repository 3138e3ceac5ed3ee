package diversification

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belovelace/Portfolio-Optimizer/internal/modules/correlation"
)

func f(v float64) *float64 { return &v }

func testMatrix() *correlation.Matrix {
	records := []*correlation.Record{
		{Ticker1: "A", Ticker2: "B", Correlation1Y: f(0.9)},
		{Ticker1: "A", Ticker2: "C", Correlation1Y: f(0.1)},
		{Ticker1: "B", Ticker2: "C", Correlation1Y: f(-0.2)},
	}
	return correlation.BuildMatrix([]string{"A", "B", "C"}, records, correlation.Window1Y)
}

func TestScoreTickers(t *testing.T) {
	scores := ScoreTickers([]string{"A", "B", "C"}, testMatrix(), 0.7, zerolog.Nop())
	require.Len(t, scores, 3)

	byTicker := map[string]Score{}
	for _, s := range scores {
		byTicker[s.Ticker] = s
	}

	// A: mean(0.9, 0.1) = 0.5, one pair at or above 0.7
	assert.InDelta(t, 0.5, byTicker["A"].AvgCorrelation, 1e-9)
	assert.Equal(t, 1, byTicker["A"].HighCorrelationCount)
	assert.InDelta(t, 0.5, byTicker["A"].DiversificationScore, 1e-9)

	// C: mean(0.1, -0.2) = -0.05, no high pairs
	assert.InDelta(t, -0.05, byTicker["C"].AvgCorrelation, 1e-9)
	assert.Equal(t, 0, byTicker["C"].HighCorrelationCount)
	assert.InDelta(t, 0.95, byTicker["C"].DiversificationScore, 1e-9)

	// Sorted by diversification score, best first
	assert.Equal(t, "C", scores[0].Ticker)
	assert.Equal(t, "A", scores[2].Ticker)
}

func TestScoreTickersSkipsAbsent(t *testing.T) {
	scores := ScoreTickers([]string{"A", "ZZZ", "C"}, testMatrix(), 0.7, zerolog.Nop())

	require.Len(t, scores, 2, "tickers without correlation data are skipped")
	for _, s := range scores {
		assert.NotEqual(t, "ZZZ", s.Ticker)
	}
}
