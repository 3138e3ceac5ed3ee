package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateGuideEmpty(t *testing.T) {
	guide := GenerateGuide(nil, 0.7)

	assert.Equal(t, 0.0, guide.OverallDiversificationScore)
	assert.Equal(t, AssessmentPoor, guide.RiskAssessment)
	assert.Equal(t, []string{"Run a correlation analysis first."}, guide.Recommendations)
	assert.Empty(t, guide.Warnings)
}

func TestGenerateGuideWellDiversified(t *testing.T) {
	records := []*Record{
		{Ticker1: "A", Ticker2: "B", Correlation1Y: f(0.1)},
		{Ticker1: "A", Ticker2: "C", Correlation1Y: f(-0.1)},
	}

	guide := GenerateGuide(records, 0.7)

	// No high pairs: base 70; mean |avg| 0.1: bonus 27
	assert.InDelta(t, 97.0, guide.OverallDiversificationScore, 1e-9)
	assert.Equal(t, AssessmentExcellent, guide.RiskAssessment)
	assert.Equal(t, 0, guide.HighlyCorrelatedPairCount)
	require.Len(t, guide.Recommendations, 1)
	assert.Contains(t, guide.Recommendations[0], "Excellent diversification")
}

func TestGenerateGuideHighlyCorrelated(t *testing.T) {
	records := []*Record{
		{Ticker1: "A", Ticker2: "B", Correlation1Y: f(0.95)},
		{Ticker1: "A", Ticker2: "C", Correlation1Y: f(0.9)},
	}

	guide := GenerateGuide(records, 0.7)

	// All pairs high: base 0; mean |avg| 0.925: bonus 2.25
	assert.InDelta(t, 2.25, guide.OverallDiversificationScore, 1e-9)
	assert.Equal(t, AssessmentPoor, guide.RiskAssessment)
	assert.Equal(t, 2, guide.HighlyCorrelatedPairCount)

	// Three POOR recommendations plus the majority-high extra line
	require.Len(t, guide.Recommendations, 4)
	assert.Contains(t, guide.Recommendations[3], "Many pairs are highly correlated")
}

func TestGenerateGuideWarnings(t *testing.T) {
	records := []*Record{
		{Ticker1: "A", Ticker2: "B", Correlation1Y: f(0.95)},
		{Ticker1: "A", Ticker2: "C", Correlation1Y: f(-0.5)},
		{Ticker1: "B", Ticker2: "C", Correlation1Y: f(0.2)},
	}

	guide := GenerateGuide(records, 0.7)

	require.Len(t, guide.Warnings, 2)
	assert.Contains(t, guide.Warnings[0], "1 pair(s) have very high correlation")
	assert.Contains(t, guide.Warnings[1], "1 pair(s) are negatively correlated")
}

func TestGenerateGuideNilAverages(t *testing.T) {
	// A record with no window data counts toward pair totals but adds
	// nothing to the mean absolute correlation.
	records := []*Record{
		{Ticker1: "A", Ticker2: "B"},
		{Ticker1: "A", Ticker2: "C", Correlation1Y: f(0.4)},
	}

	guide := GenerateGuide(records, 0.7)

	// base 70; mean |avg| = 0.4/2 = 0.2: bonus 24
	assert.InDelta(t, 94.0, guide.OverallDiversificationScore, 1e-9)
	assert.InDelta(t, 0.2, guide.AverageCorrelation, 1e-9)
	assert.Empty(t, guide.Warnings)
}

func TestGenerateGuideRounding(t *testing.T) {
	records := []*Record{
		{Ticker1: "A", Ticker2: "B", Correlation1Y: f(0.333333)},
	}

	guide := GenerateGuide(records, 0.7)

	assert.Equal(t, 90.0, guide.OverallDiversificationScore)
	assert.Equal(t, 0.333, guide.AverageCorrelation)
}
