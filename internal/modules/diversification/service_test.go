package diversification

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/belovelace/Portfolio-Optimizer/internal/modules/correlation"
)

type fakeNames map[string]string

func (n fakeNames) DisplayNames(tickers []string) (map[string]string, error) {
	return n, nil
}

func newTestService(t *testing.T, names correlation.NameResolver) (*Service, *correlation.Store) {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "analysis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := correlation.NewStore(db, zerolog.Nop())
	require.NoError(t, store.EnsureSchema())

	return NewService(store, names, zerolog.Nop()), store
}

func seedRecords(t *testing.T, store *correlation.Store, sessionID string) {
	t.Helper()

	records := []*correlation.Record{
		{Ticker1: "A", Ticker2: "B", Correlation1Y: f(0.9)},
		{Ticker1: "A", Ticker2: "C", Correlation1Y: f(0.1)},
		{Ticker1: "B", Ticker2: "C", Correlation1Y: f(-0.2)},
	}
	for _, rec := range records {
		rec.SessionID = sessionID
		rec.AnalysisStartDate = "2025-08-29"
		rec.AnalysisEndDate = "2026-08-29"
		rec.AnalysisDate = "2026-08-29"
		require.NoError(t, store.Insert(rec))
	}
}

func TestOptimizeValidation(t *testing.T) {
	svc, _ := newTestService(t, fakeNames{})

	tests := []struct {
		name string
		req  Request
	}{
		{"too few tickers", Request{Tickers: []string{"A"}}},
		{"duplicate tickers", Request{Tickers: []string{"A", "A"}}},
		{"threshold out of range", Request{Tickers: []string{"A", "B"}, CorrelationThreshold: f(1.2)}},
		{"zero target count", Request{Tickers: []string{"A", "B"}, TargetStockCount: intp(0)}},
		{"unknown window", Request{Tickers: []string{"A", "B"}, AnalysisWindow: "5Y"}},
		{"ALL window rejected", Request{Tickers: []string{"A", "B"}, AnalysisWindow: "ALL"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Optimize("s1", &tt.req)
			assert.ErrorIs(t, err, correlation.ErrInvalidRequest)
		})
	}
}

func TestOptimizeNoData(t *testing.T) {
	svc, _ := newTestService(t, fakeNames{})

	_, err := svc.Optimize("s1", &Request{Tickers: []string{"A", "B"}})
	assert.ErrorIs(t, err, correlation.ErrNoData)
}

func TestOptimize(t *testing.T) {
	svc, store := newTestService(t, fakeNames{"A": "Alpha Corp", "B": "Beta Inc"})
	seedRecords(t, store, "s1")

	resp, err := svc.Optimize("s1", &Request{Tickers: []string{"A", "B", "C"}})
	require.NoError(t, err)

	require.Len(t, resp.AllScores, 3)
	require.Len(t, resp.SelectedStocks, 2)
	require.Len(t, resp.ExcludedStocks, 1)

	assert.Equal(t, "A", resp.ExcludedStocks[0].Ticker, "A conflicts with an already selected instrument")
	assert.NotEmpty(t, resp.ExcludedStocks[0].ExclusionReason)

	// Names resolved where known, "Unknown" otherwise
	for _, s := range resp.AllScores {
		switch s.Ticker {
		case "A":
			assert.Equal(t, "Alpha Corp", s.StockName)
		case "C":
			assert.Equal(t, "Unknown", s.StockName)
		}
	}

	// Selected portfolio is B and C: one pair at |-0.2|
	assert.InDelta(t, 0.2, resp.PortfolioAvgCorrelation, 1e-9)
	assert.InDelta(t, 80.0, resp.PortfolioDiversificationScore, 1e-9)

	require.Len(t, resp.CorrelationMatrix, 2, "response matrix covers only the selection")
	assert.NotContains(t, resp.CorrelationMatrix, "A")

	assert.Equal(t, 3, resp.Summary.InputStockCount)
	assert.Equal(t, 2, resp.Summary.OutputStockCount)
	assert.Equal(t, 1, resp.Summary.RemovedStockCount)
	assert.Equal(t, DefaultCorrelationThreshold, resp.Summary.Threshold)
	assert.Equal(t, DefaultAnalysisWindow, resp.Summary.AnalysisWindow)
	assert.Equal(t, AlgorithmName, resp.Summary.Algorithm)
}

func TestOptimizeUnanalyzedTickerSkipped(t *testing.T) {
	svc, store := newTestService(t, fakeNames{})
	seedRecords(t, store, "s1")

	// ZZZ has no stored records, so it cannot be scored
	resp, err := svc.Optimize("s1", &Request{Tickers: []string{"A", "B", "C", "ZZZ"}})
	require.NoError(t, err)

	assert.Len(t, resp.AllScores, 3)
	assert.Equal(t, 4, resp.Summary.InputStockCount)
}

func intp(v int) *int { return &v }
