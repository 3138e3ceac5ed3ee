package screening

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/belovelace/Portfolio-Optimizer/internal/modules/stocks"
)

func newTestService(t *testing.T) (*Service, *stocks.Repository) {
	t.Helper()

	dir := t.TempDir()

	marketDB, err := sql.Open("sqlite", filepath.Join(dir, "market.db"))
	require.NoError(t, err)
	t.Cleanup(func() { marketDB.Close() })

	analysisDB, err := sql.Open("sqlite", filepath.Join(dir, "analysis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { analysisDB.Close() })

	catalog := stocks.NewRepository(marketDB, zerolog.Nop())
	require.NoError(t, catalog.EnsureSchema())

	store := NewStore(analysisDB, zerolog.Nop())
	require.NoError(t, store.EnsureSchema())

	return NewService(catalog, store, zerolog.Nop()), catalog
}

func TestRunInvalidWeights(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Run("s1", &Request{Weights: &Weights{PER: 0.9, PBR: 0.9, ROE: 0.9}})
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestRunEmptyUniverse(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Run("s1", &Request{})
	assert.ErrorIs(t, err, ErrEmptyUniverse)
}

func TestRunAndResults(t *testing.T) {
	svc, catalog := newTestService(t)

	for _, s := range testUniverse() {
		require.NoError(t, catalog.Upsert(s))
	}

	page, err := svc.Run("s1", &Request{})
	require.NoError(t, err)

	require.Len(t, page.Items, 3)
	assert.Equal(t, "CHEAP", page.Items[0].Ticker)
	assert.Equal(t, 1, page.Items[0].Rank)
	assert.True(t, page.Items[0].IsTop50)
	require.NotNil(t, page.Weights)
	assert.Equal(t, DefaultWeights, *page.Weights)

	stored, err := svc.Results("s1", 1, 2, false)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, 3, stored.TotalCount)
	assert.Equal(t, 2, stored.TotalPages)
}

func TestRunReplacesPriorResults(t *testing.T) {
	svc, catalog := newTestService(t)

	for _, s := range testUniverse() {
		require.NoError(t, catalog.Upsert(s))
	}

	_, err := svc.Run("s1", &Request{})
	require.NoError(t, err)

	// Favor ROE heavily and re-run
	_, err = svc.Run("s1", &Request{Weights: &Weights{PER: 0.0, PBR: 0.0, ROE: 1.0}})
	require.NoError(t, err)

	stored, err := svc.Results("s1", 1, 20, false)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.TotalCount, "re-run replaces, not appends")
}

func TestResultsTop50Filter(t *testing.T) {
	svc, catalog := newTestService(t)

	for i := 0; i < 60; i++ {
		require.NoError(t, catalog.Upsert(&stocks.Stock{
			Ticker:    fmt.Sprintf("T%03d", i),
			StockName: fmt.Sprintf("Stock %03d", i),
			PER:       f(float64(i + 1)),
			PBR:       f(float64(i + 1)),
			ROE:       f(float64(60 - i)),
		}))
	}

	_, err := svc.Run("s1", &Request{})
	require.NoError(t, err)

	top, err := svc.Results("s1", 1, 100, true)
	require.NoError(t, err)
	assert.Equal(t, Top50Cutoff, top.TotalCount)
	for _, r := range top.Items {
		assert.True(t, r.IsTop50)
		assert.LessOrEqual(t, r.Rank, Top50Cutoff)
	}
}

func TestDeleteResults(t *testing.T) {
	svc, catalog := newTestService(t)

	for _, s := range testUniverse() {
		require.NoError(t, catalog.Upsert(s))
	}

	_, err := svc.Run("s1", &Request{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete("s1"))

	stored, err := svc.Results("s1", 1, 20, false)
	require.NoError(t, err)
	assert.Empty(t, stored.Items)
}
