package correlation

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "analysis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewStore(db, zerolog.Nop())
	require.NoError(t, store.EnsureSchema())
	return store
}

func TestStoreInsertAndFind(t *testing.T) {
	store := newTestStore(t)

	rec := &Record{
		SessionID:         "s1",
		Ticker1:           "AAPL",
		Ticker2:           "GOOG",
		Correlation3M:     f(0.5),
		Correlation1Y:     f(0.7),
		AnalysisStartDate: "2025-08-29",
		AnalysisEndDate:   "2026-08-29",
		AnalysisDate:      "2026-08-29",
	}

	require.NoError(t, store.Insert(rec))
	assert.NotZero(t, rec.ID, "insert assigns the row id")

	records, err := store.FindBySession("s1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, "AAPL", got.Ticker1)
	require.NotNil(t, got.Correlation3M)
	assert.Equal(t, 0.5, *got.Correlation3M)
	assert.Nil(t, got.Correlation6M, "missing window round-trips as nil")
	require.NotNil(t, got.Correlation1Y)
	assert.Equal(t, 0.7, *got.Correlation1Y)
}

func TestStoreDeleteBySession(t *testing.T) {
	store := newTestStore(t)

	for _, sid := range []string{"s1", "s1", "s2"} {
		require.NoError(t, store.Insert(&Record{
			SessionID: sid, Ticker1: "A", Ticker2: "B",
			AnalysisStartDate: "2025-08-29", AnalysisEndDate: "2026-08-29", AnalysisDate: "2026-08-29",
		}))
	}

	require.NoError(t, store.DeleteBySession("s1"))

	s1, err := store.FindBySession("s1")
	require.NoError(t, err)
	assert.Empty(t, s1)

	s2, err := store.FindBySession("s2")
	require.NoError(t, err)
	assert.Len(t, s2, 1, "other sessions are untouched")
}

func TestStoreFindHighCorrelations(t *testing.T) {
	store := newTestStore(t)

	records := []*Record{
		{SessionID: "s1", Ticker1: "A", Ticker2: "B", Correlation1Y: f(0.9)},
		{SessionID: "s1", Ticker1: "A", Ticker2: "C", Correlation1Y: f(0.2)},
		{SessionID: "s1", Ticker1: "B", Ticker2: "C", Correlation1Y: f(-0.8)},
		{SessionID: "s1", Ticker1: "B", Ticker2: "D"}, // no data
	}
	for _, rec := range records {
		rec.AnalysisStartDate = "2025-08-29"
		rec.AnalysisEndDate = "2026-08-29"
		rec.AnalysisDate = "2026-08-29"
		require.NoError(t, store.Insert(rec))
	}

	high, err := store.FindHighCorrelations("s1", 0.7)
	require.NoError(t, err)
	require.Len(t, high, 2)
	assert.Equal(t, "B", high[0].Ticker2)
	assert.Equal(t, "C", high[1].Ticker2, "negative high correlation included by absolute value")
}

func TestStoreFindByTickers(t *testing.T) {
	store := newTestStore(t)

	records := []*Record{
		{SessionID: "s1", Ticker1: "A", Ticker2: "B", Correlation1Y: f(0.1)},
		{SessionID: "s1", Ticker1: "A", Ticker2: "C", Correlation1Y: f(0.2)},
		{SessionID: "s1", Ticker1: "B", Ticker2: "C", Correlation1Y: f(0.3)},
	}
	for _, rec := range records {
		rec.AnalysisStartDate = "2025-08-29"
		rec.AnalysisEndDate = "2026-08-29"
		rec.AnalysisDate = "2026-08-29"
		require.NoError(t, store.Insert(rec))
	}

	// Only pairs with BOTH endpoints in the list qualify
	found, err := store.FindByTickers("s1", []string{"A", "B"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "A", found[0].Ticker1)
	assert.Equal(t, "B", found[0].Ticker2)

	none, err := store.FindByTickers("s1", nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
