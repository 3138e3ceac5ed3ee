package marketdata

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belovelace/Portfolio-Optimizer/internal/clients/yahoo"
)

type fakeFetcher struct {
	bars    map[string][]yahoo.DailyBar
	errs    map[string]error
	periods map[string]string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		bars:    map[string][]yahoo.DailyBar{},
		errs:    map[string]error{},
		periods: map[string]string{},
	}
}

func (f *fakeFetcher) DailyHistory(symbol, period string) ([]yahoo.DailyBar, error) {
	f.periods[symbol] = period
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	return f.bars[symbol], nil
}

type fakeTickerSource struct {
	tickers []string
	err     error
}

func (f *fakeTickerSource) Tickers() ([]string, error) {
	return f.tickers, f.err
}

func dailyBars(start time.Time, closes ...float64) []yahoo.DailyBar {
	bars := make([]yahoo.DailyBar, len(closes))
	for i, c := range closes {
		bars[i] = yahoo.DailyBar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func newTestSyncService(t *testing.T, fetcher BarFetcher, tickers TickerSource) (*SyncService, *HistoryRepository) {
	t.Helper()

	repo := NewHistoryRepository(t.TempDir(), zerolog.Nop())
	t.Cleanup(func() { repo.Close() })

	return NewSyncService(fetcher, tickers, repo, 0, zerolog.Nop()), repo
}

func TestSyncTickerSeedsEmptyHistory(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.bars["AAPL"] = dailyBars(time.Now().AddDate(0, -1, 0), 100, 101, 102)
	svc, repo := newTestSyncService(t, fetcher, &fakeTickerSource{})

	require.NoError(t, svc.SyncTicker("AAPL"))

	assert.Equal(t, seedPeriod, fetcher.periods["AAPL"], "empty history gets the seed period")

	start := time.Now().AddDate(0, -2, 0).Format("2006-01-02")
	end := time.Now().Format("2006-01-02")
	prices, err := repo.GetDailyRange("AAPL", start, end)
	require.NoError(t, err)
	assert.Len(t, prices, 3)
}

func TestSyncTickerTopsUpExistingHistory(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.bars["MSFT"] = dailyBars(time.Now().AddDate(0, 0, -2), 300, 301)
	svc, repo := newTestSyncService(t, fetcher, &fakeTickerSource{})

	// Recent data already on disk
	require.NoError(t, repo.UpsertDailyPrices("MSFT", []DailyPrice{
		{Date: time.Now().AddDate(0, -1, 0).Format("2006-01-02"), ClosePrice: 295, Volume: 500},
	}))

	require.NoError(t, svc.SyncTicker("MSFT"))

	assert.Equal(t, ongoingPeriod, fetcher.periods["MSFT"], "populated history gets the short top-up period")
}

func TestSyncTickerPropagatesFetchError(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.errs["GOOG"] = errors.New("upstream timeout")
	svc, _ := newTestSyncService(t, fetcher, &fakeTickerSource{})

	err := svc.SyncTicker("GOOG")

	assert.ErrorContains(t, err, "upstream timeout")
}

func TestSyncAllSkipsFailedTickers(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.bars["AAPL"] = dailyBars(time.Now().AddDate(0, -1, 0), 100, 101)
	fetcher.errs["GOOG"] = errors.New("upstream timeout")
	fetcher.bars["MSFT"] = dailyBars(time.Now().AddDate(0, -1, 0), 300, 301)

	source := &fakeTickerSource{tickers: []string{"AAPL", "GOOG", "MSFT"}}
	svc, repo := newTestSyncService(t, fetcher, source)

	require.NoError(t, svc.SyncAll())

	// The tickers around the failure were still synced
	start := time.Now().AddDate(0, -2, 0).Format("2006-01-02")
	end := time.Now().Format("2006-01-02")

	for _, ticker := range []string{"AAPL", "MSFT"} {
		prices, err := repo.GetDailyRange(ticker, start, end)
		require.NoError(t, err)
		assert.Len(t, prices, 2, ticker)
	}

	goog, err := repo.GetDailyRange("GOOG", start, end)
	require.NoError(t, err)
	assert.Empty(t, goog)
}

func TestSyncAllPropagatesTickerSourceError(t *testing.T) {
	svc, _ := newTestSyncService(t, newFakeFetcher(), &fakeTickerSource{err: errors.New("catalog unavailable")})

	err := svc.SyncAll()

	assert.ErrorContains(t, err, "catalog unavailable")
}
