package marketdata

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/belovelace/Portfolio-Optimizer/internal/clients/yahoo"
)

const (
	// seedPeriod covers a fresh ticker: enough history for the ALL window
	seedPeriod = "2y"
	// ongoingPeriod tops up a ticker that already has recent data
	ongoingPeriod = "3mo"
)

// BarFetcher fetches daily bars for a symbol over a Yahoo period string
type BarFetcher interface {
	DailyHistory(symbol, period string) ([]yahoo.DailyBar, error)
}

// TickerSource lists the symbols to keep in sync
type TickerSource interface {
	Tickers() ([]string, error)
}

// SyncService keeps the per-ticker history databases populated from the
// upstream price feed. One fetch per ticker, spaced by rateLimitDelay so
// a full pass stays under the feed's throttling limits.
type SyncService struct {
	fetcher        BarFetcher
	tickers        TickerSource
	history        *HistoryRepository
	rateLimitDelay time.Duration
	log            zerolog.Logger
}

func NewSyncService(
	fetcher BarFetcher,
	tickers TickerSource,
	history *HistoryRepository,
	rateLimitDelay time.Duration,
	log zerolog.Logger,
) *SyncService {
	return &SyncService{
		fetcher:        fetcher,
		tickers:        tickers,
		history:        history,
		rateLimitDelay: rateLimitDelay,
		log:            log.With().Str("component", "history_sync").Logger(),
	}
}

// SyncAll refreshes every cataloged ticker. A failed ticker is logged and
// skipped; one bad symbol must not starve the rest of the universe.
func (s *SyncService) SyncAll() error {
	symbols, err := s.tickers.Tickers()
	if err != nil {
		return err
	}

	synced := 0
	for i, symbol := range symbols {
		if i > 0 && s.rateLimitDelay > 0 {
			time.Sleep(s.rateLimitDelay)
		}

		if err := s.SyncTicker(symbol); err != nil {
			s.log.Warn().Err(err).Str("ticker", symbol).Msg("Sync failed, skipping ticker")
			continue
		}
		synced++
	}

	s.log.Info().
		Int("synced", synced).
		Int("total", len(symbols)).
		Msg("History sync pass complete")
	return nil
}

// SyncTicker fetches and stores daily bars for one symbol. Tickers with no
// recent rows get the longer seed period; the rest get a short top-up. The
// upsert makes re-fetching overlapping dates harmless.
func (s *SyncService) SyncTicker(symbol string) error {
	period, err := s.periodFor(symbol)
	if err != nil {
		return err
	}

	bars, err := s.fetcher.DailyHistory(symbol, period)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		s.log.Debug().Str("ticker", symbol).Str("period", period).Msg("No bars returned")
		return nil
	}

	prices := make([]DailyPrice, 0, len(bars))
	for _, bar := range bars {
		prices = append(prices, DailyPrice{
			Date:       bar.Date.Format("2006-01-02"),
			ClosePrice: bar.Close,
			OpenPrice:  bar.Open,
			HighPrice:  bar.High,
			LowPrice:   bar.Low,
			Volume:     bar.Volume,
		})
	}

	if err := s.history.UpsertDailyPrices(symbol, prices); err != nil {
		return err
	}

	s.log.Debug().
		Str("ticker", symbol).
		Str("period", period).
		Int("bars", len(prices)).
		Msg("Ticker synced")
	return nil
}

func (s *SyncService) periodFor(symbol string) (string, error) {
	now := time.Now()
	start := now.AddDate(-1, 0, 0).Format("2006-01-02")
	end := now.Format("2006-01-02")

	count, err := s.history.CountPriceData(symbol, start, end)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return seedPeriod, nil
	}
	return ongoingPeriod, nil
}
