package marketdata

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// MinCommonDays is the minimum number of overlapping trading days two tickers
// must share before a correlation coefficient is considered meaningful.
const MinCommonDays = 20

// Provider computes pairwise return correlations from stored price history.
type Provider struct {
	history *HistoryRepository
	log     zerolog.Logger
}

// NewProvider creates a new market data provider
func NewProvider(history *HistoryRepository, log zerolog.Logger) *Provider {
	return &Provider{
		history: history,
		log:     log.With().Str("component", "marketdata").Logger(),
	}
}

// PearsonCorrelation computes the Pearson correlation coefficient of the daily
// return series of two tickers over [startDate, endDate]. Returns nil when the
// tickers share fewer than MinCommonDays trading days or the coefficient is
// undefined (zero variance in either series).
func (p *Provider) PearsonCorrelation(ticker1, ticker2, startDate, endDate string) (*float64, error) {
	closes1, closes2, err := p.alignedCloses(ticker1, ticker2, startDate, endDate)
	if err != nil {
		return nil, err
	}

	if len(closes1) < MinCommonDays {
		p.log.Debug().
			Str("ticker1", ticker1).
			Str("ticker2", ticker2).
			Int("common_days", len(closes1)).
			Msg("Insufficient common trading days for correlation")
		return nil, nil
	}

	// Daily returns via rate-of-change; the first element is a warm-up zero.
	returns1 := talib.Rocp(closes1, 1)[1:]
	returns2 := talib.Rocp(closes2, 1)[1:]

	corr := stat.Correlation(returns1, returns2, nil)
	if math.IsNaN(corr) || math.IsInf(corr, 0) {
		// Zero variance in one of the series (e.g. a flat price line)
		return nil, nil
	}

	// Guard against floating point drift outside [-1, 1]
	corr = math.Max(-1.0, math.Min(1.0, corr))

	return &corr, nil
}

// CommonTradingDays returns the number of dates on which both tickers have a close
func (p *Provider) CommonTradingDays(ticker1, ticker2, startDate, endDate string) (int, error) {
	closes1, _, err := p.alignedCloses(ticker1, ticker2, startDate, endDate)
	if err != nil {
		return 0, err
	}
	return len(closes1), nil
}

// alignedCloses loads both close series and intersects them on trading date
func (p *Provider) alignedCloses(ticker1, ticker2, startDate, endDate string) ([]float64, []float64, error) {
	prices1, err := p.history.GetDailyRange(ticker1, startDate, endDate)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load prices for %s: %w", ticker1, err)
	}

	prices2, err := p.history.GetDailyRange(ticker2, startDate, endDate)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load prices for %s: %w", ticker2, err)
	}

	byDate := make(map[string]float64, len(prices2))
	for _, p2 := range prices2 {
		byDate[p2.Date] = p2.ClosePrice
	}

	closes1 := make([]float64, 0, len(prices1))
	closes2 := make([]float64, 0, len(prices1))
	for _, p1 := range prices1 {
		if c2, ok := byDate[p1.Date]; ok {
			closes1 = append(closes1, p1.ClosePrice)
			closes2 = append(closes2, c2)
		}
	}

	return closes1, closes2, nil
}
