// Package yahoo fetches daily price history from Yahoo Finance via the
// go-yfinance library. No API key is required.
package yahoo

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// DailyBar is one daily candle for a symbol
type DailyBar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

// Client wraps go-yfinance for daily history fetches
type Client struct {
	log zerolog.Logger
}

func NewClient(log zerolog.Logger) *Client {
	return &Client{
		log: log.With().Str("client", "yahoo").Logger(),
	}
}

// DailyHistory fetches adjusted daily bars for a symbol over a Yahoo period
// string such as "3mo", "1y" or "2y". Bars without a positive close are
// dropped; Yahoo emits those for halted or not-yet-settled days.
func (c *Client) DailyHistory(symbol, period string) ([]DailyBar, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("creating ticker for %s: %w", symbol, err)
	}
	defer t.Close()

	bars, err := t.History(models.HistoryParams{
		Period:     period,
		Interval:   "1d",
		AutoAdjust: true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching history for %s: %w", symbol, err)
	}

	out := make([]DailyBar, 0, len(bars))
	for _, bar := range bars {
		if bar.Close <= 0 {
			continue
		}
		out = append(out, DailyBar{
			Date:     bar.Date,
			Open:     bar.Open,
			High:     bar.High,
			Low:      bar.Low,
			Close:    bar.Close,
			AdjClose: bar.AdjClose,
			Volume:   int64(bar.Volume),
		})
	}

	c.log.Debug().
		Str("symbol", symbol).
		Str("period", period).
		Int("bars", len(out)).
		Msg("Fetched daily history")

	return out, nil
}
