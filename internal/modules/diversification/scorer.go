package diversification

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/belovelace/Portfolio-Optimizer/internal/modules/correlation"
)

// ScoreTickers computes a per-instrument diversification score against the
// matrix. Tickers absent from the matrix are skipped with a warning; the
// matrix's 0.0 default for unmeasured pairs counts as "no correlation", so a
// sparsely measured instrument scores well.
func ScoreTickers(tickers []string, m *correlation.Matrix, threshold float64, log zerolog.Logger) []Score {
	scores := make([]Score, 0, len(tickers))

	for _, ticker := range tickers {
		if !m.Has(ticker) {
			log.Warn().Str("ticker", ticker).Msg("Ticker has no correlation data, skipping")
			continue
		}

		sum := 0.0
		highCount := 0
		others := 0
		for _, other := range m.Tickers() {
			if other == ticker {
				continue
			}

			v := m.Value(ticker, other)
			sum += v
			others++
			if math.Abs(v) >= threshold {
				highCount++
			}
		}

		avg := 0.0
		if others > 0 {
			avg = sum / float64(others)
		}

		scores = append(scores, Score{
			Ticker:               ticker,
			AvgCorrelation:       avg,
			HighCorrelationCount: highCount,
			DiversificationScore: 1.0 - math.Abs(avg),
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].DiversificationScore > scores[j].DiversificationScore
	})

	return scores
}
