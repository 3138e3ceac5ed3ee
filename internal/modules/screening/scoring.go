package screening

import (
	"sort"

	"github.com/belovelace/Portfolio-Optimizer/internal/modules/stocks"
)

// rankScores assigns each instrument a rank-based score in [0, 1] for one
// factor: the best-ranked instrument gets 1.0, the worst 0.0, with linear
// steps between. Instruments without a value stay at 0.0.
//
// value extracts the factor; lowerIsBetter orders PER and PBR ascending,
// ROE descending.
func rankScores(universe []*stocks.Stock, value func(*stocks.Stock) *float64, lowerIsBetter bool) map[string]float64 {
	type entry struct {
		ticker string
		v      float64
	}

	entries := make([]entry, 0, len(universe))
	for _, s := range universe {
		if v := value(s); v != nil {
			entries = append(entries, entry{ticker: s.Ticker, v: *v})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if lowerIsBetter {
			return entries[i].v < entries[j].v
		}
		return entries[i].v > entries[j].v
	})

	scores := make(map[string]float64, len(entries))
	n := len(entries)
	for i, e := range entries {
		if n == 1 {
			scores[e.ticker] = 1.0
			continue
		}
		scores[e.ticker] = 1.0 - float64(i)/float64(n-1)
	}
	return scores
}

// scoreUniverse computes composite scores and final ranks for the whole
// catalog under the given weights.
func scoreUniverse(universe []*stocks.Stock, weights Weights) []*Result {
	perScores := rankScores(universe, func(s *stocks.Stock) *float64 { return s.PER }, true)
	pbrScores := rankScores(universe, func(s *stocks.Stock) *float64 { return s.PBR }, true)
	roeScores := rankScores(universe, func(s *stocks.Stock) *float64 { return s.ROE }, false)

	results := make([]*Result, 0, len(universe))
	for _, s := range universe {
		r := &Result{
			Ticker:    s.Ticker,
			StockName: s.StockName,
			Industry:  s.Industry,
			PER:       s.PER,
			PBR:       s.PBR,
			ROE:       s.ROE,
			PERScore:  perScores[s.Ticker],
			PBRScore:  pbrScores[s.Ticker],
			ROEScore:  roeScores[s.Ticker],
		}
		r.CompositeScore = weights.PER*r.PERScore + weights.PBR*r.PBRScore + weights.ROE*r.ROEScore
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompositeScore > results[j].CompositeScore
	})

	for i, r := range results {
		r.Rank = i + 1
		r.IsTop50 = r.Rank <= Top50Cutoff
	}

	return results
}
