package diversification

import (
	"fmt"
	"math"

	"github.com/belovelace/Portfolio-Optimizer/internal/modules/correlation"
)

// SelectGreedy walks the pre-sorted scores once, accepting each candidate
// unless it correlates too strongly with an already selected instrument.
// Rejected candidates keep an exclusion reason naming the conflict; there is
// no backtracking, so the result can fall short of targetCount.
func SelectGreedy(scores []Score, m *correlation.Matrix, threshold float64, targetCount int) []Score {
	selected := make([]Score, 0, targetCount)

	for i := range scores {
		if len(selected) >= targetCount {
			break
		}

		conflict, value, ok := findConflict(scores[i].Ticker, selected, m, threshold)
		if ok {
			scores[i].Selected = false
			scores[i].ExclusionReason = fmt.Sprintf("high correlation with %s (%.4f)", conflict, value)
			continue
		}

		scores[i].Selected = true
		scores[i].Rank = len(selected) + 1
		scores[i].ExclusionReason = ""
		selected = append(selected, scores[i])
	}

	return selected
}

func findConflict(ticker string, selected []Score, m *correlation.Matrix, threshold float64) (string, float64, bool) {
	for _, s := range selected {
		v := m.Value(ticker, s.Ticker)
		if math.Abs(v) >= threshold {
			return s.Ticker, v, true
		}
	}
	return "", 0.0, false
}

// PortfolioAvgCorrelation is the mean absolute pairwise correlation across the
// selected instruments, 0.0 for portfolios of fewer than two.
func PortfolioAvgCorrelation(selected []Score, m *correlation.Matrix) float64 {
	if len(selected) < 2 {
		return 0.0
	}

	sum := 0.0
	pairs := 0
	for i := 0; i < len(selected); i++ {
		for j := i + 1; j < len(selected); j++ {
			sum += math.Abs(m.Value(selected[i].Ticker, selected[j].Ticker))
			pairs++
		}
	}

	return sum / float64(pairs)
}

// PortfolioScore maps the average pairwise correlation to a 0-100 score
func PortfolioScore(avgCorrelation float64) float64 {
	return (1.0 - avgCorrelation) * 100.0
}
