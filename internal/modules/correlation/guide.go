package correlation

import (
	"fmt"
	"math"
)

// Risk assessment bands for the overall diversification score
const (
	AssessmentExcellent = "EXCELLENT"
	AssessmentGood      = "GOOD"
	AssessmentFair      = "FAIR"
	AssessmentPoor      = "POOR"
)

// GenerateGuide derives the qualitative diversification assessment from the
// stored records. An empty record set yields the sentinel "run analysis first"
// guide rather than an error.
func GenerateGuide(records []*Record, threshold float64) *Guide {
	if len(records) == 0 {
		return &Guide{
			OverallDiversificationScore: 0.0,
			RiskAssessment:              AssessmentPoor,
			Recommendations:             []string{"Run a correlation analysis first."},
			Warnings:                    []string{},
		}
	}

	highCount := 0
	for _, rec := range records {
		if rec.IsHighCorrelation(threshold) {
			highCount++
		}
	}

	// Mean |average correlation|; nil averages contribute 0.0
	meanAbsAvg := 0.0
	for _, rec := range records {
		if avg := rec.AverageCorrelation(); avg != nil {
			meanAbsAvg += math.Abs(*avg)
		}
	}
	meanAbsAvg /= float64(len(records))

	score := diversificationScore(records, threshold)

	return &Guide{
		OverallDiversificationScore: math.Round(score*100.0) / 100.0,
		RiskAssessment:              assessRisk(score),
		Recommendations:             recommendations(score, highCount, len(records)),
		Warnings:                    warnings(records),
		HighlyCorrelatedPairCount:   highCount,
		AverageCorrelation:          math.Round(meanAbsAvg*1000.0) / 1000.0,
	}
}

// diversificationScore combines the high-correlation ratio (70% weight) with
// the mean absolute average correlation (30% weight), clamped to [0, 100].
func diversificationScore(records []*Record, threshold float64) float64 {
	highCount := 0
	for _, rec := range records {
		if rec.IsHighCorrelation(threshold) {
			highCount++
		}
	}

	totalPairs := float64(len(records))
	highRatio := float64(highCount) / totalPairs

	baseScore := (1.0 - highRatio) * 70.0

	meanAbsAvg := 0.0
	for _, rec := range records {
		if avg := rec.AverageCorrelation(); avg != nil {
			meanAbsAvg += math.Abs(*avg)
		}
	}
	meanAbsAvg /= totalPairs

	bonusScore := (1.0 - meanAbsAvg) * 30.0

	return math.Max(0.0, math.Min(100.0, baseScore+bonusScore))
}

func assessRisk(score float64) string {
	switch {
	case score >= 80.0:
		return AssessmentExcellent
	case score >= 60.0:
		return AssessmentGood
	case score >= 40.0:
		return AssessmentFair
	default:
		return AssessmentPoor
	}
}

func recommendations(score float64, highCount, totalPairs int) []string {
	var recs []string

	switch {
	case score >= 80.0:
		recs = append(recs, "Excellent diversification. Keep the current portfolio composition.")
	case score >= 60.0:
		recs = append(recs, "Good diversification level. Consider adjusting a few holdings.")
	case score >= 40.0:
		recs = append(recs, "Limited diversification benefit. Consider swapping in lower-correlation holdings.")
		recs = append(recs, "Consider adding instruments from different industries.")
	default:
		recs = append(recs, "Poor diversification. The portfolio needs restructuring.")
		recs = append(recs, "Replace highly correlated holdings with instruments from other industries.")
		recs = append(recs, "Consider assets from different markets, domestic and international.")
	}

	highRatio := float64(highCount) / float64(totalPairs)
	if highRatio > 0.5 {
		recs = append(recs, "Many pairs are highly correlated. Strengthen portfolio diversification.")
	}

	return recs
}

func warnings(records []*Record) []string {
	warns := []string{}

	veryHighCount := 0
	negativeCount := 0
	for _, rec := range records {
		avg := rec.AverageCorrelation()
		if avg == nil {
			continue
		}
		if math.Abs(*avg) >= 0.9 {
			veryHighCount++
		}
		if *avg <= -0.3 {
			negativeCount++
		}
	}

	if veryHighCount > 0 {
		warns = append(warns, fmt.Sprintf(
			"%d pair(s) have very high correlation (0.9 or above). Duplication risk is high.", veryHighCount))
	}

	if negativeCount > 0 {
		warns = append(warns, fmt.Sprintf(
			"%d pair(s) are negatively correlated. A hedging effect can be expected.", negativeCount))
	}

	return warns
}
