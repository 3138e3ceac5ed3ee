package correlation

import "math"

// Window identifies an analysis time window
type Window string

const (
	Window3M  Window = "3M"
	Window6M  Window = "6M"
	Window1Y  Window = "1Y"
	WindowAll Window = "ALL"
)

// Windows lists the three concrete analysis windows in display order
var Windows = []Window{Window3M, Window6M, Window1Y}

// Valid reports whether w is a known window selector
func (w Window) Valid() bool {
	switch w {
	case Window3M, Window6M, Window1Y, WindowAll:
		return true
	}
	return false
}

// Months returns the window length in months (0 for ALL)
func (w Window) Months() int {
	switch w {
	case Window3M:
		return 3
	case Window6M:
		return 6
	case Window1Y:
		return 12
	}
	return 0
}

// Includes reports whether the selector covers the given concrete window
func (w Window) Includes(other Window) bool {
	return w == WindowAll || w == other
}

// Record is one stored pairwise correlation result. The pair is unordered;
// Ticker1 < Ticker2 by convention. Window coefficients are nil when the
// underlying data was unavailable for that window.
type Record struct {
	ID                int64    `json:"correlation_id"`
	SessionID         string   `json:"session_id"`
	Ticker1           string   `json:"ticker1"`
	Ticker2           string   `json:"ticker2"`
	Correlation3M     *float64 `json:"correlation_3m"`
	Correlation6M     *float64 `json:"correlation_6m"`
	Correlation1Y     *float64 `json:"correlation_1y"`
	AnalysisStartDate string   `json:"analysis_start_date"`
	AnalysisEndDate   string   `json:"analysis_end_date"`
	AnalysisDate      string   `json:"analysis_date"`
}

// WindowValue returns the stored coefficient for a concrete window
func (r *Record) WindowValue(w Window) *float64 {
	switch w {
	case Window3M:
		return r.Correlation3M
	case Window6M:
		return r.Correlation6M
	case Window1Y:
		return r.Correlation1Y
	}
	return nil
}

// AverageCorrelation is the arithmetic mean of the non-nil window values,
// or nil when no window has data.
func (r *Record) AverageCorrelation() *float64 {
	count := 0
	sum := 0.0

	for _, w := range Windows {
		if v := r.WindowValue(w); v != nil {
			sum += *v
			count++
		}
	}

	if count == 0 {
		return nil
	}

	avg := sum / float64(count)
	return &avg
}

// IsHighCorrelation reports whether |average correlation| meets the threshold
func (r *Record) IsHighCorrelation(threshold float64) bool {
	avg := r.AverageCorrelation()
	return avg != nil && math.Abs(*avg) >= threshold
}

// Risk levels for a correlation pair
const (
	RiskHigh    = "HIGH"
	RiskMedium  = "MEDIUM"
	RiskLow     = "LOW"
	RiskUnknown = "UNKNOWN"
)

// RiskLevel classifies the pair's average correlation against a threshold.
// MEDIUM starts at 70% of the threshold.
func (r *Record) RiskLevel(threshold float64) string {
	avg := r.AverageCorrelation()
	if avg == nil {
		return RiskUnknown
	}

	absCorr := math.Abs(*avg)
	switch {
	case absCorr >= threshold:
		return RiskHigh
	case absCorr >= threshold*0.7:
		return RiskMedium
	default:
		return RiskLow
	}
}

// AnalysisRequest is the correlation analysis request body
type AnalysisRequest struct {
	Tickers                  []string `json:"tickers"`
	Window                   Window   `json:"window"`
	HighCorrelationThreshold *float64 `json:"high_correlation_threshold"`
}

// DefaultHighCorrelationThreshold is applied when a request omits the threshold
const DefaultHighCorrelationThreshold = 0.7

// Threshold returns the requested threshold or the default
func (req *AnalysisRequest) Threshold() float64 {
	if req.HighCorrelationThreshold == nil {
		return DefaultHighCorrelationThreshold
	}
	return *req.HighCorrelationThreshold
}

// HighCorrelationPair is a pair whose average correlation meets the threshold
type HighCorrelationPair struct {
	Ticker1            string   `json:"ticker1"`
	Ticker2            string   `json:"ticker2"`
	StockName1         string   `json:"stock_name1"`
	StockName2         string   `json:"stock_name2"`
	Correlation3M      *float64 `json:"correlation_3m"`
	Correlation6M      *float64 `json:"correlation_6m"`
	Correlation1Y      *float64 `json:"correlation_1y"`
	AverageCorrelation *float64 `json:"average_correlation"`
	RiskLevel          string   `json:"risk_level"`
}

// PeriodMatrices carries one correlation matrix per analysis window,
// keyed ticker -> ticker -> coefficient.
type PeriodMatrices struct {
	ThreeMonth map[string]map[string]float64 `json:"three_month_matrix"`
	SixMonth   map[string]map[string]float64 `json:"six_month_matrix"`
	OneYear    map[string]map[string]float64 `json:"one_year_matrix"`
}

// Guide is the qualitative diversification assessment
type Guide struct {
	OverallDiversificationScore float64  `json:"overall_diversification_score"`
	RiskAssessment              string   `json:"risk_assessment"`
	Recommendations             []string `json:"recommendations"`
	Warnings                    []string `json:"warnings"`
	HighlyCorrelatedPairCount   int      `json:"highly_correlated_pair_count"`
	AverageCorrelation          float64  `json:"average_correlation"`
}

// AnalysisResult is the full correlation analysis response
type AnalysisResult struct {
	SessionID            string                `json:"session_id"`
	AnalysisDate         string                `json:"analysis_date"`
	AnalysisStartDate    string                `json:"analysis_start_date,omitempty"`
	AnalysisEndDate      string                `json:"analysis_end_date,omitempty"`
	Tickers              []string              `json:"tickers"`
	CorrelationMatrix    *PeriodMatrices       `json:"correlation_matrix,omitempty"`
	HighCorrelationPairs []HighCorrelationPair `json:"high_correlation_pairs"`
	DiversificationGuide *Guide                `json:"diversification_guide,omitempty"`
}

// HeatmapWindow is one window's visualization-ready matrix with aggregates
type HeatmapWindow struct {
	Window   Window      `json:"period"`
	Matrix   [][]float64 `json:"matrix"`
	MinValue float64     `json:"min_value"`
	MaxValue float64     `json:"max_value"`
	AvgValue float64     `json:"avg_value"`
}

// Heatmap is the visualization payload for all windows
type Heatmap struct {
	Labels     []string        `json:"labels"`
	WindowData []HeatmapWindow `json:"period_data"`
}
