package diversification

// Defaults applied when an optimization request omits the tuning knobs
const (
	DefaultCorrelationThreshold = 0.7
	DefaultTargetStockCount     = 5
	DefaultAnalysisWindow       = "1Y"

	// AlgorithmName labels the selection strategy in responses
	AlgorithmName = "Greedy Algorithm with Correlation Threshold"
)

// Request is the portfolio optimization request body
type Request struct {
	Tickers              []string `json:"tickers"`
	CorrelationThreshold *float64 `json:"correlation_threshold"`
	TargetStockCount     *int     `json:"target_stock_count"`
	AnalysisWindow       string   `json:"analysis_window"`
}

// Threshold returns the requested correlation threshold or the default
func (r *Request) Threshold() float64 {
	if r.CorrelationThreshold == nil {
		return DefaultCorrelationThreshold
	}
	return *r.CorrelationThreshold
}

// TargetCount returns the requested portfolio size or the default
func (r *Request) TargetCount() int {
	if r.TargetStockCount == nil {
		return DefaultTargetStockCount
	}
	return *r.TargetStockCount
}

// Window returns the requested analysis window or the default
func (r *Request) Window() string {
	if r.AnalysisWindow == "" {
		return DefaultAnalysisWindow
	}
	return r.AnalysisWindow
}

// Score is one instrument's diversification assessment. Selected and Rank are
// filled by the greedy selector; ExclusionReason is set only on rejection.
type Score struct {
	Ticker               string  `json:"ticker"`
	StockName            string  `json:"stock_name"`
	AvgCorrelation       float64 `json:"avg_correlation"`
	HighCorrelationCount int     `json:"high_correlation_count"`
	DiversificationScore float64 `json:"diversification_score"`
	Selected             bool    `json:"selected"`
	Rank                 int     `json:"rank,omitempty"`
	ExclusionReason      string  `json:"exclusion_reason,omitempty"`
}

// Summary describes the optimization run parameters and outcome counts
type Summary struct {
	InputStockCount   int     `json:"input_stock_count"`
	OutputStockCount  int     `json:"output_stock_count"`
	RemovedStockCount int     `json:"removed_stock_count"`
	Threshold         float64 `json:"correlation_threshold"`
	AnalysisWindow    string  `json:"analysis_window"`
	Algorithm         string  `json:"algorithm"`
}

// Response is the full optimization result
type Response struct {
	AllScores                     []Score                       `json:"all_scores"`
	SelectedStocks                []Score                       `json:"selected_stocks"`
	ExcludedStocks                []Score                       `json:"excluded_stocks"`
	PortfolioAvgCorrelation       float64                       `json:"portfolio_avg_correlation"`
	PortfolioDiversificationScore float64                       `json:"portfolio_diversification_score"`
	CorrelationMatrix             map[string]map[string]float64 `json:"correlation_matrix"`
	Summary                       Summary                       `json:"summary"`
}
