package screening

import "math"

// Top50Cutoff marks the rank boundary for the shortlist flag
const Top50Cutoff = 50

// Weights are the factor weights of a screening run. They must sum to 1.0
// within a small tolerance.
type Weights struct {
	PER float64 `json:"per_weight"`
	PBR float64 `json:"pbr_weight"`
	ROE float64 `json:"roe_weight"`
}

// DefaultWeights splits the composite evenly between value and quality factors
var DefaultWeights = Weights{PER: 0.4, PBR: 0.3, ROE: 0.3}

// Valid reports whether the weights are non-negative and sum to 1.0 (±0.01)
func (w Weights) Valid() bool {
	if w.PER < 0 || w.PBR < 0 || w.ROE < 0 {
		return false
	}
	return math.Abs(w.PER+w.PBR+w.ROE-1.0) <= 0.01
}

// Request is the screening run request body
type Request struct {
	Weights *Weights `json:"weights"`
}

// EffectiveWeights returns the requested weights or the defaults
func (r *Request) EffectiveWeights() Weights {
	if r == nil || r.Weights == nil {
		return DefaultWeights
	}
	return *r.Weights
}

// Result is one instrument's multifactor screening outcome. Factor scores are
// rank-based in [0, 1]; instruments missing a factor value score 0.0 on it.
type Result struct {
	SessionID      string   `json:"session_id,omitempty"`
	Ticker         string   `json:"ticker"`
	StockName      string   `json:"stock_name"`
	Industry       string   `json:"industry"`
	PER            *float64 `json:"per"`
	PBR            *float64 `json:"pbr"`
	ROE            *float64 `json:"roe"`
	PERScore       float64  `json:"per_score"`
	PBRScore       float64  `json:"pbr_score"`
	ROEScore       float64  `json:"roe_score"`
	CompositeScore float64  `json:"composite_score"`
	Rank           int      `json:"rank"`
	IsTop50        bool     `json:"is_top50"`
}

// ResultPage is a paginated slice of a session's stored screening results
type ResultPage struct {
	Items      []*Result `json:"items"`
	Page       int       `json:"page"`
	Size       int       `json:"size"`
	TotalCount int       `json:"total_count"`
	TotalPages int       `json:"total_pages"`
	Weights    *Weights  `json:"weights,omitempty"`
}
