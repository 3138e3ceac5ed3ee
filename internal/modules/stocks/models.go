package stocks

// Stock is one catalog entry with its fundamental indicators. Indicator
// fields are nil when the vendor feed had no value.
type Stock struct {
	Ticker    string   `json:"ticker"`
	StockName string   `json:"stock_name"`
	Industry  string   `json:"industry"`
	PER       *float64 `json:"per"`
	PBR       *float64 `json:"pbr"`
	ROE       *float64 `json:"roe"`
	DebtRatio *float64 `json:"debt_ratio"`
}

// Page is a paginated stock listing
type Page struct {
	Items      []*Stock `json:"items"`
	Page       int      `json:"page"`
	Size       int      `json:"size"`
	TotalCount int      `json:"total_count"`
	TotalPages int      `json:"total_pages"`
}

// SelectedAsset is one instrument a session has picked for analysis
type SelectedAsset struct {
	SessionID string `json:"session_id"`
	Ticker    string `json:"ticker"`
	StockName string `json:"stock_name,omitempty"`
	CreatedAt string `json:"created_at"`
}

// MaxSelectedAssets caps how many instruments a session can select,
// matching the analysis engine's ticker limit.
const MaxSelectedAssets = 10
