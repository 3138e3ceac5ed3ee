package correlation

// DataProvider supplies pairwise Pearson correlation coefficients.
// A nil coefficient with a nil error means the value is unavailable
// (e.g. not enough overlapping history).
type DataProvider interface {
	PearsonCorrelation(ticker1, ticker2, startDate, endDate string) (*float64, error)
}

// NameResolver maps tickers to display names
type NameResolver interface {
	DisplayNames(tickers []string) (map[string]string, error)
}

// SelectedAssets exposes a session's selected instrument list
type SelectedAssets interface {
	SelectedTickers(sessionID string) ([]string, error)
}
