package correlation

// Matrix is an immutable, index-addressed symmetric correlation matrix.
// The diagonal is exactly 1.0; pairs with no stored value default to 0.0
// ("no evidence of correlation"), which downstream scoring relies on.
type Matrix struct {
	tickers []string
	index   map[string]int
	values  [][]float64
}

// BuildMatrix assembles an N×N matrix for one concrete window from pairwise
// records. Only records whose endpoints are both in tickers contribute;
// symmetry holds by construction (both cells set from the same record).
func BuildMatrix(tickers []string, records []*Record, window Window) *Matrix {
	n := len(tickers)
	index := make(map[string]int, n)
	for i, t := range tickers {
		index[t] = i
	}

	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1.0
	}

	for _, rec := range records {
		i, ok1 := index[rec.Ticker1]
		j, ok2 := index[rec.Ticker2]
		if !ok1 || !ok2 || i == j {
			continue
		}

		if v := rec.WindowValue(window); v != nil {
			values[i][j] = *v
			values[j][i] = *v
		}
	}

	return &Matrix{
		tickers: append([]string(nil), tickers...),
		index:   index,
		values:  values,
	}
}

// Size returns the number of instruments in the matrix
func (m *Matrix) Size() int {
	return len(m.tickers)
}

// Tickers returns the instrument identifiers in matrix order
func (m *Matrix) Tickers() []string {
	return append([]string(nil), m.tickers...)
}

// Has reports whether a ticker is present in the matrix
func (m *Matrix) Has(ticker string) bool {
	_, ok := m.index[ticker]
	return ok
}

// Value returns the coefficient for a ticker pair, 0.0 when either ticker
// is absent from the matrix.
func (m *Matrix) Value(a, b string) float64 {
	i, ok1 := m.index[a]
	j, ok2 := m.index[b]
	if !ok1 || !ok2 {
		return 0.0
	}
	return m.values[i][j]
}

// ToMap renders the matrix as ticker -> ticker -> coefficient for responses
func (m *Matrix) ToMap() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(m.tickers))
	for i, t := range m.tickers {
		row := make(map[string]float64, len(m.tickers))
		for j, u := range m.tickers {
			row[u] = m.values[i][j]
		}
		out[t] = row
	}
	return out
}

// Filter returns a new matrix restricted to the given tickers, preserving
// values. Tickers not present in the source matrix are dropped.
func (m *Matrix) Filter(tickers []string) *Matrix {
	kept := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if m.Has(t) {
			kept = append(kept, t)
		}
	}

	index := make(map[string]int, len(kept))
	for i, t := range kept {
		index[t] = i
	}

	values := make([][]float64, len(kept))
	for i, a := range kept {
		values[i] = make([]float64, len(kept))
		for j, b := range kept {
			values[i][j] = m.Value(a, b)
		}
	}

	return &Matrix{tickers: kept, index: index, values: values}
}
