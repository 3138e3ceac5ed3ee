package diversification

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/belovelace/Portfolio-Optimizer/internal/modules/correlation"
)

// Service builds optimized portfolios from previously stored correlation
// records. It never recomputes coefficients; a session must have analyzed the
// requested instruments first.
type Service struct {
	store *correlation.Store
	names correlation.NameResolver
	log   zerolog.Logger
}

// NewService creates a new diversification service
func NewService(store *correlation.Store, names correlation.NameResolver, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		names: names,
		log:   log.With().Str("component", "diversification").Logger(),
	}
}

// Optimize scores the requested instruments and greedily selects a portfolio
// under the correlation threshold.
func (s *Service) Optimize(sessionID string, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	threshold := req.Threshold()
	window := correlation.Window(req.Window())

	records, err := s.store.FindByTickers(sessionID, req.Tickers)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: run a correlation analysis for these tickers first", correlation.ErrNoData)
	}

	matrix := correlation.BuildMatrix(recordTickers(records), records, window)

	scores := ScoreTickers(req.Tickers, matrix, threshold, s.log)
	SelectGreedy(scores, matrix, threshold, req.TargetCount())

	s.applyNames(scores)

	selected := make([]Score, 0, req.TargetCount())
	excluded := make([]Score, 0, len(scores))
	selectedTickers := make([]string, 0, req.TargetCount())
	for _, sc := range scores {
		if sc.Selected {
			selected = append(selected, sc)
			selectedTickers = append(selectedTickers, sc.Ticker)
		} else {
			excluded = append(excluded, sc)
		}
	}

	avgCorr := PortfolioAvgCorrelation(selected, matrix)

	s.log.Info().
		Str("session_id", sessionID).
		Int("input_count", len(req.Tickers)).
		Int("selected_count", len(selected)).
		Float64("portfolio_avg_correlation", avgCorr).
		Msg("Portfolio optimization complete")

	return &Response{
		AllScores:                     scores,
		SelectedStocks:                selected,
		ExcludedStocks:                excluded,
		PortfolioAvgCorrelation:       avgCorr,
		PortfolioDiversificationScore: PortfolioScore(avgCorr),
		CorrelationMatrix:             matrix.Filter(selectedTickers).ToMap(),
		Summary: Summary{
			InputStockCount:   len(req.Tickers),
			OutputStockCount:  len(selected),
			RemovedStockCount: len(req.Tickers) - len(selected),
			Threshold:         threshold,
			AnalysisWindow:    string(window),
			Algorithm:         AlgorithmName,
		},
	}, nil
}

// applyNames fills display names on the scores, "Unknown" when unresolvable
func (s *Service) applyNames(scores []Score) {
	if len(scores) == 0 {
		return
	}

	tickers := make([]string, 0, len(scores))
	for _, sc := range scores {
		tickers = append(tickers, sc.Ticker)
	}

	names := map[string]string{}
	if s.names != nil {
		resolved, err := s.names.DisplayNames(tickers)
		if err != nil {
			s.log.Warn().Err(err).Msg("Failed to resolve display names")
		} else {
			names = resolved
		}
	}

	for i := range scores {
		if name, ok := names[scores[i].Ticker]; ok && name != "" {
			scores[i].StockName = name
		} else {
			scores[i].StockName = "Unknown"
		}
	}
}

// recordTickers extracts the sorted union of pair endpoints
func recordTickers(records []*correlation.Record) []string {
	set := make(map[string]struct{}, 2*len(records))
	for _, rec := range records {
		set[rec.Ticker1] = struct{}{}
		set[rec.Ticker2] = struct{}{}
	}

	tickers := make([]string, 0, len(set))
	for t := range set {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

func validateRequest(req *Request) error {
	if len(req.Tickers) < 2 {
		return fmt.Errorf("%w: at least 2 tickers required, got %d", correlation.ErrInvalidRequest, len(req.Tickers))
	}

	seen := make(map[string]struct{}, len(req.Tickers))
	for _, t := range req.Tickers {
		if _, dup := seen[t]; dup {
			return fmt.Errorf("%w: duplicate ticker %s", correlation.ErrInvalidRequest, t)
		}
		seen[t] = struct{}{}
	}

	if threshold := req.Threshold(); threshold < 0.0 || threshold > 1.0 {
		return fmt.Errorf("%w: threshold must be between 0.0 and 1.0, got %v", correlation.ErrInvalidRequest, threshold)
	}

	if req.TargetCount() < 1 {
		return fmt.Errorf("%w: target stock count must be at least 1", correlation.ErrInvalidRequest)
	}

	window := correlation.Window(req.Window())
	if !window.Valid() || window == correlation.WindowAll {
		return fmt.Errorf("%w: analysis window must be one of 3M, 6M, 1Y", correlation.ErrInvalidRequest)
	}

	return nil
}
