package correlation

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

// Service orchestrates pairwise correlation analysis: it computes coefficients
// through the data provider, persists them, and reassembles results from the
// store. The service holds no per-request state and is safe for concurrent use;
// analysis runs for the same session are serialized so the delete-then-reinsert
// replace sequence never interleaves.
type Service struct {
	store    *Store
	provider DataProvider
	names    NameResolver
	selected SelectedAssets
	locks    sync.Map // sessionID -> *sync.Mutex
	log      zerolog.Logger
}

// NewService creates a new correlation analysis service
func NewService(store *Store, provider DataProvider, names NameResolver, selected SelectedAssets, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		provider: provider,
		names:    names,
		selected: selected,
		log:      log.With().Str("component", "correlation").Logger(),
	}
}

func (s *Service) sessionLock(sessionID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Analyze runs a full correlation analysis for a session. Each run fully
// replaces the session's previous records.
func (s *Service) Analyze(sessionID string, req *AnalysisRequest) (*AnalysisResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	window := req.Window
	if window == "" {
		window = WindowAll
	}

	mu := s.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	s.log.Info().
		Str("session_id", sessionID).
		Int("ticker_count", len(req.Tickers)).
		Str("window", string(window)).
		Msg("Starting correlation analysis")

	if err := s.store.DeleteBySession(sessionID); err != nil {
		return nil, err
	}

	endDate := time.Now()
	end := endDate.Format(dateLayout)
	today := end

	for i := 0; i < len(req.Tickers); i++ {
		for j := i + 1; j < len(req.Tickers); j++ {
			ticker1, ticker2 := req.Tickers[i], req.Tickers[j]
			if ticker1 > ticker2 {
				ticker1, ticker2 = ticker2, ticker1
			}

			rec := &Record{
				SessionID:         sessionID,
				Ticker1:           ticker1,
				Ticker2:           ticker2,
				AnalysisStartDate: endDate.AddDate(0, -12, 0).Format(dateLayout),
				AnalysisEndDate:   end,
				AnalysisDate:      today,
			}

			for _, w := range Windows {
				if !window.Includes(w) {
					continue
				}

				start := endDate.AddDate(0, -w.Months(), 0).Format(dateLayout)
				corr, err := s.provider.PearsonCorrelation(ticker1, ticker2, start, end)
				if err != nil {
					// A failed pair/window stays null; the batch continues.
					s.log.Warn().
						Err(err).
						Str("ticker1", ticker1).
						Str("ticker2", ticker2).
						Str("window", string(w)).
						Msg("Correlation computation failed, storing null")
					continue
				}

				switch w {
				case Window3M:
					rec.Correlation3M = corr
				case Window6M:
					rec.Correlation6M = corr
				case Window1Y:
					rec.Correlation1Y = corr
				}
			}

			// Pairs with no usable window are stored too, so matrix
			// construction can still report them.
			if err := s.store.Insert(rec); err != nil {
				return nil, err
			}

			s.log.Debug().
				Str("ticker1", ticker1).
				Str("ticker2", ticker2).
				Msg("Stored correlation record")
		}
	}

	return s.buildResult(sessionID, req.Threshold())
}

// AnalyzeSelected runs the analysis over the session's selected asset list
func (s *Service) AnalyzeSelected(sessionID string) (*AnalysisResult, error) {
	tickers, err := s.selected.SelectedTickers(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load selected assets: %w", err)
	}

	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no assets selected for session", ErrNoData)
	}
	if len(tickers) < 2 {
		return nil, fmt.Errorf("%w: at least 2 selected assets required, got %d", ErrInvalidRequest, len(tickers))
	}

	return s.Analyze(sessionID, &AnalysisRequest{
		Tickers: tickers,
		Window:  WindowAll,
	})
}

// Results returns the stored analysis for a session. A session with no
// records yields an empty result, not an error.
func (s *Service) Results(sessionID string) (*AnalysisResult, error) {
	records, err := s.store.FindBySession(sessionID)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return &AnalysisResult{
			SessionID:            sessionID,
			AnalysisDate:         time.Now().Format(dateLayout),
			Tickers:              []string{},
			CorrelationMatrix:    &PeriodMatrices{},
			HighCorrelationPairs: []HighCorrelationPair{},
		}, nil
	}

	return s.buildResult(sessionID, DefaultHighCorrelationThreshold)
}

// HighCorrelations returns pairs whose |average correlation| meets the threshold
func (s *Service) HighCorrelations(sessionID string, threshold float64) ([]HighCorrelationPair, error) {
	records, err := s.store.FindHighCorrelations(sessionID, threshold)
	if err != nil {
		return nil, err
	}

	return s.toPairs(records, threshold), nil
}

// GuideFor generates the diversification guide for a session's stored records
func (s *Service) GuideFor(sessionID string, threshold float64) (*Guide, error) {
	records, err := s.store.FindBySession(sessionID)
	if err != nil {
		return nil, err
	}
	return GenerateGuide(records, threshold), nil
}

// HeatmapFor builds the heatmap payload. With no tickers given, the labels
// default to the analyzed ticker union.
func (s *Service) HeatmapFor(sessionID string, tickers []string) (*Heatmap, error) {
	records, err := s.store.FindBySession(sessionID)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: run a correlation analysis first", ErrNoData)
	}

	if len(tickers) == 0 {
		tickers = tickerUnion(records)
	}

	return BuildHeatmap(tickers, records), nil
}

// Delete removes all stored analysis results for a session
func (s *Service) Delete(sessionID string) error {
	s.log.Info().Str("session_id", sessionID).Msg("Deleting correlation analysis results")
	return s.store.DeleteBySession(sessionID)
}

// buildResult reassembles the analysis response from the store
func (s *Service) buildResult(sessionID string, threshold float64) (*AnalysisResult, error) {
	records, err := s.store.FindBySession(sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if len(records) == 0 {
		return &AnalysisResult{
			SessionID:            sessionID,
			AnalysisDate:         now.Format(dateLayout),
			Tickers:              []string{},
			HighCorrelationPairs: []HighCorrelationPair{},
		}, nil
	}

	tickers := tickerUnion(records)

	matrices := &PeriodMatrices{
		ThreeMonth: BuildMatrix(tickers, records, Window3M).ToMap(),
		SixMonth:   BuildMatrix(tickers, records, Window6M).ToMap(),
		OneYear:    BuildMatrix(tickers, records, Window1Y).ToMap(),
	}

	highRecords, err := s.store.FindHighCorrelations(sessionID, threshold)
	if err != nil {
		return nil, err
	}

	return &AnalysisResult{
		SessionID:            sessionID,
		AnalysisDate:         now.Format(dateLayout),
		AnalysisStartDate:    now.AddDate(0, -12, 0).Format(dateLayout),
		AnalysisEndDate:      now.Format(dateLayout),
		Tickers:              tickers,
		CorrelationMatrix:    matrices,
		HighCorrelationPairs: s.toPairs(highRecords, threshold),
		DiversificationGuide: GenerateGuide(records, threshold),
	}, nil
}

func (s *Service) toPairs(records []*Record, threshold float64) []HighCorrelationPair {
	pairs := make([]HighCorrelationPair, 0, len(records))
	names := s.resolveNames(tickerUnion(records))

	for _, rec := range records {
		pairs = append(pairs, HighCorrelationPair{
			Ticker1:            rec.Ticker1,
			Ticker2:            rec.Ticker2,
			StockName1:         names[rec.Ticker1],
			StockName2:         names[rec.Ticker2],
			Correlation3M:      rec.Correlation3M,
			Correlation6M:      rec.Correlation6M,
			Correlation1Y:      rec.Correlation1Y,
			AverageCorrelation: rec.AverageCorrelation(),
			RiskLevel:          rec.RiskLevel(threshold),
		})
	}
	return pairs
}

// resolveNames returns display names with the ticker itself as fallback
func (s *Service) resolveNames(tickers []string) map[string]string {
	names := make(map[string]string, len(tickers))
	for _, t := range tickers {
		names[t] = t
	}

	if s.names == nil || len(tickers) == 0 {
		return names
	}

	resolved, err := s.names.DisplayNames(tickers)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to resolve display names, using tickers")
		return names
	}

	for t, name := range resolved {
		if name != "" {
			names[t] = name
		}
	}
	return names
}

// tickerUnion extracts the deduplicated, sorted union of pair endpoints
func tickerUnion(records []*Record) []string {
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

func validateRequest(req *AnalysisRequest) error {
	if len(req.Tickers) < 2 {
		return fmt.Errorf("%w: at least 2 tickers required, got %d", ErrInvalidRequest, len(req.Tickers))
	}
	if len(req.Tickers) > 10 {
		return fmt.Errorf("%w: at most 10 tickers allowed, got %d", ErrInvalidRequest, len(req.Tickers))
	}

	seen := make(map[string]struct{}, len(req.Tickers))
	for _, t := range req.Tickers {
		if _, dup := seen[t]; dup {
			return fmt.Errorf("%w: duplicate ticker %s", ErrInvalidRequest, t)
		}
		seen[t] = struct{}{}
	}

	threshold := req.Threshold()
	if threshold < 0.0 || threshold > 1.0 {
		return fmt.Errorf("%w: threshold must be between 0.0 and 1.0, got %v", ErrInvalidRequest, threshold)
	}

	if req.Window != "" && !req.Window.Valid() {
		return fmt.Errorf("%w: unknown analysis window %q", ErrInvalidRequest, req.Window)
	}

	return nil
}
