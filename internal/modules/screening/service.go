package screening

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/belovelace/Portfolio-Optimizer/internal/modules/stocks"
)

// Screening errors
var (
	ErrInvalidWeights = errors.New("invalid factor weights")
	ErrEmptyUniverse  = errors.New("no stocks available for screening")
)

// Service runs multifactor screenings over the stock catalog. Each run fully
// replaces the session's stored results.
type Service struct {
	catalog *stocks.Repository
	store   *Store
	log     zerolog.Logger
}

// NewService creates a new screening service
func NewService(catalog *stocks.Repository, store *Store, log zerolog.Logger) *Service {
	return &Service{
		catalog: catalog,
		store:   store,
		log:     log.With().Str("component", "screening").Logger(),
	}
}

// Run scores the whole catalog under the given weights and stores the ranked
// results for the session. Returns the first page of results.
func (s *Service) Run(sessionID string, req *Request) (*ResultPage, error) {
	weights := req.EffectiveWeights()
	if !weights.Valid() {
		return nil, fmt.Errorf("%w: weights must be non-negative and sum to 1.0", ErrInvalidWeights)
	}

	universe, err := s.catalog.AllForScreening()
	if err != nil {
		return nil, err
	}
	if len(universe) == 0 {
		return nil, ErrEmptyUniverse
	}

	results := scoreUniverse(universe, weights)

	if err := s.store.Replace(sessionID, results); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("session_id", sessionID).
		Int("universe_size", len(universe)).
		Float64("per_weight", weights.PER).
		Float64("pbr_weight", weights.PBR).
		Float64("roe_weight", weights.ROE).
		Msg("Screening run complete")

	page, err := s.store.FindBySession(sessionID, 1, 20, false)
	if err != nil {
		return nil, err
	}
	page.Weights = &weights
	return page, nil
}

// Results returns one page of a session's stored screening results
func (s *Service) Results(sessionID string, page, size int, top50Only bool) (*ResultPage, error) {
	return s.store.FindBySession(sessionID, page, size, top50Only)
}

// Delete removes a session's stored screening results
func (s *Service) Delete(sessionID string) error {
	return s.store.DeleteBySession(sessionID)
}
