package stocks

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Selection errors
var (
	ErrSelectionFull    = errors.New("selection limit reached")
	ErrAlreadySelected  = errors.New("ticker already selected")
	ErrNotSelected      = errors.New("ticker not selected")
	ErrUnknownTicker    = errors.New("unknown ticker")
	ErrInvalidSelection = errors.New("invalid selection")
)

// SelectedRepository manages each session's working set of instruments
type SelectedRepository struct {
	db      *sql.DB
	catalog *Repository
	log     zerolog.Logger
}

// NewSelectedRepository creates a new selected assets repository
func NewSelectedRepository(db *sql.DB, catalog *Repository, log zerolog.Logger) *SelectedRepository {
	return &SelectedRepository{
		db:      db,
		catalog: catalog,
		log:     log.With().Str("repo", "selected_assets").Logger(),
	}
}

// EnsureSchema creates the selected_assets table if needed
func (r *SelectedRepository) EnsureSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS selected_assets (
			session_id TEXT NOT NULL,
			ticker     TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			PRIMARY KEY (session_id, ticker)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create selected_assets schema: %w", err)
	}
	return nil
}

// Add selects a ticker for a session. The catalog must know the ticker and
// the session must be under the selection cap.
func (r *SelectedRepository) Add(sessionID, ticker string) error {
	if ticker == "" {
		return fmt.Errorf("%w: empty ticker", ErrInvalidSelection)
	}

	stock, err := r.catalog.GetByTicker(ticker)
	if err != nil {
		return err
	}
	if stock == nil {
		return fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}

	var count int
	err = r.db.QueryRow(`SELECT COUNT(*) FROM selected_assets WHERE session_id = ?`, sessionID).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count selected assets: %w", err)
	}
	if count >= MaxSelectedAssets {
		return fmt.Errorf("%w: at most %d assets", ErrSelectionFull, MaxSelectedAssets)
	}

	result, err := r.db.Exec(`
		INSERT OR IGNORE INTO selected_assets (session_id, ticker) VALUES (?, ?)
	`, sessionID, ticker)
	if err != nil {
		return fmt.Errorf("failed to select asset %s: %w", ticker, err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrAlreadySelected, ticker)
	}
	return nil
}

// Remove deselects a ticker for a session
func (r *SelectedRepository) Remove(sessionID, ticker string) error {
	result, err := r.db.Exec(`
		DELETE FROM selected_assets WHERE session_id = ? AND ticker = ?
	`, sessionID, ticker)
	if err != nil {
		return fmt.Errorf("failed to deselect asset %s: %w", ticker, err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotSelected, ticker)
	}
	return nil
}

// Clear removes all selected assets of a session
func (r *SelectedRepository) Clear(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM selected_assets WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear selected assets: %w", err)
	}
	return nil
}

// List returns the session's selected assets with display names
func (r *SelectedRepository) List(sessionID string) ([]*SelectedAsset, error) {
	rows, err := r.db.Query(`
		SELECT session_id, ticker, created_at
		FROM selected_assets WHERE session_id = ? ORDER BY created_at, ticker
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list selected assets: %w", err)
	}
	defer rows.Close()

	assets := []*SelectedAsset{}
	tickers := []string{}
	for rows.Next() {
		var a SelectedAsset
		if err := rows.Scan(&a.SessionID, &a.Ticker, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan selected asset: %w", err)
		}
		assets = append(assets, &a)
		tickers = append(tickers, a.Ticker)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating selected assets: %w", err)
	}

	names, err := r.catalog.DisplayNames(tickers)
	if err != nil {
		r.log.Warn().Err(err).Msg("Failed to resolve names for selected assets")
		return assets, nil
	}
	for _, a := range assets {
		a.StockName = names[a.Ticker]
	}

	return assets, nil
}

// SelectedTickers returns just the tickers of a session's selection,
// in selection order.
func (r *SelectedRepository) SelectedTickers(sessionID string) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT ticker FROM selected_assets WHERE session_id = ? ORDER BY created_at, ticker
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list selected tickers: %w", err)
	}
	defer rows.Close()

	tickers := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan selected ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating selected tickers: %w", err)
	}

	return tickers, nil
}

// DeleteBySessions removes selections belonging to the given sessions
func (r *SelectedRepository) DeleteBySessions(sessionIDs []string) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}

	deleted := int64(0)
	for _, id := range sessionIDs {
		result, err := r.db.Exec(`DELETE FROM selected_assets WHERE session_id = ?`, id)
		if err != nil {
			return deleted, fmt.Errorf("failed to delete selections for session %s: %w", id, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			deleted += n
		}
	}
	return deleted, nil
}
