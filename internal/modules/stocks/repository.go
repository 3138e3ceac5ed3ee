package stocks

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Repository reads the instrument catalog from the market database
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new stock catalog repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "stocks").Logger(),
	}
}

// EnsureSchema creates the stocks table if needed
func (r *Repository) EnsureSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS stocks (
			ticker     TEXT PRIMARY KEY,
			stock_name TEXT NOT NULL,
			industry   TEXT NOT NULL DEFAULT '',
			per        REAL,
			pbr        REAL,
			roe        REAL,
			debt_ratio REAL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
		CREATE INDEX IF NOT EXISTS idx_stocks_name ON stocks(stock_name);
		CREATE INDEX IF NOT EXISTS idx_stocks_industry ON stocks(industry);
	`)
	if err != nil {
		return fmt.Errorf("failed to create stocks schema: %w", err)
	}
	return nil
}

// Upsert inserts or replaces one catalog entry
func (r *Repository) Upsert(s *Stock) error {
	_, err := r.db.Exec(`
		INSERT INTO stocks (ticker, stock_name, industry, per, pbr, roe, debt_ratio, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(ticker) DO UPDATE SET
			stock_name = excluded.stock_name,
			industry   = excluded.industry,
			per        = excluded.per,
			pbr        = excluded.pbr,
			roe        = excluded.roe,
			debt_ratio = excluded.debt_ratio,
			updated_at = excluded.updated_at
	`, s.Ticker, s.StockName, s.Industry, s.PER, s.PBR, s.ROE, s.DebtRatio)
	if err != nil {
		return fmt.Errorf("failed to upsert stock %s: %w", s.Ticker, err)
	}
	return nil
}

// GetByTicker returns one catalog entry, nil when absent
func (r *Repository) GetByTicker(ticker string) (*Stock, error) {
	row := r.db.QueryRow(`
		SELECT ticker, stock_name, industry, per, pbr, roe, debt_ratio
		FROM stocks WHERE ticker = ?
	`, ticker)

	s, err := scanStock(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stock %s: %w", ticker, err)
	}
	return s, nil
}

// Search returns a catalog page, optionally filtered by a ticker/name query
// and an industry.
func (r *Repository) Search(query, industry string, page, size int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	where := "1=1"
	args := []interface{}{}

	if query != "" {
		where += " AND (ticker LIKE ? OR stock_name LIKE ?)"
		pattern := "%" + query + "%"
		args = append(args, pattern, pattern)
	}
	if industry != "" {
		where += " AND industry = ?"
		args = append(args, industry)
	}

	var total int
	err := r.db.QueryRow("SELECT COUNT(*) FROM stocks WHERE "+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count stocks: %w", err)
	}

	listArgs := append(append([]interface{}{}, args...), size, (page-1)*size)
	rows, err := r.db.Query(`
		SELECT ticker, stock_name, industry, per, pbr, roe, debt_ratio
		FROM stocks WHERE `+where+`
		ORDER BY ticker
		LIMIT ? OFFSET ?
	`, listArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to search stocks: %w", err)
	}
	defer rows.Close()

	items := []*Stock{}
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stocks: %w", err)
	}

	return &Page{
		Items:      items,
		Page:       page,
		Size:       size,
		TotalCount: total,
		TotalPages: (total + size - 1) / size,
	}, nil
}

// DisplayNames resolves tickers to stock names in one query. Unknown tickers
// are omitted from the result.
func (r *Repository) DisplayNames(tickers []string) (map[string]string, error) {
	names := make(map[string]string, len(tickers))
	if len(tickers) == 0 {
		return names, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tickers)), ",")
	args := make([]interface{}, len(tickers))
	for i, t := range tickers {
		args[i] = t
	}

	rows, err := r.db.Query(
		fmt.Sprintf("SELECT ticker, stock_name FROM stocks WHERE ticker IN (%s)", placeholders),
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stock names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ticker, name string
		if err := rows.Scan(&ticker, &name); err != nil {
			return nil, fmt.Errorf("failed to scan stock name: %w", err)
		}
		names[ticker] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock names: %w", err)
	}

	return names, nil
}

// Industries lists the distinct industries in the catalog
func (r *Repository) Industries() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT industry FROM stocks WHERE industry != '' ORDER BY industry`)
	if err != nil {
		return nil, fmt.Errorf("failed to list industries: %w", err)
	}
	defer rows.Close()

	industries := []string{}
	for rows.Next() {
		var industry string
		if err := rows.Scan(&industry); err != nil {
			return nil, fmt.Errorf("failed to scan industry: %w", err)
		}
		industries = append(industries, industry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating industries: %w", err)
	}

	return industries, nil
}

// Tickers returns every cataloged ticker, for the history sync job
func (r *Repository) Tickers() ([]string, error) {
	rows, err := r.db.Query(`SELECT ticker FROM stocks ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickers: %w", err)
	}
	defer rows.Close()

	tickers := []string{}
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickers: %w", err)
	}

	return tickers, nil
}

// AllForScreening returns every catalog entry for factor scoring
func (r *Repository) AllForScreening() ([]*Stock, error) {
	rows, err := r.db.Query(`
		SELECT ticker, stock_name, industry, per, pbr, roe, debt_ratio
		FROM stocks ORDER BY ticker
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load stocks: %w", err)
	}
	defer rows.Close()

	stocks := []*Stock{}
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stocks: %w", err)
	}

	return stocks, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStock(row rowScanner) (*Stock, error) {
	var s Stock
	var per, pbr, roe, debt sql.NullFloat64

	err := row.Scan(&s.Ticker, &s.StockName, &s.Industry, &per, &pbr, &roe, &debt)
	if err != nil {
		return nil, err
	}

	if per.Valid {
		s.PER = &per.Float64
	}
	if pbr.Valid {
		s.PBR = &pbr.Float64
	}
	if roe.Valid {
		s.ROE = &roe.Float64
	}
	if debt.Valid {
		s.DebtRatio = &debt.Float64
	}

	return &s, nil
}
