package marketdata

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
)

// DailyPrice represents a single day's price data
type DailyPrice struct {
	Date       string  `json:"date"`
	ClosePrice float64 `json:"close_price"`
	OpenPrice  float64 `json:"open_price"`
	HighPrice  float64 `json:"high_price"`
	LowPrice   float64 `json:"low_price"`
	Volume     int64   `json:"volume"`
}

// HistoryRepository handles per-ticker historical price data.
// Database: history/{TICKER}.db, one file per ticker, opened lazily.
type HistoryRepository struct {
	historyPath string // Base path for history databases
	mu          sync.Mutex
	dbs         map[string]*sql.DB
	log         zerolog.Logger
}

// NewHistoryRepository creates a new history repository.
// historyPath is the directory where per-ticker .db files are stored.
func NewHistoryRepository(historyPath string, log zerolog.Logger) *HistoryRepository {
	return &HistoryRepository{
		historyPath: historyPath,
		dbs:         make(map[string]*sql.DB),
		log:         log.With().Str("repo", "history").Logger(),
	}
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func (r *HistoryRepository) dbPath(ticker string) string {
	return filepath.Join(r.historyPath, fmt.Sprintf("%s.db", normalizeTicker(ticker)))
}

// getDB lazily opens the ticker's history database connection.
// When create is false and the database file does not exist, (nil, nil) is returned.
func (r *HistoryRepository) getDB(ticker string, create bool) (*sql.DB, error) {
	ticker = normalizeTicker(ticker)

	r.mu.Lock()
	defer r.mu.Unlock()

	if db, ok := r.dbs[ticker]; ok {
		return db, nil
	}

	dbPath := r.dbPath(ticker)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		if !create {
			return nil, nil
		}
		if err := os.MkdirAll(r.historyPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database for %s: %w", ticker, err)
	}

	if create {
		if _, err := db.Exec(`
			CREATE TABLE IF NOT EXISTS daily_prices (
				date        TEXT PRIMARY KEY,
				open_price  REAL,
				high_price  REAL,
				low_price   REAL,
				close_price REAL NOT NULL,
				volume      INTEGER
			)
		`); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create daily_prices table for %s: %w", ticker, err)
		}
	}

	r.dbs[ticker] = db
	return db, nil
}

// Close closes all open database connections
func (r *HistoryRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for ticker, db := range r.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.dbs, ticker)
	}
	return firstErr
}

// GetDailyRange retrieves daily prices within a date range (inclusive, ascending).
// A missing history database yields an empty list, not an error.
func (r *HistoryRepository) GetDailyRange(ticker, startDate, endDate string) ([]DailyPrice, error) {
	db, err := r.getDB(ticker, false)
	if err != nil {
		return nil, err
	}
	if db == nil {
		r.log.Debug().Str("ticker", ticker).Msg("History database not found, returning empty price list")
		return []DailyPrice{}, nil
	}

	query := `
		SELECT date, open_price, high_price, low_price, close_price, volume
		FROM daily_prices
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := db.Query(query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices for %s: %w", ticker, err)
	}
	defer rows.Close()

	var prices []DailyPrice
	for rows.Next() {
		var price DailyPrice
		var open, high, low sql.NullFloat64
		var volume sql.NullInt64

		err := rows.Scan(&price.Date, &open, &high, &low, &price.ClosePrice, &volume)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}

		if open.Valid {
			price.OpenPrice = open.Float64
		}
		if high.Valid {
			price.HighPrice = high.Float64
		}
		if low.Valid {
			price.LowPrice = low.Float64
		}
		if volume.Valid {
			price.Volume = volume.Int64
		}

		prices = append(prices, price)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices for %s: %w", ticker, err)
	}

	return prices, nil
}

// UpsertDailyPrices inserts or replaces daily prices for a ticker.
// Creates the history database on first write.
func (r *HistoryRepository) UpsertDailyPrices(ticker string, prices []DailyPrice) error {
	if len(prices) == 0 {
		return nil
	}

	db, err := r.getDB(ticker, true)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", ticker, err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO daily_prices (date, open_price, high_price, low_price, close_price, volume)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert for %s: %w", ticker, err)
	}
	defer stmt.Close()

	for _, p := range prices {
		if _, err := stmt.Exec(p.Date, p.OpenPrice, p.HighPrice, p.LowPrice, p.ClosePrice, p.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert daily price %s/%s: %w", ticker, p.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit daily prices for %s: %w", ticker, err)
	}

	r.log.Debug().Str("ticker", ticker).Int("count", len(prices)).Msg("Upserted daily prices")
	return nil
}

// CountPriceData returns the number of price rows for a ticker in a date range
func (r *HistoryRepository) CountPriceData(ticker, startDate, endDate string) (int, error) {
	db, err := r.getDB(ticker, false)
	if err != nil {
		return 0, err
	}
	if db == nil {
		return 0, nil
	}

	var count int
	err = db.QueryRow(
		`SELECT COUNT(*) FROM daily_prices WHERE date >= ? AND date <= ?`,
		startDate, endDate,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count price data for %s: %w", ticker, err)
	}

	return count, nil
}
