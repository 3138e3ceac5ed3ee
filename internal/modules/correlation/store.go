package correlation

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Store persists correlation records keyed by analysis session and pair
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore creates a new correlation record store
func NewStore(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("repo", "correlation").Logger(),
	}
}

// EnsureSchema creates the correlation_analysis table if needed
func (s *Store) EnsureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS correlation_analysis (
			correlation_id      INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id          TEXT NOT NULL,
			ticker1             TEXT NOT NULL,
			ticker2             TEXT NOT NULL,
			correlation_3m      REAL,
			correlation_6m      REAL,
			correlation_1y      REAL,
			analysis_start_date TEXT NOT NULL,
			analysis_end_date   TEXT NOT NULL,
			analysis_date       TEXT NOT NULL,
			created_at          TEXT NOT NULL DEFAULT (datetime('now'))
		);
		CREATE INDEX IF NOT EXISTS idx_correlation_session ON correlation_analysis(session_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create correlation_analysis schema: %w", err)
	}
	return nil
}

// DeleteBySession removes all records of an analysis session
func (s *Store) DeleteBySession(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM correlation_analysis WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete correlation records for session %s: %w", sessionID, err)
	}
	return nil
}

// Insert stores one correlation record
func (s *Store) Insert(rec *Record) error {
	result, err := s.db.Exec(`
		INSERT INTO correlation_analysis
			(session_id, ticker1, ticker2, correlation_3m, correlation_6m, correlation_1y,
			 analysis_start_date, analysis_end_date, analysis_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.SessionID, rec.Ticker1, rec.Ticker2,
		nullableFloat(rec.Correlation3M), nullableFloat(rec.Correlation6M), nullableFloat(rec.Correlation1Y),
		rec.AnalysisStartDate, rec.AnalysisEndDate, rec.AnalysisDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert correlation record %s/%s: %w", rec.Ticker1, rec.Ticker2, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// FindBySession retrieves all records of an analysis session
func (s *Store) FindBySession(sessionID string) ([]*Record, error) {
	rows, err := s.db.Query(`
		SELECT correlation_id, session_id, ticker1, ticker2,
		       correlation_3m, correlation_6m, correlation_1y,
		       analysis_start_date, analysis_end_date, analysis_date
		FROM correlation_analysis
		WHERE session_id = ?
		ORDER BY ticker1, ticker2
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query correlation records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindHighCorrelations retrieves records whose |average correlation| over the
// non-null windows meets the threshold
func (s *Store) FindHighCorrelations(sessionID string, threshold float64) ([]*Record, error) {
	records, err := s.FindBySession(sessionID)
	if err != nil {
		return nil, err
	}

	high := make([]*Record, 0, len(records))
	for _, rec := range records {
		if rec.IsHighCorrelation(threshold) {
			high = append(high, rec)
		}
	}
	return high, nil
}

// FindByTickers retrieves session records whose pair endpoints are both in tickers
func (s *Store) FindByTickers(sessionID string, tickers []string) ([]*Record, error) {
	if len(tickers) == 0 {
		return []*Record{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tickers)), ",")
	query := fmt.Sprintf(`
		SELECT correlation_id, session_id, ticker1, ticker2,
		       correlation_3m, correlation_6m, correlation_1y,
		       analysis_start_date, analysis_end_date, analysis_date
		FROM correlation_analysis
		WHERE session_id = ?
		  AND ticker1 IN (%s)
		  AND ticker2 IN (%s)
		ORDER BY ticker1, ticker2
	`, placeholders, placeholders)

	args := make([]interface{}, 0, 1+2*len(tickers))
	args = append(args, sessionID)
	for _, t := range tickers {
		args = append(args, t)
	}
	for _, t := range tickers {
		args = append(args, t)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query correlation records by tickers: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	var records []*Record
	for rows.Next() {
		var rec Record
		var c3m, c6m, c1y sql.NullFloat64

		err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.Ticker1, &rec.Ticker2,
			&c3m, &c6m, &c1y,
			&rec.AnalysisStartDate, &rec.AnalysisEndDate, &rec.AnalysisDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan correlation record: %w", err)
		}

		if c3m.Valid {
			rec.Correlation3M = &c3m.Float64
		}
		if c6m.Valid {
			rec.Correlation6M = &c6m.Float64
		}
		if c1y.Valid {
			rec.Correlation1Y = &c1y.Float64
		}

		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating correlation records: %w", err)
	}

	return records, nil
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
