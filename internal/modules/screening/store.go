package screening

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// Store persists screening results per analysis session
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore creates a new screening result store
func NewStore(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("repo", "screening").Logger(),
	}
}

// EnsureSchema creates the screening_results table if needed
func (s *Store) EnsureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS screening_results (
			session_id      TEXT NOT NULL,
			ticker          TEXT NOT NULL,
			stock_name      TEXT NOT NULL,
			industry        TEXT NOT NULL DEFAULT '',
			per             REAL,
			pbr             REAL,
			roe             REAL,
			per_score       REAL NOT NULL,
			pbr_score       REAL NOT NULL,
			roe_score       REAL NOT NULL,
			composite_score REAL NOT NULL,
			rank            INTEGER NOT NULL,
			is_top50        INTEGER NOT NULL,
			created_at      TEXT NOT NULL DEFAULT (datetime('now')),
			PRIMARY KEY (session_id, ticker)
		);
		CREATE INDEX IF NOT EXISTS idx_screening_session_rank ON screening_results(session_id, rank);
	`)
	if err != nil {
		return fmt.Errorf("failed to create screening_results schema: %w", err)
	}
	return nil
}

// Replace atomically swaps a session's stored results for a new run
func (s *Store) Replace(sessionID string, results []*Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin screening transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM screening_results WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete prior screening results: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO screening_results
			(session_id, ticker, stock_name, industry, per, pbr, roe,
			 per_score, pbr_score, roe_score, composite_score, rank, is_top50)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare screening insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		_, err := stmt.Exec(
			sessionID, r.Ticker, r.StockName, r.Industry,
			nullableFloat(r.PER), nullableFloat(r.PBR), nullableFloat(r.ROE),
			r.PERScore, r.PBRScore, r.ROEScore, r.CompositeScore, r.Rank, r.IsTop50,
		)
		if err != nil {
			return fmt.Errorf("failed to insert screening result %s: %w", r.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit screening results: %w", err)
	}
	return nil
}

// FindBySession returns one page of a session's results ordered by rank
func (s *Store) FindBySession(sessionID string, page, size int, top50Only bool) (*ResultPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	where := "session_id = ?"
	args := []interface{}{sessionID}
	if top50Only {
		where += " AND is_top50 = 1"
	}

	var total int
	err := s.db.QueryRow("SELECT COUNT(*) FROM screening_results WHERE "+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count screening results: %w", err)
	}

	listArgs := append(append([]interface{}{}, args...), size, (page-1)*size)
	rows, err := s.db.Query(`
		SELECT session_id, ticker, stock_name, industry, per, pbr, roe,
		       per_score, pbr_score, roe_score, composite_score, rank, is_top50
		FROM screening_results WHERE `+where+`
		ORDER BY rank
		LIMIT ? OFFSET ?
	`, listArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query screening results: %w", err)
	}
	defer rows.Close()

	items := []*Result{}
	for rows.Next() {
		var r Result
		var per, pbr, roe sql.NullFloat64

		err := rows.Scan(
			&r.SessionID, &r.Ticker, &r.StockName, &r.Industry,
			&per, &pbr, &roe,
			&r.PERScore, &r.PBRScore, &r.ROEScore, &r.CompositeScore, &r.Rank, &r.IsTop50,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan screening result: %w", err)
		}

		if per.Valid {
			r.PER = &per.Float64
		}
		if pbr.Valid {
			r.PBR = &pbr.Float64
		}
		if roe.Valid {
			r.ROE = &roe.Float64
		}

		items = append(items, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating screening results: %w", err)
	}

	return &ResultPage{
		Items:      items,
		Page:       page,
		Size:       size,
		TotalCount: total,
		TotalPages: (total + size - 1) / size,
	}, nil
}

// DeleteBySession removes a session's stored screening results
func (s *Store) DeleteBySession(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM screening_results WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete screening results: %w", err)
	}
	return nil
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
