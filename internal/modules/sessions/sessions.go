package sessions

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service manages anonymous analysis sessions. A session is created on first
// contact and identified by the X-Session-ID header on subsequent requests.
type Service struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewService creates a new session service
func NewService(db *sql.DB, log zerolog.Logger) *Service {
	return &Service{
		db:  db,
		log: log.With().Str("component", "sessions").Logger(),
	}
}

// EnsureSchema creates the sessions table if needed
func (s *Service) EnsureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			last_seen  TEXT NOT NULL DEFAULT (datetime('now'))
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_last_seen ON sessions(last_seen);
	`)
	if err != nil {
		return fmt.Errorf("failed to create sessions schema: %w", err)
	}
	return nil
}

// Resolve returns a valid session ID for the given candidate. An empty or
// unknown candidate yields a freshly created session; a known one has its
// last_seen timestamp touched.
func (s *Service) Resolve(sessionID string) (string, error) {
	if sessionID != "" {
		result, err := s.db.Exec(`
			UPDATE sessions SET last_seen = datetime('now') WHERE session_id = ?
		`, sessionID)
		if err != nil {
			return "", fmt.Errorf("failed to touch session: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil && n > 0 {
			return sessionID, nil
		}
	}

	return s.create()
}

func (s *Service) create() (string, error) {
	sessionID := uuid.NewString()

	_, err := s.db.Exec(`INSERT INTO sessions (session_id) VALUES (?)`, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	s.log.Debug().Str("session_id", sessionID).Msg("Created session")
	return sessionID, nil
}

// Exists reports whether a session is known
func (s *Service) Exists(sessionID string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM sessions WHERE session_id = ?`, sessionID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return true, nil
}

// Count returns the number of known sessions
func (s *Service) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// FindIdle returns sessions not seen for more than retentionDays
func (s *Service) FindIdle(retentionDays int) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT session_id FROM sessions
		WHERE last_seen < datetime('now', ?)
	`, fmt.Sprintf("-%d days", retentionDays))
	if err != nil {
		return nil, fmt.Errorf("failed to find idle sessions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating idle sessions: %w", err)
	}

	return ids, nil
}

// Delete removes the given sessions
func (s *Service) Delete(sessionIDs []string) (int64, error) {
	deleted := int64(0)
	for _, id := range sessionIDs {
		result, err := s.db.Exec(`DELETE FROM sessions WHERE session_id = ?`, id)
		if err != nil {
			return deleted, fmt.Errorf("failed to delete session %s: %w", id, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			deleted += n
		}
	}
	return deleted, nil
}
