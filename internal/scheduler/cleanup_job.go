package scheduler

import (
	"github.com/rs/zerolog"
)

// SessionPurger finds and deletes idle sessions
type SessionPurger interface {
	FindIdle(retentionDays int) ([]string, error)
	Delete(sessionIDs []string) (int64, error)
}

// SessionDataPurger removes per-session rows from a dependent store
type SessionDataPurger interface {
	DeleteBySession(sessionID string) error
}

// SelectionPurger removes selected assets for a batch of sessions
type SelectionPurger interface {
	DeleteBySessions(sessionIDs []string) (int64, error)
}

// CleanupJob removes sessions idle past the retention window together with
// their dependent rows. Dependent stores are purged before the session rows
// so a failed run never orphans data behind a deleted session.
type CleanupJob struct {
	sessions      SessionPurger
	selections    SelectionPurger
	stores        []SessionDataPurger
	retentionDays int
	log           zerolog.Logger
}

// NewCleanupJob creates a session cleanup job
func NewCleanupJob(sessions SessionPurger, selections SelectionPurger, stores []SessionDataPurger, retentionDays int, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		sessions:      sessions,
		selections:    selections,
		stores:        stores,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "session_cleanup").Logger(),
	}
}

// Name returns the job name
func (j *CleanupJob) Name() string {
	return "session_cleanup"
}

// Run purges idle sessions and their data
func (j *CleanupJob) Run() error {
	idle, err := j.sessions.FindIdle(j.retentionDays)
	if err != nil {
		return err
	}

	if len(idle) == 0 {
		j.log.Debug().Msg("No idle sessions to clean up")
		return nil
	}

	for _, store := range j.stores {
		for _, sessionID := range idle {
			if err := store.DeleteBySession(sessionID); err != nil {
				return err
			}
		}
	}

	if j.selections != nil {
		if _, err := j.selections.DeleteBySessions(idle); err != nil {
			return err
		}
	}

	deleted, err := j.sessions.Delete(idle)
	if err != nil {
		return err
	}

	j.log.Info().
		Int64("sessions_deleted", deleted).
		Int("retention_days", j.retentionDays).
		Msg("Session cleanup complete")

	return nil
}
