package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/belovelace/Portfolio-Optimizer/internal/database"
)

// MaintenanceJob checkpoints the WAL of every core database so the WAL files
// never grow unbounded between restarts.
type MaintenanceJob struct {
	databases []*database.DB
	log       zerolog.Logger
}

// NewMaintenanceJob creates a database maintenance job
func NewMaintenanceJob(databases []*database.DB, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		log:       log.With().Str("job", "db_maintenance").Logger(),
	}
}

// Name returns the job name
func (j *MaintenanceJob) Name() string {
	return "db_maintenance"
}

// Run checkpoints every database WAL
func (j *MaintenanceJob) Run() error {
	for _, db := range j.databases {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			return err
		}

		if stats, err := db.GetStats(); err == nil {
			j.log.Debug().
				Str("database", db.Name()).
				Int64("size_bytes", stats.SizeBytes).
				Int64("wal_size_bytes", stats.WALSizeBytes).
				Msg("WAL checkpoint complete")
		}
	}

	return nil
}
