package scheduler

import "github.com/rs/zerolog"

// HistorySyncer refreshes the per-ticker price history databases
type HistorySyncer interface {
	SyncAll() error
}

// HistorySyncJob pulls fresh daily prices for every cataloged ticker
type HistorySyncJob struct {
	syncer HistorySyncer
	log    zerolog.Logger
}

func NewHistorySyncJob(syncer HistorySyncer, log zerolog.Logger) *HistorySyncJob {
	return &HistorySyncJob{
		syncer: syncer,
		log:    log.With().Str("job", "history_sync").Logger(),
	}
}

func (j *HistorySyncJob) Name() string { return "history_sync" }

func (j *HistorySyncJob) Run() error {
	return j.syncer.SyncAll()
}
