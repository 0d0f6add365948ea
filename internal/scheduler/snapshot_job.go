package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/simaogato/portfoy-backend/internal/domain"
	"github.com/simaogato/portfoy-backend/internal/usecase/snapshot"
)

// Recorder stores the portfolio snapshot of a day
type Recorder interface {
	Record(ctx context.Context, day time.Time) (*domain.PortfolioSnapshot, error)
}

// SnapshotJob records the daily portfolio value
type SnapshotJob struct {
	log      zerolog.Logger
	recorder Recorder
	timeout  time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

// NewSnapshotJob creates a new snapshot job
func NewSnapshotJob(recorder Recorder, log zerolog.Logger) *SnapshotJob {
	return &SnapshotJob{
		log:      log.With().Str("job", "daily_snapshot").Logger(),
		recorder: recorder,
		timeout:  time.Minute,
		now:      time.Now,
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "daily_snapshot"
}

// Run records today's snapshot.
// A portfolio that cannot be valued is skipped without failing the job.
func (j *SnapshotJob) Run() error {
	if !j.mu.TryLock() {
		j.log.Warn().Msg("Snapshot already running")
		return nil // Don't fail, just skip this run
	}
	defer j.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	snap, err := j.recorder.Record(ctx, j.now())
	if errors.Is(err, snapshot.ErrSnapshotSkipped) {
		j.log.Info().Err(err).Msg("Snapshot skipped")
		return nil
	}
	if err != nil {
		return err
	}

	j.log.Info().
		Str("date", snap.Day()).
		Str("total_value", snap.TotalValue.String()).
		Msg("Snapshot recorded")
	return nil
}
