package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/akontos/portfolio-tracker/internal/tasks"
)

// RefreshCycleJob runs the nightly derivation pass: indicators for every
// region, then the holdings tables. It goes through the task registry so a
// manually triggered run and the scheduled run can never overlap.
type RefreshCycleJob struct {
	log      zerolog.Logger
	registry *tasks.Registry
	taskName string
}

// NewRefreshCycleJob creates a new refresh cycle job
func NewRefreshCycleJob(registry *tasks.Registry, taskName string, log zerolog.Logger) *RefreshCycleJob {
	return &RefreshCycleJob{
		log:      log.With().Str("job", "refresh_cycle").Logger(),
		registry: registry,
		taskName: taskName,
	}
}

// Name returns the job name
func (j *RefreshCycleJob) Name() string {
	return "refresh_cycle"
}

// Run executes the refresh cycle via the task registry
func (j *RefreshCycleJob) Run() error {
	err := j.registry.Run(j.taskName)
	if err == nil {
		return nil
	}

	// An already-in-flight manual run is not a job failure
	if tasks.IsAlreadyRunning(err) {
		j.log.Warn().Msg("Refresh cycle already in flight, skipping scheduled run")
		return nil
	}
	return err
}
