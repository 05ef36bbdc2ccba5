package scheduler

import (
	"context"

	"github.com/wonny/screener/internal/orchestrator"
)

// ScreeningJob adapts the pipeline runner to the Job interface
type ScreeningJob struct {
	runner *orchestrator.Runner
}

// NewScreeningJob creates a ScreeningJob
func NewScreeningJob(runner *orchestrator.Runner) *ScreeningJob {
	return &ScreeningJob{runner: runner}
}

func (j *ScreeningJob) Name() string {
	return "daily_screening"
}

func (j *ScreeningJob) Run(ctx context.Context) error {
	_, _, err := j.runner.Run(ctx)
	return err
}
