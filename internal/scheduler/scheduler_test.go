package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/pkg/logger"
)

type countingJob struct {
	runs  atomic.Int64
	err   error
	panic bool
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.panic {
		panic("boom")
	}
	return j.err
}

func TestScheduler_RunsJob(t *testing.T) {
	s := New(logger.NewNop())
	job := &countingJob{}

	// every second
	require.NoError(t, s.Register("* * * * * *", job))
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.runs.Load() >= 1 },
		3*time.Second, 50*time.Millisecond)
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := New(logger.NewNop())
	assert.Error(t, s.Register("not a cron spec", &countingJob{}))
}

func TestScheduler_JobPanicIsIsolated(t *testing.T) {
	s := New(logger.NewNop())
	job := &countingJob{panic: true}

	require.NoError(t, s.Register("* * * * * *", job))
	s.Start()
	defer s.Stop()

	// a panicking job must not kill the scheduler: it keeps firing
	assert.Eventually(t, func() bool { return job.runs.Load() >= 2 },
		5*time.Second, 50*time.Millisecond)
}

func TestScheduler_JobErrorIsContained(t *testing.T) {
	s := New(logger.NewNop())
	job := &countingJob{err: errors.New("fail")}

	require.NoError(t, s.Register("* * * * * *", job))
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.runs.Load() >= 1 },
		3*time.Second, 50*time.Millisecond)
}
