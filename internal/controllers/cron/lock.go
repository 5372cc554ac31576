package cron

import (
	"context"
	"time"

	"go.uber.org/zap"

	"caseflow/pkg/metrics"
)

// Locker is the distributed lease lock shared by all instances, keyed by job
// name. Implemented by the repo on the job_lock table.
type Locker interface {
	TryAcquireLock(ctx context.Context, name, holder string, lease time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, holder string) error
}

// LockedJob wraps a job body so only one instance runs it per tick. Losing
// the race skips the tick instead of waiting: sweeps are periodic, so a
// missed tick costs latency, never data.
type LockedJob struct {
	name   string
	holder string
	lease  time.Duration
	locker Locker
	inner  Job
	logger *zap.SugaredLogger
	m      *metrics.Metrics
}

func NewLockedJob(name, holder string, lease time.Duration, locker Locker, inner Job, logger *zap.SugaredLogger, m *metrics.Metrics) *LockedJob {
	return &LockedJob{
		name:   name,
		holder: holder,
		lease:  lease,
		locker: locker,
		inner:  inner,
		logger: logger,
		m:      m,
	}
}

func (j *LockedJob) Run(ctx context.Context) {
	ok, err := j.locker.TryAcquireLock(ctx, j.name, j.holder, j.lease)
	if err != nil {
		j.logger.Errorf("[job: %s] lock acquisition failed: %v", j.name, err)
		j.countLock("error")
		return
	}
	if !ok {
		j.logger.Debugf("[job: %s] lock held by another instance, skipping tick", j.name)
		j.countLock("skipped")
		return
	}
	j.countLock("acquired")

	defer func() {
		// release eagerly; the lease expiry is only the crash backstop
		if err := j.locker.ReleaseLock(context.WithoutCancel(ctx), j.name, j.holder); err != nil {
			j.logger.Warnf("[job: %s] lock release failed, lease will expire on its own: %v", j.name, err)
		}
	}()

	start := time.Now()
	j.inner.Run(ctx)
	if j.m != nil {
		j.m.Sweep.SweepDurationSeconds.WithLabelValues(j.name).Observe(time.Since(start).Seconds())
	}
}

func (j *LockedJob) countLock(result string) {
	if j.m != nil {
		j.m.Sweep.LockAcquisitionsTotal.WithLabelValues(j.name, result).Inc()
	}
}
