package cron

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"caseflow/internal/application/entity"
	use_cases "caseflow/internal/application/use-cases"
	"caseflow/pkg/config"
	"caseflow/pkg/metrics"
)

type Controller struct {
	scheduler *Scheduler
	locker    Locker
	holder    string
	logger    *zap.SugaredLogger
	m         *metrics.Metrics
}

func NewController(ctx context.Context, locker Locker, logger *zap.SugaredLogger, m *metrics.Metrics) *Controller {
	return &Controller{
		scheduler: NewScheduler(ctx),
		locker:    locker,
		holder:    holderID(),
		logger:    logger,
		m:         m,
	}
}

// holderID identifies this instance in the lock table; hostname plus a
// random suffix so restarted pods never collide with their own stale lease.
func holderID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "caseflow"
	}
	id, err := uuid.NewV4()
	if err != nil {
		return host
	}
	return fmt.Sprintf("%s-%s", host, id.String()[:8])
}

// RegisterSweepJobs wires up every scheduled sweep: the completion
// orchestrator, one dispatch sweep per event kind, and the outbox cleanup.
// Each job body runs under its own distributed lease lock.
func (c *Controller) RegisterSweepJobs(usecase use_cases.UseCaser, conf config.Cron) error {
	if err := c.register("completion-sweep", conf.CompletionSchedule, conf.LockLease,
		NewCompletionSweepJob(usecase, c.logger)); err != nil {
		return err
	}

	for _, kind := range entity.AllEventKinds {
		name := fmt.Sprintf("dispatch-sweep-%s", kind)
		if err := c.register(name, conf.DispatchSchedule, conf.LockLease,
			NewDispatchSweepJob(kind, usecase, c.logger)); err != nil {
			return err
		}
	}

	if err := c.register("outbox-cleanup", conf.CleanupSchedule, conf.LockLease,
		NewCleanupJob(usecase, c.logger)); err != nil {
		return err
	}

	return nil
}

func (c *Controller) register(name, spec string, lease time.Duration, job Job) error {
	locked := NewLockedJob(name, c.holder, lease, c.locker, job, c.logger, c.m)

	entryID, err := c.scheduler.Add(spec, locked)
	if err != nil {
		return fmt.Errorf("registering job %q: %w", name, err)
	}

	c.logger.Infof("job %q registered with ID %d, schedule: %s", name, entryID, spec)
	return nil
}

func (c *Controller) Start() {
	c.logger.Infof("starting cron scheduler, holder: %s", c.holder)
	c.scheduler.Start()
}

func (c *Controller) Stop() {
	c.logger.Info("stopping cron scheduler")
	c.scheduler.Stop()
	c.logger.Info("cron scheduler stopped")
}
