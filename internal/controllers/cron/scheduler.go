package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

type Job interface {
	Run(ctx context.Context)
}

// jobTimeout bounds one tick's body. Sweeps over a healthy backlog finish in
// seconds; anything approaching this limit is stuck I/O, and the context cut
// lets the next tick start fresh.
const jobTimeout = 55 * time.Minute

type Scheduler struct {
	c   *cron.Cron
	ctx context.Context
}

func NewScheduler(ctx context.Context) *Scheduler {
	// seconds-resolution cron format plus descriptors (@every, @daily, ...)
	c := cron.New(
		cron.WithParser(cron.NewParser(
			cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		)),
	)
	return &Scheduler{c: c, ctx: ctx}
}

func (s *Scheduler) Add(spec string, job Job) (cron.EntryID, error) {
	return s.c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
		defer cancel()
		job.Run(ctx)
	})
}

func (s *Scheduler) Start() {
	s.c.Start()
}

// Stop waits for running job bodies to return before reporting done.
func (s *Scheduler) Stop() {
	ctx := s.c.Stop()
	<-ctx.Done()
}
