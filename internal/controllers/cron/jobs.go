package cron

import (
	"context"

	"go.uber.org/zap"

	"caseflow/internal/application/entity"
	use_cases "caseflow/internal/application/use-cases"
)

// CompletionSweepJob drives the completion orchestrator.
type CompletionSweepJob struct {
	usecase use_cases.UseCaser
	logger  *zap.SugaredLogger
}

func NewCompletionSweepJob(usecase use_cases.UseCaser, logger *zap.SugaredLogger) *CompletionSweepJob {
	return &CompletionSweepJob{usecase: usecase, logger: logger}
}

func (j *CompletionSweepJob) Run(ctx context.Context) {
	j.logger.Info("completion sweep job starting")

	defer func() {
		if r := recover(); r != nil {
			j.logger.Errorf("panic in completion sweep job: %v", r)
		}
	}()

	j.usecase.RunCompletionSweep(ctx)
	j.logger.Info("completion sweep job done")
}

// DispatchSweepJob drives the outbox dispatcher for one event kind.
type DispatchSweepJob struct {
	kind    entity.EventKind
	usecase use_cases.UseCaser
	logger  *zap.SugaredLogger
}

func NewDispatchSweepJob(kind entity.EventKind, usecase use_cases.UseCaser, logger *zap.SugaredLogger) *DispatchSweepJob {
	return &DispatchSweepJob{kind: kind, usecase: usecase, logger: logger}
}

func (j *DispatchSweepJob) Run(ctx context.Context) {
	j.logger.Infof("[kind: %s] dispatch sweep job starting", j.kind)

	defer func() {
		if r := recover(); r != nil {
			j.logger.Errorf("[kind: %s] panic in dispatch sweep job: %v", j.kind, r)
		}
	}()

	j.usecase.RunDispatchSweep(ctx, j.kind)
	j.logger.Infof("[kind: %s] dispatch sweep job done", j.kind)
}

// CleanupJob removes old DELIVERED outbox records.
type CleanupJob struct {
	usecase use_cases.UseCaser
	logger  *zap.SugaredLogger
}

func NewCleanupJob(usecase use_cases.UseCaser, logger *zap.SugaredLogger) *CleanupJob {
	return &CleanupJob{usecase: usecase, logger: logger}
}

func (j *CleanupJob) Run(ctx context.Context) {
	j.logger.Info("outbox cleanup job starting")

	defer func() {
		if r := recover(); r != nil {
			j.logger.Errorf("panic in outbox cleanup job: %v", r)
		}
	}()

	j.usecase.CleanupOutbox(ctx)
	j.logger.Info("outbox cleanup job done")
}
