package use_cases

import (
	"context"

	"go.uber.org/zap"

	"caseflow/internal/application/entity"
	"caseflow/internal/application/service"
	"caseflow/pkg/config"
)

type UseCaser interface {
	RunCompletionSweep(ctx context.Context)
	RunDispatchSweep(ctx context.Context, kind entity.EventKind)
	CleanupOutbox(ctx context.Context)

	ListFailedOutbox(ctx context.Context) ([]entity.OutboxRecord, error)
	RequeueOutbox(ctx context.Context, outboxID int) error

	HealthCheck(ctx context.Context) (dbHealthy bool, kafkaHealthy bool, err error)
}

type UseCase struct {
	service service.Service
	logger  *zap.SugaredLogger
	conf    *config.Config
}

func NewUseCase(service service.Service, logger *zap.SugaredLogger, conf *config.Config) *UseCase {
	return &UseCase{
		service: service,
		logger:  logger,
		conf:    conf,
	}
}

func (u *UseCase) HealthCheck(ctx context.Context) (dbHealthy bool, kafkaHealthy bool, err error) {
	return u.service.HealthCheck(ctx)
}

func (u *UseCase) RunCompletionSweep(ctx context.Context) {
	u.logger.Debug("RunCompletionSweep started")
	u.service.RunCompletionSweep(ctx)
}

func (u *UseCase) RunDispatchSweep(ctx context.Context, kind entity.EventKind) {
	u.logger.Debugf("[kind: %s] RunDispatchSweep started", kind)
	u.service.RunDispatchSweep(ctx, kind)
}

func (u *UseCase) CleanupOutbox(ctx context.Context) {
	days := u.conf.Cron.DaysToKeepDelivered
	u.logger.Infof("CleanupOutbox called with daysToKeepDelivered=%d", days)
	u.service.CleanupOutbox(ctx, &days)
}

func (u *UseCase) ListFailedOutbox(ctx context.Context) ([]entity.OutboxRecord, error) {
	return u.service.ListFailedOutbox(ctx)
}

func (u *UseCase) RequeueOutbox(ctx context.Context, outboxID int) error {
	return u.service.RequeueOutbox(ctx, outboxID)
}
