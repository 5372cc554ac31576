package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"caseflow/internal/application/entity"
	"caseflow/internal/application/repo"
	"caseflow/internal/transport/legacy"
	"caseflow/internal/transport/producer"
	"caseflow/internal/transport/tracking"
	"caseflow/pkg/metrics"
)

type Service interface {
	RunCompletionSweep(ctx context.Context)
	RunDispatchSweep(ctx context.Context, kind entity.EventKind)
	CleanupOutbox(ctx context.Context, days *int)

	ListFailedOutbox(ctx context.Context) ([]entity.OutboxRecord, error)
	RequeueOutbox(ctx context.Context, outboxID int) error

	HealthCheck(ctx context.Context) (dbHealthy bool, kafkaHealthy bool, err error)
}

type ServiceImpl struct {
	repo         repo.Repo
	transactions repo.Transactions
	producer     producer.Producer
	legacy       legacy.Client
	tracking     tracking.Client
	logger       *zap.SugaredLogger
	actorID      string
	m            *metrics.Metrics
}

func NewService(
	repo repo.Repo,
	transactions repo.Transactions,
	producer producer.Producer,
	legacyClient legacy.Client,
	trackingClient tracking.Client,
	logger *zap.SugaredLogger,
	actorID string,
	m *metrics.Metrics,
) *ServiceImpl {
	return &ServiceImpl{
		repo:         repo,
		transactions: transactions,
		producer:     producer,
		legacy:       legacyClient,
		tracking:     trackingClient,
		logger:       logger,
		actorID:      actorID,
		m:            m,
	}
}

func (s *ServiceImpl) HealthCheck(ctx context.Context) (dbHealthy bool, kafkaHealthy bool, err error) {
	dbErr := s.repo.HealthCheck(ctx)
	dbHealthy = dbErr == nil

	kafkaErr := s.producer.HealthCheck(ctx)
	kafkaHealthy = kafkaErr == nil

	if !dbHealthy && !kafkaHealthy {
		return dbHealthy, kafkaHealthy, fmt.Errorf("database: %v, kafka: %v", dbErr, kafkaErr)
	}

	return dbHealthy, kafkaHealthy, nil
}

func (s *ServiceImpl) ListFailedOutbox(ctx context.Context) ([]entity.OutboxRecord, error) {
	return s.repo.ListFailedOutbox(ctx)
}

func (s *ServiceImpl) RequeueOutbox(ctx context.Context, outboxID int) error {
	s.logger.Infof("[ID %d] manual requeue requested", outboxID)
	return s.repo.RequeueOutbox(ctx, outboxID)
}

func (s *ServiceImpl) CleanupOutbox(ctx context.Context, days *int) {
	if _, err := s.repo.DeleteDeliveredBefore(ctx, days); err != nil {
		s.logger.Errorf("outbox cleanup failed: %v", err)
	}
}
