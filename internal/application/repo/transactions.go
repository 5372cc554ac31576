package repo

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"caseflow/internal/application/entity"
)

type Transactions interface {
	// CompleteCase writes the completion record and, when evt is non-nil, the
	// outbox record in ONE transaction. Either both are visible afterwards or
	// neither is; there is no code path that commits one without the other.
	CompleteCase(ctx context.Context, caseID uuid.UUID, completedAt time.Time, evt *entity.OutboxRecord) error
}

type TransactionsImpl struct {
	repo   *RepoImpl
	logger *zap.SugaredLogger
}

func NewTransactions(repo *RepoImpl, logger *zap.SugaredLogger) *TransactionsImpl {
	return &TransactionsImpl{repo: repo, logger: logger}
}

func (t *TransactionsImpl) CompleteCase(ctx context.Context, caseID uuid.UUID, completedAt time.Time, evt *entity.OutboxRecord) error {
	return t.repo.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := t.repo.MarkCompleted(ctx, caseID, completedAt); err != nil {
			t.logger.Errorf("[case: %s] mark completed failed: %v", caseID, err)
			return err
		}

		if evt != nil {
			if err := t.repo.InsertOutbox(ctx, evt); err != nil {
				t.logger.Errorf("[case: %s] insert outbox failed, rolling back completion: %v", caseID, err)
				return err
			}
		}

		t.logger.Infof("[case: %s] completion committed, outbox=%t", caseID, evt != nil)
		return nil
	})
}
