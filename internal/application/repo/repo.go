package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"caseflow/internal/appers"
	"caseflow/internal/application/entity"
	"caseflow/pkg/db"
)

type Repo interface {
	GetCase(ctx context.Context, id uuid.UUID) (*entity.Case, error)
	ListCompletionCandidates(ctx context.Context) ([]*entity.Case, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error

	FindUnfinalizedPrimaryDocuments(ctx context.Context, caseID uuid.UUID) ([]entity.Document, error)

	InsertOutbox(ctx context.Context, e *entity.OutboxRecord) error
	ListUndelivered(ctx context.Context, kind entity.EventKind) ([]entity.OutboxRecord, error)
	MarkDelivered(ctx context.Context, outboxID int) error
	MarkDeliveryFailed(ctx context.Context, outboxID int, detail string) error
	ListFailedOutbox(ctx context.Context) ([]entity.OutboxRecord, error)
	RequeueOutbox(ctx context.Context, outboxID int) error
	DeleteDeliveredBefore(ctx context.Context, days *int) (int64, error)

	TryAcquireLock(ctx context.Context, name, holder string, lease time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, holder string) error

	HealthCheck(ctx context.Context) error
}

type RepoImpl struct {
	db     db.DB
	logger *zap.SugaredLogger
}

func NewRepo(db db.DB, logger *zap.SugaredLogger) *RepoImpl {
	return &RepoImpl{db: db, logger: logger}
}

func (r *RepoImpl) HealthCheck(ctx context.Context) error {
	var result int
	err := r.db.QueryRow(ctx, "SELECT 1").Scan(&result)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

func (r *RepoImpl) GetCase(ctx context.Context, id uuid.UUID) (*entity.Case, error) {
	r.logger.Debugf("[case: %s] GetCase started", id)

	row := r.db.QueryRow(ctx, getCase, id)
	c, err := scanCase(row)
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}
	return c, nil
}

func (r *RepoImpl) ListCompletionCandidates(ctx context.Context) ([]*entity.Case, error) {
	r.logger.Debug("ListCompletionCandidates started")

	rows, err := r.db.Query(ctx, listCompletionCandidates)
	if err != nil {
		r.logger.Errorf("error listing completion candidates: %v", err)
		return nil, fmt.Errorf("list completion candidates: %w", err)
	}
	defer rows.Close()

	cases := make([]*entity.Case, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("candidate rows err: %w", err)
	}

	r.logger.Debugf("found %d completion candidates", len(cases))
	return cases, nil
}

// MarkCompleted sets the completion record once. Zero affected rows means the
// record was already set, which callers must treat as an invariant violation.
func (r *RepoImpl) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.db.Exec(ctx, markCompleted, id, at)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return appers.ErrAlreadyCompleted
	}
	return nil
}

func (r *RepoImpl) FindUnfinalizedPrimaryDocuments(ctx context.Context, caseID uuid.UUID) ([]entity.Document, error) {
	r.logger.Debugf("[case: %s] FindUnfinalizedPrimaryDocuments started", caseID)

	rows, err := r.db.Query(ctx, findUnfinalizedPrimaryDocuments, caseID)
	if err != nil {
		return nil, fmt.Errorf("find unfinalized primary documents: %w", err)
	}
	defer rows.Close()

	docs := make([]entity.Document, 0)
	for rows.Next() {
		var d entity.Document
		if err := rows.Scan(&d.ID, &d.CaseID, &d.Primary, &d.MarkedDoneAt, &d.FinalizedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("document rows err: %w", err)
	}

	return docs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*entity.Case, error) {
	var c entity.Case
	var outcome *string
	if err := row.Scan(
		&c.ID, &c.Type, &c.SourceSystem, &c.SourceReference, &outcome,
		&c.CompletedAt, &c.TrackingRequired, &c.IgnoreTracking, &c.TrackingTicketID,
	); err != nil {
		return nil, err
	}
	if outcome != nil {
		o := entity.Outcome(*outcome)
		c.Outcome = &o
	}
	return &c, nil
}
