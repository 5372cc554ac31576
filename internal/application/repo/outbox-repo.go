package repo

import (
	"context"
	"fmt"

	"caseflow/internal/appers"
	"caseflow/internal/application/entity"
)

func (r *RepoImpl) InsertOutbox(ctx context.Context, e *entity.OutboxRecord) error {
	r.logger.Debugf("[case: %s] InsertOutbox started, kind: %s", e.CaseID, e.Kind)

	err := r.db.QueryRow(ctx, insertOutboxQuery,
		e.CaseID, e.SourceReference, string(e.SourceSystem), string(e.Kind),
		[]byte(e.Payload), string(e.Status),
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert outbox_record: %w", err)
	}

	return nil
}

func (r *RepoImpl) ListUndelivered(ctx context.Context, kind entity.EventKind) ([]entity.OutboxRecord, error) {
	r.logger.Debugf("[kind: %s] ListUndelivered started", kind)

	rows, err := r.db.Query(ctx, listUndelivered, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list undelivered outbox: %w", err)
	}
	defer rows.Close()

	res := make([]entity.OutboxRecord, 0)
	for rows.Next() {
		e, err := scanOutbox(rows)
		if err != nil {
			return nil, fmt.Errorf("scan undelivered outbox: %w", err)
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("undelivered rows err: %w", err)
	}

	return res, nil
}

func (r *RepoImpl) MarkDelivered(ctx context.Context, outboxID int) error {
	result, err := r.db.Exec(ctx, markDelivered, outboxID, entity.OutboxDelivered)
	if err != nil {
		return fmt.Errorf("outbox mark delivered: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("[ID %d] outbox not found", outboxID)
	}
	return nil
}

func (r *RepoImpl) MarkDeliveryFailed(ctx context.Context, outboxID int, detail string) error {
	_, err := r.db.Exec(ctx, markDeliveryFailed, outboxID, entity.OutboxFailed, detail)
	if err != nil {
		return fmt.Errorf("outbox mark failed: %w", err)
	}
	return nil
}

func (r *RepoImpl) ListFailedOutbox(ctx context.Context) ([]entity.OutboxRecord, error) {
	rows, err := r.db.Query(ctx, listFailedOutbox)
	if err != nil {
		return nil, fmt.Errorf("list failed outbox: %w", err)
	}
	defer rows.Close()

	res := make([]entity.OutboxRecord, 0)
	for rows.Next() {
		e, err := scanOutbox(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed outbox: %w", err)
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed rows err: %w", err)
	}

	return res, nil
}

func (r *RepoImpl) RequeueOutbox(ctx context.Context, outboxID int) error {
	result, err := r.db.Exec(ctx, requeueOutbox, outboxID)
	if err != nil {
		return fmt.Errorf("requeue outbox: %w", err)
	}
	if result.RowsAffected() == 0 {
		return appers.ErrOutboxNotRequeueable
	}
	return nil
}

func (r *RepoImpl) DeleteDeliveredBefore(ctx context.Context, days *int) (int64, error) {
	d := defaultRetentionDays
	if days != nil && *days > 0 {
		d = *days
	} else if days != nil && *days == 0 {
		r.logger.Warn("daysToKeepDelivered is 0, skipping cleanup to prevent deleting everything")
		return 0, nil
	}

	r.logger.Infof("cleaning up DELIVERED outbox records older than %d days", d)

	result, err := r.db.Exec(ctx, deleteDeliveredBefore, d)
	if err != nil {
		r.logger.Errorf("error cleaning up outbox: %v", err)
		return 0, fmt.Errorf("delete delivered outbox: %w", err)
	}
	rowsAffected := result.RowsAffected()
	if rowsAffected == 0 {
		r.logger.Infof("no outbox records older than %d days", d)
		return 0, nil
	}
	r.logger.Infof("deleted %d delivered outbox records (older than %d days)", rowsAffected, d)
	return rowsAffected, nil
}

const defaultRetentionDays = 90

func scanOutbox(row rowScanner) (entity.OutboxRecord, error) {
	var e entity.OutboxRecord
	var status, source, kind string
	if err := row.Scan(
		&e.ID, &e.CaseID, &e.SourceReference, &source, &kind,
		&e.Payload, &status, &e.ErrorDetail, &e.CreatedAt,
	); err != nil {
		return e, err
	}
	e.SourceSystem = entity.SourceSystem(source)
	e.Kind = entity.EventKind(kind)
	e.Status = entity.OutboxStatus(status)
	return e, nil
}
