package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"caseflow/internal/application/common"
)

// TryAcquireLock takes the lease for a job name without blocking. Losing the
// race returns (false, nil): the caller skips this tick and tries again on
// the next one. A holder may re-acquire its own lease, which extends it.
func (r *RepoImpl) TryAcquireLock(ctx context.Context, name, holder string, lease time.Duration) (bool, error) {
	var got string
	err := r.db.QueryRow(ctx, tryAcquireLock, name, holder, common.PgInterval(lease)).Scan(&got)
	switch {
	case err == nil:
		r.logger.Debugf("[job: %s] lock acquired by %s, lease %s", name, holder, lease)
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		// another instance holds an unexpired lease
		r.logger.Debugf("[job: %s] lock held elsewhere, skipping tick", name)
		return false, nil
	default:
		return false, fmt.Errorf("acquire lock %q: %w", name, err)
	}
}

// ReleaseLock expires the lease early. Only the current holder may release;
// a lost lease simply runs out on its own.
func (r *RepoImpl) ReleaseLock(ctx context.Context, name, holder string) error {
	_, err := r.db.Exec(ctx, releaseLock, name, holder)
	if err != nil {
		return fmt.Errorf("release lock %q: %w", name, err)
	}
	return nil
}
