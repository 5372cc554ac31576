package repo

// CASES

const getCase = `
SELECT id, case_type, source_system, source_reference, outcome, completed_at,
       tracking_required, ignore_tracking, tracking_ticket_id
FROM cases
WHERE id = $1`

// Completion candidates: open cases whose outcome has been decided. The list
// is computed at sweep start; cases appearing later are picked up next tick.
const listCompletionCandidates = `
SELECT id, case_type, source_system, source_reference, outcome, completed_at,
       tracking_required, ignore_tracking, tracking_ticket_id
FROM cases
WHERE completed_at IS NULL AND outcome IS NOT NULL
ORDER BY id`

// completed_at IS NULL in the predicate makes the completion record
// write-once: a second writer affects zero rows.
const markCompleted = `
UPDATE cases
SET completed_at = $2
WHERE id = $1 AND completed_at IS NULL`

// DOCUMENTS

const findUnfinalizedPrimaryDocuments = `
SELECT id, case_id, is_primary, marked_done_at, finalized_at
FROM documents
WHERE case_id = $1
  AND is_primary
  AND marked_done_at IS NOT NULL
  AND finalized_at IS NULL`

// OUTBOX

const insertOutboxQuery = `
INSERT INTO outbox_record (
  case_id, source_reference, source_system, kind, payload, status, created_at
) VALUES ($1, $2, $3, $4, ($5)::jsonb, $6, now())
RETURNING id`

// FIFO per kind by creation time. FAILED records are retried from the front
// of the queue each sweep; there is deliberately no per-record backoff here.
const listUndelivered = `
SELECT id, case_id, source_reference, source_system, kind, payload, status, error_detail, created_at
FROM outbox_record
WHERE kind = $1 AND status IN ('PENDING','FAILED')
ORDER BY created_at, id`

const markDelivered = `
UPDATE outbox_record
SET status = $2, error_detail = NULL
WHERE id = $1`

const markDeliveryFailed = `
UPDATE outbox_record
SET status = $2, error_detail = $3
WHERE id = $1`

const listFailedOutbox = `
SELECT id, case_id, source_reference, source_system, kind, payload, status, error_detail, created_at
FROM outbox_record
WHERE status = 'FAILED'
ORDER BY created_at, id`

const requeueOutbox = `
UPDATE outbox_record
SET status = 'PENDING', error_detail = NULL
WHERE id = $1 AND status = 'FAILED'`

const deleteDeliveredBefore = `
DELETE FROM outbox_record
WHERE status = 'DELIVERED'
  AND created_at < now() - make_interval(days => $1)`

// SCHEDULER LOCK
//
// A lease keyed by job name. The upsert succeeds only when the row is free,
// expired, or already held by the same holder (re-acquire extends the lease).
// RETURNING yields a row exactly for the winning instance.

const tryAcquireLock = `
INSERT INTO job_lock (name, holder, locked_until)
VALUES ($1, $2, now() + $3::interval)
ON CONFLICT (name) DO UPDATE
SET holder = EXCLUDED.holder, locked_until = EXCLUDED.locked_until
WHERE job_lock.locked_until < now() OR job_lock.holder = EXCLUDED.holder
RETURNING name`

const releaseLock = `
UPDATE job_lock
SET locked_until = now()
WHERE name = $1 AND holder = $2`
