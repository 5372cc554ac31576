package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"

	"caseflow/internal/application/entity"
)

func seedOutbox(f *orchestratorFixture, kind entity.EventKind, payload string) *entity.OutboxRecord {
	rec := &entity.OutboxRecord{
		CaseID:          uuid.Must(uuid.NewV4()),
		SourceReference: "S-1",
		SourceSystem:    entity.SourceModern,
		Kind:            kind,
		Status:          entity.OutboxPending,
		Payload:         []byte(payload),
	}
	if err := f.repo.InsertOutbox(context.Background(), rec); err != nil {
		panic(err)
	}
	return rec
}

func TestDispatchSweepDeliversPendingRecords(t *testing.T) {
	f := newOrchestratorFixture()
	first := seedOutbox(f, entity.KindCaseOutcome, `{"n":1}`)
	second := seedOutbox(f, entity.KindCaseOutcome, `{"n":2}`)

	f.svc.RunDispatchSweep(context.Background(), entity.KindCaseOutcome)

	if len(f.producer.sent) != 2 {
		t.Fatalf("messages sent = %d, want 2", len(f.producer.sent))
	}
	// oldest first, payload byte-for-byte, keyed by case id
	if string(f.producer.sent[0].payload) != `{"n":1}` || string(f.producer.sent[1].payload) != `{"n":2}` {
		t.Errorf("payloads out of order: %q, %q", f.producer.sent[0].payload, f.producer.sent[1].payload)
	}
	if f.producer.sent[0].key != first.CaseID.String() {
		t.Errorf("message key = %s, want case id %s", f.producer.sent[0].key, first.CaseID)
	}
	for _, id := range []int{first.ID, second.ID} {
		if got := f.repo.findOutbox(id).Status; got != entity.OutboxDelivered {
			t.Errorf("record %d status = %s, want DELIVERED", id, got)
		}
	}
}

// A failed record stays in the queue: the next sweep picks it up again and,
// once the broker recovers, it moves to DELIVERED.
func TestDispatchFailedRecordIsRetried(t *testing.T) {
	f := newOrchestratorFixture()
	rec := seedOutbox(f, entity.KindCaseOutcome, `{}`)
	f.producer.failKeys[rec.CaseID.String()] = errors.New("broker unavailable")

	f.svc.RunDispatchSweep(context.Background(), entity.KindCaseOutcome)

	got := f.repo.findOutbox(rec.ID)
	if got.Status != entity.OutboxFailed {
		t.Fatalf("status = %s, want FAILED", got.Status)
	}
	if got.ErrorDetail == nil || *got.ErrorDetail != "broker unavailable" {
		t.Errorf("error detail = %v, want the producer error", got.ErrorDetail)
	}

	delete(f.producer.failKeys, rec.CaseID.String())
	f.svc.RunDispatchSweep(context.Background(), entity.KindCaseOutcome)

	got = f.repo.findOutbox(rec.ID)
	if got.Status != entity.OutboxDelivered {
		t.Fatalf("status after retry = %s, want DELIVERED", got.Status)
	}
	if got.ErrorDetail != nil {
		t.Errorf("error detail = %q, want cleared", *got.ErrorDetail)
	}
}

func TestDispatchDeliveredRecordIsNeverResent(t *testing.T) {
	f := newOrchestratorFixture()
	rec := seedOutbox(f, entity.KindCaseOutcome, `{}`)

	f.svc.RunDispatchSweep(context.Background(), entity.KindCaseOutcome)
	f.svc.RunDispatchSweep(context.Background(), entity.KindCaseOutcome)

	if len(f.producer.sent) != 1 {
		t.Fatalf("messages sent = %d, want exactly 1", len(f.producer.sent))
	}
	if got := f.repo.findOutbox(rec.ID).Status; got != entity.OutboxDelivered {
		t.Errorf("status = %s, want DELIVERED", got)
	}
}

// One broken record must not block the records behind it.
func TestDispatchContinuesPastFailures(t *testing.T) {
	f := newOrchestratorFixture()
	ok1 := seedOutbox(f, entity.KindCaseOutcome, `{}`)
	bad := seedOutbox(f, entity.KindCaseOutcome, `{}`)
	ok2 := seedOutbox(f, entity.KindCaseOutcome, `{}`)
	f.producer.failKeys[bad.CaseID.String()] = errors.New("serialization failure")

	f.svc.RunDispatchSweep(context.Background(), entity.KindCaseOutcome)

	if got := f.repo.findOutbox(bad.ID).Status; got != entity.OutboxFailed {
		t.Errorf("broken record status = %s, want FAILED", got)
	}
	for _, id := range []int{ok1.ID, ok2.ID} {
		if got := f.repo.findOutbox(id).Status; got != entity.OutboxDelivered {
			t.Errorf("record %d status = %s, want DELIVERED", id, got)
		}
	}
}

func TestDispatchSweepIsScopedToOneKind(t *testing.T) {
	f := newOrchestratorFixture()
	outcome := seedOutbox(f, entity.KindCaseOutcome, `{}`)
	stats := seedOutbox(f, entity.KindStatistics, `{}`)

	f.svc.RunDispatchSweep(context.Background(), entity.KindCaseOutcome)

	if got := f.repo.findOutbox(outcome.ID).Status; got != entity.OutboxDelivered {
		t.Errorf("case-outcome record status = %s, want DELIVERED", got)
	}
	if got := f.repo.findOutbox(stats.ID).Status; got != entity.OutboxPending {
		t.Errorf("statistics record status = %s, want untouched PENDING", got)
	}
}

// MarkDelivered failing after a successful publish leaves the record in the
// queue; the next sweep re-sends it. At-least-once, not exactly-once.
func TestDispatchStatusUpdateFailureAllowsRedelivery(t *testing.T) {
	f := newOrchestratorFixture()
	rec := seedOutbox(f, entity.KindCaseOutcome, `{}`)
	f.repo.markDeliveredErr = errors.New("connection reset")

	f.svc.RunDispatchSweep(context.Background(), entity.KindCaseOutcome)

	if len(f.producer.sent) != 1 {
		t.Fatalf("messages sent = %d, want 1", len(f.producer.sent))
	}
	if got := f.repo.findOutbox(rec.ID).Status; got != entity.OutboxPending {
		t.Fatalf("status = %s, want PENDING so the record redelivers", got)
	}

	f.repo.markDeliveredErr = nil
	f.svc.RunDispatchSweep(context.Background(), entity.KindCaseOutcome)

	if len(f.producer.sent) != 2 {
		t.Errorf("messages sent = %d, want 2 (redelivery)", len(f.producer.sent))
	}
	if got := f.repo.findOutbox(rec.ID).Status; got != entity.OutboxDelivered {
		t.Errorf("status = %s, want DELIVERED", got)
	}
}
