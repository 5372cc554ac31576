package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"caseflow/internal/appers"
	"caseflow/internal/application/entity"
	"caseflow/internal/transport/tracking"
)

// mockRepo is an in-memory implementation of repo.Repo.
type mockRepo struct {
	mu sync.Mutex

	cases       []*entity.Case
	unfinalized map[uuid.UUID]int // case id -> number of blocking documents

	outbox []entity.OutboxRecord
	nextID int

	completed map[uuid.UUID]time.Time

	listCandidatesErr error
	markDeliveredErr  error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		unfinalized: make(map[uuid.UUID]int),
		completed:   make(map[uuid.UUID]time.Time),
		nextID:      1,
	}
}

func (m *mockRepo) GetCase(ctx context.Context, id uuid.UUID) (*entity.Case, error) {
	for _, c := range m.cases {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, appers.ErrCaseNotFound
}

func (m *mockRepo) ListCompletionCandidates(ctx context.Context) ([]*entity.Case, error) {
	if m.listCandidatesErr != nil {
		return nil, m.listCandidatesErr
	}
	res := make([]*entity.Case, 0)
	for _, c := range m.cases {
		if !c.Completed() && c.Outcome != nil {
			res = append(res, c)
		}
	}
	return res, nil
}

func (m *mockRepo) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.completed[id]; ok {
		return appers.ErrAlreadyCompleted
	}
	m.completed[id] = at
	return nil
}

func (m *mockRepo) FindUnfinalizedPrimaryDocuments(ctx context.Context, caseID uuid.UUID) ([]entity.Document, error) {
	n := m.unfinalized[caseID]
	docs := make([]entity.Document, n)
	for i := range docs {
		docs[i] = entity.Document{CaseID: caseID, Primary: true}
	}
	return docs, nil
}

func (m *mockRepo) InsertOutbox(ctx context.Context, e *entity.OutboxRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.nextID
	m.nextID++
	e.CreatedAt = time.Now().UTC()
	m.outbox = append(m.outbox, *e)
	return nil
}

func (m *mockRepo) ListUndelivered(ctx context.Context, kind entity.EventKind) ([]entity.OutboxRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]entity.OutboxRecord, 0)
	for _, e := range m.outbox {
		if e.Kind == kind && (e.Status == entity.OutboxPending || e.Status == entity.OutboxFailed) {
			res = append(res, e)
		}
	}
	return res, nil
}

func (m *mockRepo) MarkDelivered(ctx context.Context, outboxID int) error {
	if m.markDeliveredErr != nil {
		return m.markDeliveredErr
	}
	return m.setStatus(outboxID, entity.OutboxDelivered, nil)
}

func (m *mockRepo) MarkDeliveryFailed(ctx context.Context, outboxID int, detail string) error {
	return m.setStatus(outboxID, entity.OutboxFailed, &detail)
}

func (m *mockRepo) setStatus(outboxID int, status entity.OutboxStatus, detail *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.outbox {
		if m.outbox[i].ID == outboxID {
			m.outbox[i].Status = status
			m.outbox[i].ErrorDetail = detail
			return nil
		}
	}
	return errors.New("outbox record not found")
}

func (m *mockRepo) ListFailedOutbox(ctx context.Context) ([]entity.OutboxRecord, error) {
	res := make([]entity.OutboxRecord, 0)
	for _, e := range m.outbox {
		if e.Status == entity.OutboxFailed {
			res = append(res, e)
		}
	}
	return res, nil
}

func (m *mockRepo) RequeueOutbox(ctx context.Context, outboxID int) error {
	for i := range m.outbox {
		if m.outbox[i].ID == outboxID && m.outbox[i].Status == entity.OutboxFailed {
			m.outbox[i].Status = entity.OutboxPending
			m.outbox[i].ErrorDetail = nil
			return nil
		}
	}
	return appers.ErrOutboxNotRequeueable
}

func (m *mockRepo) DeleteDeliveredBefore(ctx context.Context, days *int) (int64, error) {
	return 0, nil
}

func (m *mockRepo) TryAcquireLock(ctx context.Context, name, holder string, lease time.Duration) (bool, error) {
	return true, nil
}

func (m *mockRepo) ReleaseLock(ctx context.Context, name, holder string) error {
	return nil
}

func (m *mockRepo) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *mockRepo) findOutbox(outboxID int) *entity.OutboxRecord {
	for i := range m.outbox {
		if m.outbox[i].ID == outboxID {
			return &m.outbox[i]
		}
	}
	return nil
}

// mockTransactions mirrors the atomic completion transaction: either both
// the completion record and the outbox record land, or neither does.
type mockTransactions struct {
	repo    *mockRepo
	failErr error // simulated crash before commit: nothing persists
	calls   int
}

func (t *mockTransactions) CompleteCase(ctx context.Context, caseID uuid.UUID, completedAt time.Time, evt *entity.OutboxRecord) error {
	t.calls++
	if t.failErr != nil {
		return t.failErr
	}
	if err := t.repo.MarkCompleted(ctx, caseID, completedAt); err != nil {
		return err
	}
	if evt != nil {
		return t.repo.InsertOutbox(ctx, evt)
	}
	return nil
}

// mockProducer records published messages; errors can be injected per key.
type mockProducer struct {
	mu       sync.Mutex
	sent     []sentMessage
	failKeys map[string]error
}

type sentMessage struct {
	kind    entity.EventKind
	key     string
	payload []byte
}

func newMockProducer() *mockProducer {
	return &mockProducer{failKeys: make(map[string]error)}
}

func (p *mockProducer) ProduceMessage(ctx context.Context, kind entity.EventKind, key string, message []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.failKeys[key]; ok {
		return err
	}
	p.sent = append(p.sent, sentMessage{kind: kind, key: key, payload: message})
	return nil
}

func (p *mockProducer) HealthCheck(ctx context.Context) error { return nil }

type legacyCall struct {
	caseRef string
	outcome entity.Outcome
	actorID string
}

type mockLegacy struct {
	calls []legacyCall
	err   error
}

func (m *mockLegacy) MarkCaseFinished(ctx context.Context, caseRef string, outcome entity.Outcome, actorID string) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, legacyCall{caseRef: caseRef, outcome: outcome, actorID: actorID})
	return nil
}

type mockTracking struct {
	updated   []string
	commented []string
	closed    []string
	err       error
}

func (m *mockTracking) UpdateTicket(ctx context.Context, ticketID string, fields tracking.TicketUpdate) error {
	if m.err != nil {
		return m.err
	}
	m.updated = append(m.updated, ticketID)
	return nil
}

func (m *mockTracking) AddComment(ctx context.Context, ticketID, text string) error {
	if m.err != nil {
		return m.err
	}
	m.commented = append(m.commented, ticketID)
	return nil
}

func (m *mockTracking) CloseTicket(ctx context.Context, ticketID, reason string) error {
	if m.err != nil {
		return m.err
	}
	m.closed = append(m.closed, ticketID)
	return nil
}
