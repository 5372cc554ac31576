package entity

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"
)

type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "PENDING"
	OutboxDelivered OutboxStatus = "DELIVERED"
	OutboxFailed    OutboxStatus = "FAILED"
)

// EventKind partitions the dispatch streams; each kind has its own topic and
// its own scheduled sweep. FIFO ordering holds per kind only.
type EventKind string

const (
	KindCaseOutcome  EventKind = "case-outcome"
	KindStatistics   EventKind = "dvh-statistics"
	KindNotification EventKind = "notification-frontend-event"
)

var AllEventKinds = []EventKind{KindCaseOutcome, KindStatistics, KindNotification}

// OutboxRecord is one pending notification. Written in the same transaction
// as the domain change that requires it; only the dispatcher mutates it
// afterwards, and nothing in the core deletes undelivered records.
type OutboxRecord struct {
	ID              int             `db:"id"`
	CaseID          uuid.UUID       `db:"case_id"`
	SourceReference string          `db:"source_reference"`
	SourceSystem    SourceSystem    `db:"source_system"`
	Kind            EventKind       `db:"kind"`
	Status          OutboxStatus    `db:"status"`
	Payload         json.RawMessage `db:"payload"`
	ErrorDetail     *string         `db:"error_detail"`
	CreatedAt       time.Time       `db:"created_at"`
}

// CaseOutcomeEvent is the payload written for kind "case-outcome". The schema
// belongs to the downstream consumer contract; the dispatcher reproduces the
// stored bytes verbatim and never re-marshals.
type CaseOutcomeEvent struct {
	CaseID          uuid.UUID    `json:"caseId"`
	CaseType        CaseType     `json:"caseType"`
	SourceSystem    SourceSystem `json:"sourceSystem"`
	SourceReference string       `json:"sourceReference"`
	Outcome         Outcome      `json:"outcome"`
	CompletedAt     time.Time    `json:"completedAt"`
}
