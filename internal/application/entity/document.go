package entity

import (
	"time"

	"github.com/gofrs/uuid"
)

// Document is a draft belonging to a case. Marking done and finalization
// (archival) are separate steps; the gate cares only about primary documents
// that are marked done but not yet finalized.
type Document struct {
	ID           uuid.UUID
	CaseID       uuid.UUID
	Primary      bool
	MarkedDoneAt *time.Time
	FinalizedAt  *time.Time
}
