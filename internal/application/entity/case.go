package entity

import (
	"time"

	"github.com/gofrs/uuid"
)

type CaseType string

const (
	CaseTypeAppeal                CaseType = "APPEAL"
	CaseTypeSecondTierAppeal      CaseType = "SECOND_TIER_APPEAL"
	CaseTypeTribunalSecondTier    CaseType = "SECOND_TIER_APPEAL_TRIBUNAL"
	CaseTypeReopenedAfterTribunal CaseType = "REOPENED_AFTER_TRIBUNAL"
	CaseTypeReconsideration       CaseType = "RECONSIDERATION_REQUEST"
	CaseTypeReopening             CaseType = "REOPENING_REQUEST"
	CaseTypeTribunalReopening     CaseType = "REOPENING_REQUEST_TRIBUNAL"
)

// AllCaseTypes is the closed set the router must cover. Adding a type here
// without extending the router is caught by the exhaustiveness test.
var AllCaseTypes = []CaseType{
	CaseTypeAppeal,
	CaseTypeSecondTierAppeal,
	CaseTypeTribunalSecondTier,
	CaseTypeReopenedAfterTribunal,
	CaseTypeReconsideration,
	CaseTypeReopening,
	CaseTypeTribunalReopening,
}

type SourceSystem string

const (
	SourceLegacy SourceSystem = "LEGACY_MAINFRAME"
	SourceModern SourceSystem = "MODERN"
)

type Outcome string

const (
	OutcomeUpheld     Outcome = "UPHELD"
	OutcomeOverturned Outcome = "OVERTURNED"
	// OutcomeRemanded: the tribunal sent the matter back, a brand-new
	// downstream case is opened for it.
	OutcomeRemanded  Outcome = "REMANDED"
	OutcomeWithdrawn Outcome = "WITHDRAWN"
	OutcomeDismissed Outcome = "DISMISSED"
)

// SpawnsDownstreamCase reports whether this outcome opens a new case in the
// downstream system instead of finishing the matter outright.
func (o Outcome) SpawnsDownstreamCase() bool {
	return o == OutcomeRemanded
}

// Terminated reports the withdrawn/dismissed terminal sub-outcome of
// reconsideration and reopening requests.
func (o Outcome) Terminated() bool {
	return o == OutcomeWithdrawn || o == OutcomeDismissed
}

// Case is one appeal matter ("behandling") tracked to completion.
type Case struct {
	ID               uuid.UUID
	Type             CaseType
	SourceSystem     SourceSystem
	SourceReference  string
	Outcome          *Outcome
	CompletedAt      *time.Time // nil while the case is open; written at most once
	TrackingRequired bool
	IgnoreTracking   bool
	TrackingTicketID *string
}

func (c *Case) Completed() bool {
	return c.CompletedAt != nil
}

func (c *Case) HasTrackingTicket() bool {
	return c.TrackingTicketID != nil && *c.TrackingTicketID != ""
}
