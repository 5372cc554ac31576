package service

import (
	"caseflow/internal/appers"
	"caseflow/internal/application/entity"
)

// Actions is the set of downstream effects a finished case requires. The
// legacy/modern notifications and the tracking-ticket actions are mutually
// exclusive; Route never returns a conflicting combination.
type Actions struct {
	NotifyLegacy  bool
	EmitEvent     bool
	UpdateTicket  bool
	CommentTicket bool
	CloseTicket   bool
}

func (a Actions) None() bool {
	return !a.NotifyLegacy && !a.EmitEvent && !a.UpdateTicket && !a.CommentTicket && !a.CloseTicket
}

// Route decides, purely from case type, source system, outcome and tracking
// flags, what must happen downstream. No I/O, deterministic.
func Route(c *entity.Case) (Actions, error) {
	if c.Outcome == nil {
		return Actions{}, appers.NewInvariantViolation(c.ID, "routing a case without an outcome")
	}

	switch c.Type {
	case entity.CaseTypeAppeal,
		entity.CaseTypeSecondTierAppeal,
		entity.CaseTypeReopenedAfterTribunal:
		return routeStandard(c)

	case entity.CaseTypeTribunalSecondTier,
		entity.CaseTypeTribunalReopening:
		// The tribunal may send the matter back, spawning a brand-new
		// downstream case. That sub-outcome only leaves a comment on the
		// tracking ticket; no close, no legacy/modern notification.
		if c.Outcome.SpawnsDownstreamCase() {
			return routeRemand(c)
		}
		return routeStandard(c)

	case entity.CaseTypeReconsideration,
		entity.CaseTypeReopening:
		// Withdrawn/dismissed requests close the ticket and notify nobody.
		if c.Outcome.Terminated() {
			return routeTerminated(c)
		}
		return routeStandard(c)

	default:
		return Actions{}, appers.NewInvariantViolation(c.ID, "unknown case type "+string(c.Type))
	}
}

func routeStandard(c *entity.Case) (Actions, error) {
	if c.SourceSystem == entity.SourceLegacy {
		return Actions{NotifyLegacy: true}, nil
	}

	if trackingActive(c) {
		if !c.HasTrackingTicket() {
			return Actions{}, appers.NewInvariantViolation(c.ID, "tracking required but no ticket id")
		}
		return Actions{UpdateTicket: true}, nil
	}

	return Actions{EmitEvent: true}, nil
}

func routeRemand(c *entity.Case) (Actions, error) {
	if !trackingActive(c) {
		return Actions{}, nil
	}
	if !c.HasTrackingTicket() {
		return Actions{}, appers.NewInvariantViolation(c.ID, "tracking required but no ticket id")
	}
	return Actions{CommentTicket: true}, nil
}

func routeTerminated(c *entity.Case) (Actions, error) {
	if !trackingActive(c) {
		return Actions{}, nil
	}
	if !c.HasTrackingTicket() {
		return Actions{}, appers.NewInvariantViolation(c.ID, "tracking required but no ticket id")
	}
	return Actions{CloseTicket: true}, nil
}

// ignoreTracking suppresses ticket handling even when a ticket exists.
func trackingActive(c *entity.Case) bool {
	return c.TrackingRequired && !c.IgnoreTracking
}
