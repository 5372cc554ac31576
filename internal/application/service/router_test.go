package service

import (
	"testing"

	"github.com/gofrs/uuid"

	"caseflow/internal/appers"
	"caseflow/internal/application/entity"
)

func routedCase(t entity.CaseType, src entity.SourceSystem, outcome entity.Outcome, trackingRequired, ignoreTracking bool, ticketID string) *entity.Case {
	c := &entity.Case{
		ID:               uuid.Must(uuid.NewV4()),
		Type:             t,
		SourceSystem:     src,
		SourceReference:  "S-1",
		Outcome:          &outcome,
		TrackingRequired: trackingRequired,
		IgnoreTracking:   ignoreTracking,
	}
	if ticketID != "" {
		c.TrackingTicketID = &ticketID
	}
	return c
}

func TestRouteStandardCaseTypes(t *testing.T) {
	standard := []entity.CaseType{
		entity.CaseTypeAppeal,
		entity.CaseTypeSecondTierAppeal,
		entity.CaseTypeReopenedAfterTribunal,
	}

	for _, ct := range standard {
		t.Run(string(ct), func(t *testing.T) {
			tests := []struct {
				name string
				c    *entity.Case
				want Actions
			}{
				{
					name: "legacy source notifies legacy system",
					c:    routedCase(ct, entity.SourceLegacy, entity.OutcomeUpheld, false, false, ""),
					want: Actions{NotifyLegacy: true},
				},
				{
					name: "modern source without tracking emits event",
					c:    routedCase(ct, entity.SourceModern, entity.OutcomeUpheld, false, false, ""),
					want: Actions{EmitEvent: true},
				},
				{
					name: "tracking required updates ticket instead",
					c:    routedCase(ct, entity.SourceModern, entity.OutcomeUpheld, true, false, "T-1"),
					want: Actions{UpdateTicket: true},
				},
				{
					name: "ignoreTracking suppresses ticket handling",
					c:    routedCase(ct, entity.SourceModern, entity.OutcomeUpheld, true, true, "T-1"),
					want: Actions{EmitEvent: true},
				},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := Route(tt.c)
					if err != nil {
						t.Fatalf("Route returned error: %v", err)
					}
					if got != tt.want {
						t.Errorf("Route = %+v, want %+v", got, tt.want)
					}
				})
			}
		})
	}
}

func TestRouteTribunalRemand(t *testing.T) {
	for _, ct := range []entity.CaseType{entity.CaseTypeTribunalSecondTier, entity.CaseTypeTribunalReopening} {
		t.Run(string(ct), func(t *testing.T) {
			// remand with a ticket: comment only, never a close or notification
			got, err := Route(routedCase(ct, entity.SourceModern, entity.OutcomeRemanded, true, false, "T-9"))
			if err != nil {
				t.Fatalf("Route returned error: %v", err)
			}
			if (got != Actions{CommentTicket: true}) {
				t.Errorf("remand with ticket: got %+v, want CommentTicket only", got)
			}

			// remand without tracking: nothing fires
			got, err = Route(routedCase(ct, entity.SourceModern, entity.OutcomeRemanded, false, false, ""))
			if err != nil {
				t.Fatalf("Route returned error: %v", err)
			}
			if !got.None() {
				t.Errorf("remand without tracking: got %+v, want none", got)
			}

			// a regular outcome falls back to the standard branches
			got, err = Route(routedCase(ct, entity.SourceLegacy, entity.OutcomeUpheld, false, false, ""))
			if err != nil {
				t.Fatalf("Route returned error: %v", err)
			}
			if (got != Actions{NotifyLegacy: true}) {
				t.Errorf("tribunal type with regular outcome: got %+v, want NotifyLegacy", got)
			}
		})
	}
}

func TestRouteTerminatedRequests(t *testing.T) {
	for _, ct := range []entity.CaseType{entity.CaseTypeReconsideration, entity.CaseTypeReopening} {
		for _, outcome := range []entity.Outcome{entity.OutcomeWithdrawn, entity.OutcomeDismissed} {
			t.Run(string(ct)+"/"+string(outcome), func(t *testing.T) {
				// terminated with a ticket: close it, notify nobody
				got, err := Route(routedCase(ct, entity.SourceModern, outcome, true, false, "T-2"))
				if err != nil {
					t.Fatalf("Route returned error: %v", err)
				}
				if (got != Actions{CloseTicket: true}) {
					t.Errorf("terminated with ticket: got %+v, want CloseTicket only", got)
				}

				// terminated without tracking: nothing at all
				got, err = Route(routedCase(ct, entity.SourceLegacy, outcome, false, false, ""))
				if err != nil {
					t.Fatalf("Route returned error: %v", err)
				}
				if !got.None() {
					t.Errorf("terminated without tracking: got %+v, want none", got)
				}

				// ignoreTracking wins even with a ticket present
				got, err = Route(routedCase(ct, entity.SourceModern, outcome, true, true, "T-2"))
				if err != nil {
					t.Fatalf("Route returned error: %v", err)
				}
				if !got.None() {
					t.Errorf("terminated with ignoreTracking: got %+v, want none", got)
				}
			})
		}
	}
}

func TestRouteInvariantViolations(t *testing.T) {
	tests := []struct {
		name string
		c    *entity.Case
	}{
		{
			name: "tracking required but no ticket id",
			c:    routedCase(entity.CaseTypeAppeal, entity.SourceModern, entity.OutcomeUpheld, true, false, ""),
		},
		{
			name: "remand tracking required but no ticket id",
			c:    routedCase(entity.CaseTypeTribunalSecondTier, entity.SourceModern, entity.OutcomeRemanded, true, false, ""),
		},
		{
			name: "unknown case type",
			c:    routedCase("SOMETHING_NEW", entity.SourceModern, entity.OutcomeUpheld, false, false, ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Route(tt.c)
			if !appers.IsInvariantViolation(err) {
				t.Errorf("Route error = %v, want invariant violation", err)
			}
		})
	}

	t.Run("missing outcome", func(t *testing.T) {
		c := routedCase(entity.CaseTypeAppeal, entity.SourceModern, entity.OutcomeUpheld, false, false, "")
		c.Outcome = nil
		_, err := Route(c)
		if !appers.IsInvariantViolation(err) {
			t.Errorf("Route error = %v, want invariant violation", err)
		}
	})
}

// The router must cover every declared case type and never return a
// conflicting action combination for any input.
func TestRouteExhaustiveAndConsistent(t *testing.T) {
	outcomes := []entity.Outcome{
		entity.OutcomeUpheld, entity.OutcomeOverturned, entity.OutcomeRemanded,
		entity.OutcomeWithdrawn, entity.OutcomeDismissed,
	}
	sources := []entity.SourceSystem{entity.SourceLegacy, entity.SourceModern}

	for _, ct := range entity.AllCaseTypes {
		for _, src := range sources {
			for _, outcome := range outcomes {
				for _, trackingRequired := range []bool{false, true} {
					for _, ignore := range []bool{false, true} {
						c := routedCase(ct, src, outcome, trackingRequired, ignore, "T-X")

						got, err := Route(c)
						if err != nil {
							if !appers.IsInvariantViolation(err) {
								t.Fatalf("Route(%s) unexpected error kind: %v", ct, err)
							}
							continue
						}

						// determinism
						again, err2 := Route(c)
						if err2 != nil || got != again {
							t.Errorf("Route(%s) not deterministic: %+v vs %+v (err %v)", ct, got, again, err2)
						}

						// notifications are mutually exclusive with each
						// other and with ticket handling
						if got.NotifyLegacy && got.EmitEvent {
							t.Errorf("Route(%s %s) selected both legacy and modern notification", ct, src)
						}
						ticketActions := got.UpdateTicket || got.CommentTicket || got.CloseTicket
						if (got.NotifyLegacy || got.EmitEvent) && ticketActions {
							t.Errorf("Route(%s %s) mixed notification with ticket handling: %+v", ct, src, got)
						}

						// ignoreTracking must keep every ticket action off
						if ignore && ticketActions {
							t.Errorf("Route(%s) selected ticket action despite ignoreTracking: %+v", ct, got)
						}
					}
				}
			}
		}
	}
}
