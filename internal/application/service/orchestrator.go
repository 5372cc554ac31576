package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"caseflow/internal/appers"
	"caseflow/internal/application/entity"
	"caseflow/internal/transport/tracking"
)

// RunCompletionSweep processes every open, completion-eligible case once.
// Per-case failures are isolated: one broken case never aborts the sweep for
// the rest. Invoked by the scheduler only, under the completion-sweep lock.
func (s *ServiceImpl) RunCompletionSweep(ctx context.Context) {
	cases, err := s.repo.ListCompletionCandidates(ctx)
	if err != nil {
		s.logger.Errorf("completion sweep: listing candidates failed: %v", err)
		return
	}

	s.logger.Infof("completion sweep started, %d candidates", len(cases))

	for _, c := range cases {
		if ctx.Err() != nil {
			s.logger.Info("completion sweep stopping, context done")
			return
		}
		if err := s.completeOne(ctx, c); err != nil {
			s.countCaseFailure(err)
			switch {
			case appers.IsInvariantViolation(err):
				// loud, and the case is left untouched for manual investigation
				s.logger.Errorf("[case: %s] INVARIANT VIOLATION: %v", c.ID, err)
			default:
				s.logger.Warnf("[case: %s] completion attempt failed, will retry next tick: %v", c.ID, err)
			}
		}
	}

	s.logger.Info("completion sweep finished")
}

// completeOne runs the full completion protocol for a single case:
// defensive already-completed check, document gate, routing, synchronous
// side effects, then the atomic completion-record + outbox write. Any
// failure before the final transaction leaves the case OPEN with no partial
// commit; the attempt is simply replayed next tick.
func (s *ServiceImpl) completeOne(ctx context.Context, c *entity.Case) error {
	if c.Completed() {
		// never silently no-op: a second completion attempt means something
		// upstream is broken
		return appers.NewInvariantViolation(c.ID, "completion attempted on an already-completed case")
	}

	ok, err := s.canComplete(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("document gate: %w", err)
	}
	if !ok {
		// expected while documents finalize asynchronously; not an error
		s.logger.Debugf("[case: %s] blocked by unfinalized documents, retrying next tick", c.ID)
		if s.m != nil {
			s.m.Sweep.CasesBlockedTotal.Inc()
		}
		return nil
	}

	acts, err := Route(c)
	if err != nil {
		return err
	}

	if err := s.applySideEffects(ctx, c, acts); err != nil {
		return err
	}

	completedAt := time.Now().UTC()

	var evt *entity.OutboxRecord
	if acts.EmitEvent {
		evt, err = buildOutcomeRecord(c, completedAt)
		if err != nil {
			return err
		}
	}

	if err := s.transactions.CompleteCase(ctx, c.ID, completedAt, evt); err != nil {
		if errors.Is(err, appers.ErrAlreadyCompleted) {
			return appers.NewInvariantViolation(c.ID, "completion record was already set")
		}
		return fmt.Errorf("complete case: %w", err)
	}

	if s.m != nil {
		s.m.Sweep.CasesCompletedTotal.WithLabelValues(string(c.Type)).Inc()
	}
	s.logger.Infof("[case: %s] completed, type=%s outcome=%s actions=%+v", c.ID, c.Type, *c.Outcome, acts)
	return nil
}

// applySideEffects performs the synchronous legacy/tracking calls. These are
// deliberately NOT in the outbox: the targets do not replay idempotently
// from a queue, so they are retried by re-running the whole attempt instead,
// which is safe because completion is only recorded after all of them
// succeed.
func (s *ServiceImpl) applySideEffects(ctx context.Context, c *entity.Case, acts Actions) error {
	if acts.NotifyLegacy {
		if err := s.legacy.MarkCaseFinished(ctx, c.SourceReference, *c.Outcome, s.actorID); err != nil {
			return err
		}
	}

	if acts.UpdateTicket {
		update := trackingUpdateFor(c)
		if err := s.tracking.UpdateTicket(ctx, *c.TrackingTicketID, update); err != nil {
			return err
		}
	}

	if acts.CommentTicket {
		text := fmt.Sprintf("Tribunal sent the matter back; a new case will be opened downstream for %s.", c.SourceReference)
		if err := s.tracking.AddComment(ctx, *c.TrackingTicketID, text); err != nil {
			return err
		}
	}

	if acts.CloseTicket {
		if err := s.tracking.CloseTicket(ctx, *c.TrackingTicketID, string(*c.Outcome)); err != nil {
			return err
		}
	}

	return nil
}

func trackingUpdateFor(c *entity.Case) tracking.TicketUpdate {
	return tracking.TicketUpdate{
		Status:  "FINISHED",
		Outcome: string(*c.Outcome),
	}
}

func buildOutcomeRecord(c *entity.Case, completedAt time.Time) (*entity.OutboxRecord, error) {
	payload, err := json.Marshal(entity.CaseOutcomeEvent{
		CaseID:          c.ID,
		CaseType:        c.Type,
		SourceSystem:    c.SourceSystem,
		SourceReference: c.SourceReference,
		Outcome:         *c.Outcome,
		CompletedAt:     completedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal outcome event: %w", err)
	}

	return &entity.OutboxRecord{
		CaseID:          c.ID,
		SourceReference: c.SourceReference,
		SourceSystem:    c.SourceSystem,
		Kind:            entity.KindCaseOutcome,
		Status:          entity.OutboxPending,
		Payload:         payload,
	}, nil
}

func (s *ServiceImpl) countCaseFailure(err error) {
	if s.m == nil {
		return
	}
	kind := "storage"
	var adapterErr *appers.AdapterError
	switch {
	case appers.IsInvariantViolation(err):
		kind = "invariant"
	case errors.As(err, &adapterErr):
		kind = "adapter"
	}
	s.m.Sweep.CaseFailuresTotal.WithLabelValues(kind).Inc()
}
