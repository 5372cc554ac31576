package service

import (
	"context"

	"caseflow/internal/application/entity"
)

// RunDispatchSweep delivers every PENDING or FAILED outbox record of one
// kind, oldest first. One record's failure never blocks the rest. Concurrent
// execution across instances is only safe under the scheduler lock — two
// unsynchronized sweeps would both read and double-deliver.
func (s *ServiceImpl) RunDispatchSweep(ctx context.Context, kind entity.EventKind) {
	records, err := s.repo.ListUndelivered(ctx, kind)
	if err != nil {
		s.logger.Errorf("[kind: %s] listing undelivered outbox failed: %v", kind, err)
		return
	}
	if len(records) == 0 {
		s.logger.Debugf("[kind: %s] dispatch sweep: nothing to deliver", kind)
		return
	}

	s.logger.Infof("[kind: %s] dispatch sweep started, %d records", kind, len(records))

	for _, rec := range records {
		if ctx.Err() != nil {
			s.logger.Infof("[kind: %s] dispatch sweep stopping, context done", kind)
			return
		}
		s.dispatchOne(ctx, rec)
	}

	s.logger.Infof("[kind: %s] dispatch sweep finished", kind)
}

func (s *ServiceImpl) dispatchOne(ctx context.Context, rec entity.OutboxRecord) {
	// the stored payload is delivered byte-for-byte, keyed by case id
	if err := s.producer.ProduceMessage(ctx, rec.Kind, rec.CaseID.String(), rec.Payload); err != nil {
		s.logger.Errorf("[ID %d] delivery failed: %v", rec.ID, err)
		if s.m != nil {
			s.m.Sweep.OutboxDispatchedTotal.WithLabelValues(string(rec.Kind), "failed").Inc()
		}
		if markErr := s.repo.MarkDeliveryFailed(context.WithoutCancel(ctx), rec.ID, err.Error()); markErr != nil {
			s.logger.Errorf("[ID %d] marking FAILED also failed: %v", rec.ID, markErr)
		}
		return
	}

	if s.m != nil {
		s.m.Sweep.OutboxDispatchedTotal.WithLabelValues(string(rec.Kind), "delivered").Inc()
	}

	if err := s.repo.MarkDelivered(ctx, rec.ID); err != nil {
		// the message is already out; re-delivery on the next sweep is the
		// accepted at-least-once cost, consumers dedupe by case id
		s.logger.Errorf("[ID %d] delivered but status update failed, record may redeliver: %v", rec.ID, err)
		return
	}

	s.logger.Infof("[ID %d] delivered, kind=%s case=%s", rec.ID, rec.Kind, rec.CaseID)
}
