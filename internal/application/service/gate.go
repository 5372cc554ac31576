package service

import (
	"context"

	"github.com/gofrs/uuid"
)

// canComplete is the document completion gate: true iff no primary document
// of the case is marked done without being finalized. Finalization happens
// asynchronously (archival), so this is re-evaluated on every attempt and
// never cached.
func (s *ServiceImpl) canComplete(ctx context.Context, caseID uuid.UUID) (bool, error) {
	docs, err := s.repo.FindUnfinalizedPrimaryDocuments(ctx, caseID)
	if err != nil {
		return false, err
	}
	return len(docs) == 0, nil
}
