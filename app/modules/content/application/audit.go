package contentservice

import (
	"context"
	"fmt"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/Black-And-White-Club/club-cms/app/shared/results"
	"github.com/uptrace/bun"
)

// RecordChange appends a published change to the audit log. Redelivered messages are
// recorded once.
func (s *ContentService) RecordChange(ctx context.Context, messageID string, change ChangeNotice) error {
	recordTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		if messageID == "" || change.Action == "" {
			return failure[bool](fmt.Errorf("%w: change without message id or action", ErrInvalidInput))
		}
		entry := &contentdb.AuditEntry{
			MessageID: messageID,
			Action:    change.Action,
			Subject:   change.Subject,
			SubjectID: change.SubjectID,
			Details:   change.Details,
		}
		if err := s.repo.InsertAuditEntry(ctx, db, entry); err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		return results.SuccessResult[bool, error](true), nil
	}

	_, err := unwrapResult(withTelemetry(s, ctx, "RecordChange", messageID, func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, recordTx)
	}))
	return err
}
