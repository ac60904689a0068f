package contentservice

import (
	"context"

	"github.com/google/uuid"
)

// Change actions carried by ChangeNotice.
const (
	ActionCreated        = "created"
	ActionUpdated        = "updated"
	ActionDeleted        = "deleted"
	ActionMembersAdded   = "members_added"
	ActionMembersRemoved = "members_removed"
	ActionRenderAssigned = "render_assigned"
	ActionImported       = "imported"
)

// ChangeNotice describes a committed content change.
type ChangeNotice struct {
	Action    string         `json:"action"`
	Subject   string         `json:"subject"`
	SubjectID uuid.UUID      `json:"subject_id"`
	Details   map[string]any `json:"details,omitempty"`
}

// Notifier publishes committed changes to interested parties outside the transaction.
type Notifier interface {
	NotifyChange(ctx context.Context, change ChangeNotice) error
}

type noopNotifier struct{}

func (noopNotifier) NotifyChange(context.Context, ChangeNotice) error { return nil }
