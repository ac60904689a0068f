// Package contentevents publishes committed content changes on the event bus.
package contentevents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/club-cms/app/eventbus"
	contentservice "github.com/Black-And-White-Club/club-cms/app/modules/content/application"
	"github.com/Black-And-White-Club/club-cms/app/shared/observability"
	"github.com/ThreeDotsLabs/watermill/message"
)

// BusNotifier implements contentservice.Notifier on a watermill publisher.
type BusNotifier struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func NewBusNotifier(publisher message.Publisher, logger *slog.Logger) *BusNotifier {
	return &BusNotifier{publisher: publisher, logger: logger}
}

// NotifyChange publishes change to content.changed.v1.
func (n *BusNotifier) NotifyChange(ctx context.Context, change contentservice.ChangeNotice) error {
	msg, err := eventbus.NewMessage(ctx, change)
	if err != nil {
		return err
	}
	msg.Metadata.Set("action", change.Action)
	msg.Metadata.Set("subject", change.Subject)

	if err := n.publisher.Publish(eventbus.ContentChangedV1, msg); err != nil {
		return fmt.Errorf("failed to publish content change: %w", err)
	}
	n.logger.DebugContext(ctx, "Published content change",
		slog.String("message_id", msg.UUID),
		slog.String("action", change.Action),
		observability.CorrelationAttr(ctx),
	)
	return nil
}

var _ contentservice.Notifier = (*BusNotifier)(nil)
