package contenthandlers

import (
	"encoding/json"
	"fmt"
	"log/slog"

	contentservice "github.com/Black-And-White-Club/club-cms/app/modules/content/application"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// HandleContentChanged records a committed content change in the audit log.
// Redelivered messages are absorbed by the message id.
func (h *ContentHandlers) HandleContentChanged(msg *message.Message) error {
	var change contentservice.ChangeNotice
	if err := json.Unmarshal(msg.Payload, &change); err != nil {
		h.logger.Error("Dropping malformed content change",
			slog.String("message_id", msg.UUID),
			slog.Any("error", err),
		)
		return nil
	}

	h.logger.Info("Recording content change",
		slog.String("message_id", msg.UUID),
		slog.String("correlation_id", middleware.MessageCorrelationID(msg)),
		slog.String("action", change.Action),
		slog.String("subject", change.Subject),
	)

	if err := h.service.RecordChange(msg.Context(), msg.UUID, change); err != nil {
		return fmt.Errorf("failed to record content change: %w", err)
	}
	return nil
}
