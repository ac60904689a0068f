// Package assetevents announces image lifecycle changes on the event bus.
package assetevents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/club-cms/app/eventbus"
	assetservice "github.com/Black-And-White-Club/club-cms/app/modules/asset/application"
	assetdb "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/repositories"
	"github.com/Black-And-White-Club/club-cms/app/shared/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// ImageCreatedPayloadV1 is published to asset.image.created.v1.
type ImageCreatedPayloadV1 struct {
	ImageID   uuid.UUID        `json:"image_id"`
	Category  assetdb.Category `json:"category"`
	Extension string           `json:"extension"`
	SizeBytes int64            `json:"size_bytes"`
	Tags      []string         `json:"tags,omitempty"`
}

// ImageArchivedPayloadV1 is published to asset.image.archived.v1.
type ImageArchivedPayloadV1 struct {
	ImageID     uuid.UUID        `json:"image_id"`
	Category    assetdb.Category `json:"category"`
	ArchivePath string           `json:"archive_path"`
	ArchivedAt  time.Time        `json:"archived_at"`
}

// BusNotifier implements assetservice.Notifier on a watermill publisher.
type BusNotifier struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func NewBusNotifier(publisher message.Publisher, logger *slog.Logger) *BusNotifier {
	return &BusNotifier{publisher: publisher, logger: logger}
}

func (n *BusNotifier) ImageCreated(ctx context.Context, img *assetdb.Image) error {
	payload := ImageCreatedPayloadV1{
		ImageID:   img.ID,
		Category:  img.Category,
		Extension: img.Extension,
		SizeBytes: img.SizeBytes,
	}
	for _, t := range img.Tags {
		payload.Tags = append(payload.Tags, t.Name)
	}
	return n.publish(ctx, eventbus.AssetImageCreatedV1, img.Category, payload)
}

func (n *BusNotifier) ImageArchived(ctx context.Context, entry *assetdb.ArchivedImage) error {
	return n.publish(ctx, eventbus.AssetImageArchivedV1, entry.Category, ImageArchivedPayloadV1{
		ImageID:     entry.ImageID,
		Category:    entry.Category,
		ArchivePath: entry.ArchivePath,
		ArchivedAt:  entry.ArchivedAt,
	})
}

func (n *BusNotifier) publish(ctx context.Context, topic string, category assetdb.Category, payload any) error {
	msg, err := eventbus.NewMessage(ctx, payload)
	if err != nil {
		return err
	}
	msg.Metadata.Set("category", string(category))

	if err := n.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	n.logger.DebugContext(ctx, "Published image event",
		slog.String("topic", topic),
		slog.String("message_id", msg.UUID),
		observability.CorrelationAttr(ctx),
	)
	return nil
}

var _ assetservice.Notifier = (*BusNotifier)(nil)
