package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"
)

// Topics published by the modules.
const (
	ContentChangedV1     = "content.changed.v1"
	AssetImageCreatedV1  = "asset.image.created.v1"
	AssetImageArchivedV1 = "asset.image.archived.v1"
)

// StreamConfigs lists the JetStream streams backing the topics.
var StreamConfigs = []jetstream.StreamConfig{
	{Name: "CONTENT", Subjects: []string{"content.>"}},
	{Name: "ASSET", Subjects: []string{"asset.>"}},
}

// InitializeStreams creates the necessary streams in JetStream during application startup.
func InitializeStreams(ctx context.Context, js jetstream.JetStream, logger *slog.Logger) error {
	for _, streamConfig := range StreamConfigs {
		_, err := js.Stream(ctx, streamConfig.Name)
		if errors.Is(err, jetstream.ErrStreamNotFound) {
			if _, err := js.CreateStream(ctx, streamConfig); err != nil {
				logger.Error("Failed to create JetStream stream", slog.String("stream", streamConfig.Name), slog.Any("error", err))
				return fmt.Errorf("failed to create stream %s: %w", streamConfig.Name, err)
			}
			logger.Info("Created JetStream stream", slog.String("stream", streamConfig.Name))
		} else if err != nil {
			return fmt.Errorf("failed to check stream: %w", err)
		}
	}
	return nil
}
