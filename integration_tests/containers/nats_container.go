package containers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/wait"
)

const natsImage = "nats:2.11-alpine"

// SetupNatsContainer starts a JetStream enabled NATS server and returns its client URL.
// The event bus provisions its own streams on connect.
func SetupNatsContainer(ctx context.Context) (*nats.NATSContainer, string, error) {
	n, err := nats.Run(ctx, natsImage,
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("4222/tcp").WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		terminate(n, "nats")
		return nil, "", fmt.Errorf("failed to start nats container: %w", err)
	}

	url, err := n.ConnectionString(ctx)
	if err != nil {
		terminate(n, "nats")
		return nil, "", fmt.Errorf("failed to get nats connection string: %w", err)
	}
	log.Printf("NATS %s ready at %s", natsImage, url)
	return n, url, nil
}
