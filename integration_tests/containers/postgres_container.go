package containers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "postgres:17-alpine"
	pgDatabase    = "club_cms_test"
	pgUser        = "cms"
	pgPassword    = "cms"
)

// SetupPostgresContainer starts Postgres and returns the container with a DSN that has TLS
// disabled. The schema is created by the caller's migrations, not by init scripts.
func SetupPostgresContainer(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	ready := wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", pgUser, pgPassword, host, port.Port(), pgDatabase)
	}).WithStartupTimeout(time.Minute)

	pg, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase(pgDatabase),
		postgres.WithUsername(pgUser),
		postgres.WithPassword(pgPassword),
		testcontainers.WithWaitStrategy(ready),
	)
	if err != nil {
		terminate(pg, "postgres")
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate(pg, "postgres")
		return nil, "", fmt.Errorf("failed to get postgres connection string: %w", err)
	}
	log.Printf("Postgres %s ready", postgresImage)
	return pg, dsn, nil
}

// terminate removes a container that failed to come up. c may be nil.
func terminate(c testcontainers.Container, name string) {
	if err := testcontainers.TerminateContainer(c); err != nil {
		log.Printf("Failed to terminate %s container: %v", name, err)
	}
}
