package contentservice

import (
	"context"
	"log/slog"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DomainEvent is raised by the service inside the transaction of the mutation that caused it.
type DomainEvent interface {
	EventName() string
}

// MembersAdded is raised after entities were newly associated with a container.
type MembersAdded struct {
	Association contentdb.Association
	Container   contentdb.Container
	EntityIDs   []uuid.UUID
}

func (MembersAdded) EventName() string { return "members_added" }

// MembersRemoved is raised after entities were detached from a container.
type MembersRemoved struct {
	Association contentdb.Association
	Container   contentdb.Container
	EntityIDs   []uuid.UUID
}

func (MembersRemoved) EventName() string { return "members_removed" }

// EntityUpdated is raised after an ordered entity row was rewritten.
type EntityUpdated struct {
	EntityType contentdb.EntityType
	Before     contentdb.OrderedRecord
	After      contentdb.OrderedRecord
}

func (EntityUpdated) EventName() string { return "entity_updated" }

// Subscriber reacts to domain events. A returned error rejects the mutation.
type Subscriber interface {
	Name() string
	Handle(ctx context.Context, db bun.IDB, event DomainEvent) error
}

// dispatcher delivers events to a fixed list of subscribers in order, stopping at the first error.
type dispatcher struct {
	subscribers []Subscriber
	logger      *slog.Logger
}

func newDispatcher(logger *slog.Logger, subscribers ...Subscriber) *dispatcher {
	return &dispatcher{subscribers: subscribers, logger: logger}
}

func (d *dispatcher) Dispatch(ctx context.Context, db bun.IDB, event DomainEvent) error {
	for _, sub := range d.subscribers {
		if err := sub.Handle(ctx, db, event); err != nil {
			d.logger.DebugContext(ctx, "Domain event rejected",
				slog.String("event", event.EventName()),
				slog.String("subscriber", sub.Name()),
				slog.Any("error", err),
			)
			return err
		}
	}
	return nil
}
