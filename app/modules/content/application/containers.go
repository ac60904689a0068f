package contentservice

import (
	"context"
	"errors"
	"fmt"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/Black-And-White-Club/club-cms/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type idsResult = results.OperationResult[[]uuid.UUID, error]

// CreateContainer stores a new page container.
func (s *ContentService) CreateContainer(ctx context.Context, rec contentdb.ContainerRecord) (contentdb.ContainerRecord, error) {
	createTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[contentdb.ContainerRecord, error], error) {
		if rec == nil {
			return failure[contentdb.ContainerRecord](fmt.Errorf("%w: container is nil", ErrInvalidInput))
		}
		if err := s.repo.InsertContainer(ctx, db, rec); err != nil {
			return failure[contentdb.ContainerRecord](err)
		}
		return results.SuccessResult[contentdb.ContainerRecord, error](rec), nil
	}

	out, err := unwrapResult(withTelemetry(s, ctx, "CreateContainer", "", func(ctx context.Context) (results.OperationResult[contentdb.ContainerRecord, error], error) {
		return runInTx(s, ctx, createTx)
	}))
	if err == nil {
		s.notify(ctx, ChangeNotice{Action: ActionCreated, Subject: string(out.ContainerType()), SubjectID: out.GetID()})
	}
	return out, err
}

// DeleteContainer removes a container. Its members stay in place, only the memberships go.
func (s *ContentService) DeleteContainer(ctx context.Context, t contentdb.ContainerType, id uuid.UUID) error {
	deleteTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		if err := s.repo.DeleteContainer(ctx, db, t, id); err != nil {
			if errors.Is(err, contentdb.ErrUnknownContainerType) {
				return failure[bool](fmt.Errorf("%w: %v", ErrInvalidInput, err))
			}
			return failure[bool](err)
		}
		return results.SuccessResult[bool, error](true), nil
	}

	_, err := unwrapResult(withTelemetry(s, ctx, "DeleteContainer", id.String(), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, deleteTx)
	}))
	if err == nil {
		s.notify(ctx, ChangeNotice{Action: ActionDeleted, Subject: string(t), SubjectID: id})
	}
	return err
}

// AddMembers associates a batch of entities with a container. Every newly added member
// is validated against the container's membership after the add; one conflict rejects
// the whole batch.
func (s *ContentService) AddMembers(ctx context.Context, assoc contentdb.Association, containerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	addTx := func(ctx context.Context, db bun.IDB) (idsResult, error) {
		return s.addMembersLogic(ctx, db, assoc, containerID, ids)
	}

	added, err := unwrapResult(withTelemetry(s, ctx, "AddMembers", assoc.Name+"/"+containerID.String(), func(ctx context.Context) (idsResult, error) {
		return runInTx(s, ctx, addTx)
	}))
	if err == nil && len(added) > 0 {
		s.notify(ctx, ChangeNotice{
			Action:    ActionMembersAdded,
			Subject:   string(assoc.ContainerType),
			SubjectID: containerID,
			Details:   map[string]any{"association": assoc.Name, "entity_ids": added},
		})
	}
	return added, err
}

func (s *ContentService) addMembersLogic(ctx context.Context, db bun.IDB, assoc contentdb.Association, containerID uuid.UUID, ids []uuid.UUID) (idsResult, error) {
	if len(ids) == 0 {
		return failure[[]uuid.UUID](fmt.Errorf("%w: no entities to add", ErrInvalidInput))
	}

	container, err := s.repo.GetContainer(ctx, db, assoc.ContainerType, containerID)
	if err != nil {
		return failure[[]uuid.UUID](err)
	}

	added, err := s.repo.AddMembers(ctx, db, assoc, container.ID, ids)
	if err != nil {
		return failure[[]uuid.UUID](err)
	}

	if len(added) > 0 {
		event := MembersAdded{Association: assoc, Container: container, EntityIDs: added}
		if err := s.events.Dispatch(ctx, db, event); err != nil {
			return failure[[]uuid.UUID](err)
		}
	}

	return results.SuccessResult[[]uuid.UUID, error](added), nil
}

// RemoveMembers detaches entities from a container.
func (s *ContentService) RemoveMembers(ctx context.Context, assoc contentdb.Association, containerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	removeTx := func(ctx context.Context, db bun.IDB) (idsResult, error) {
		container, err := s.repo.GetContainer(ctx, db, assoc.ContainerType, containerID)
		if err != nil {
			return failure[[]uuid.UUID](err)
		}
		removed, err := s.repo.RemoveMembers(ctx, db, assoc, container.ID, ids)
		if err != nil {
			return failure[[]uuid.UUID](err)
		}
		if len(removed) > 0 {
			event := MembersRemoved{Association: assoc, Container: container, EntityIDs: removed}
			if err := s.events.Dispatch(ctx, db, event); err != nil {
				return failure[[]uuid.UUID](err)
			}
		}
		return results.SuccessResult[[]uuid.UUID, error](removed), nil
	}

	removed, err := unwrapResult(withTelemetry(s, ctx, "RemoveMembers", assoc.Name+"/"+containerID.String(), func(ctx context.Context) (idsResult, error) {
		return runInTx(s, ctx, removeTx)
	}))
	if err == nil && len(removed) > 0 {
		s.notify(ctx, ChangeNotice{
			Action:    ActionMembersRemoved,
			Subject:   string(assoc.ContainerType),
			SubjectID: containerID,
			Details:   map[string]any{"association": assoc.Name, "entity_ids": removed},
		})
	}
	return removed, err
}

// ListMembers returns a container's members ordered by display order.
func (s *ContentService) ListMembers(ctx context.Context, assoc contentdb.Association, containerID uuid.UUID) ([]contentdb.Member, error) {
	listTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]contentdb.Member, error], error) {
		if _, err := s.repo.GetContainer(ctx, db, assoc.ContainerType, containerID); err != nil {
			return failure[[]contentdb.Member](err)
		}
		members, err := s.repo.ListMembers(ctx, db, assoc, containerID)
		if err != nil {
			return results.OperationResult[[]contentdb.Member, error]{}, err
		}
		return results.SuccessResult[[]contentdb.Member, error](members), nil
	}

	return unwrapResult(withTelemetry(s, ctx, "ListMembers", assoc.Name+"/"+containerID.String(), func(ctx context.Context) (results.OperationResult[[]contentdb.Member, error], error) {
		return runInTx(s, ctx, listTx)
	}))
}
