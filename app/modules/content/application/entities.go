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

type recordResult = results.OperationResult[contentdb.OrderedRecord, error]

func memberOf(rec contentdb.OrderedRecord) contentdb.Member {
	return contentdb.Member{ID: rec.GetID(), Order: rec.GetOrder(), DisplayName: rec.DisplayName()}
}

func validateOrder(rec contentdb.OrderedRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidInput)
	}
	if rec.GetOrder() < 0 {
		return fmt.Errorf("%w: order must not be negative", ErrInvalidInput)
	}
	if r, ok := rec.(*contentdb.Render); ok {
		return validateRender(r)
	}
	return nil
}

// validateRender rejects values outside the render enumerations. A navbar render needs a
// position; other types may leave it empty.
func validateRender(r *contentdb.Render) error {
	if !r.Type.Valid() {
		return &InvalidValue{FieldKey: "type", Value: string(r.Type)}
	}
	if r.NavBarPosition == "" && r.Type != contentdb.RenderNavBar {
		return nil
	}
	if !r.NavBarPosition.Valid() {
		return &InvalidValue{FieldKey: "nav_bar_position", Value: string(r.NavBarPosition)}
	}
	return nil
}

// CreateEntity stores a new, unassociated ordered entity. It cannot conflict until it
// joins a container.
func (s *ContentService) CreateEntity(ctx context.Context, rec contentdb.OrderedRecord) (contentdb.OrderedRecord, error) {
	createTx := func(ctx context.Context, db bun.IDB) (recordResult, error) {
		if err := validateOrder(rec); err != nil {
			return failure[contentdb.OrderedRecord](err)
		}
		if err := s.repo.InsertEntity(ctx, db, rec); err != nil {
			return failure[contentdb.OrderedRecord](err)
		}
		return results.SuccessResult[contentdb.OrderedRecord, error](rec), nil
	}

	out, err := unwrapResult(withTelemetry(s, ctx, "CreateEntity", entityLabel(rec), func(ctx context.Context) (recordResult, error) {
		return runInTx(s, ctx, createTx)
	}))
	if err == nil {
		s.notify(ctx, ChangeNotice{Action: ActionCreated, Subject: string(out.EntityType()), SubjectID: out.GetID()})
	}
	return out, err
}

// UpdateEntity rewrites an ordered entity, re-checks its order in every container it
// belongs to and raises EntityUpdated for the cascades.
func (s *ContentService) UpdateEntity(ctx context.Context, rec contentdb.OrderedRecord) (contentdb.OrderedRecord, error) {
	updateTx := func(ctx context.Context, db bun.IDB) (recordResult, error) {
		return s.updateEntityLogic(ctx, db, rec)
	}

	out, err := unwrapResult(withTelemetry(s, ctx, "UpdateEntity", entityLabel(rec), func(ctx context.Context) (recordResult, error) {
		return runInTx(s, ctx, updateTx)
	}))
	if err == nil {
		s.notify(ctx, ChangeNotice{
			Action:    ActionUpdated,
			Subject:   string(out.EntityType()),
			SubjectID: out.GetID(),
			Details:   map[string]any{"order": out.GetOrder()},
		})
	}
	return out, err
}

func (s *ContentService) updateEntityLogic(ctx context.Context, db bun.IDB, rec contentdb.OrderedRecord) (recordResult, error) {
	if err := validateOrder(rec); err != nil {
		return failure[contentdb.OrderedRecord](err)
	}

	before, err := s.repo.GetEntity(ctx, db, rec.EntityType(), rec.GetID())
	if err != nil {
		return failure[contentdb.OrderedRecord](err)
	}

	if err := s.repo.UpdateEntity(ctx, db, rec); err != nil {
		return failure[contentdb.OrderedRecord](err)
	}

	if err := s.engine.ValidateSave(ctx, db, rec.Scopes(), memberOf(rec)); err != nil {
		return failure[contentdb.OrderedRecord](err)
	}

	for _, assoc := range rec.Scopes() {
		if err := s.repo.SyncMemberOrder(ctx, db, assoc, rec.GetID(), rec.GetOrder()); err != nil {
			return results.OperationResult[contentdb.OrderedRecord, error]{}, err
		}
	}

	event := EntityUpdated{EntityType: rec.EntityType(), Before: before, After: rec}
	if err := s.events.Dispatch(ctx, db, event); err != nil {
		return failure[contentdb.OrderedRecord](err)
	}

	return results.SuccessResult[contentdb.OrderedRecord, error](rec), nil
}

// GetEntity loads an ordered entity.
func (s *ContentService) GetEntity(ctx context.Context, t contentdb.EntityType, id uuid.UUID) (contentdb.OrderedRecord, error) {
	getTx := func(ctx context.Context, db bun.IDB) (recordResult, error) {
		rec, err := s.repo.GetEntity(ctx, db, t, id)
		if err != nil {
			if errors.Is(err, contentdb.ErrUnknownEntityType) {
				return failure[contentdb.OrderedRecord](fmt.Errorf("%w: %v", ErrInvalidInput, err))
			}
			return failure[contentdb.OrderedRecord](err)
		}
		return results.SuccessResult[contentdb.OrderedRecord, error](rec), nil
	}

	return unwrapResult(withTelemetry(s, ctx, "GetEntity", id.String(), func(ctx context.Context) (recordResult, error) {
		return runInTx(s, ctx, getTx)
	}))
}

// DeleteEntity removes an ordered entity together with its memberships.
func (s *ContentService) DeleteEntity(ctx context.Context, t contentdb.EntityType, id uuid.UUID) error {
	deleteTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		if err := s.repo.DeleteEntity(ctx, db, t, id); err != nil {
			if errors.Is(err, contentdb.ErrUnknownEntityType) {
				return failure[bool](fmt.Errorf("%w: %v", ErrInvalidInput, err))
			}
			return failure[bool](err)
		}
		return results.SuccessResult[bool, error](true), nil
	}

	_, err := unwrapResult(withTelemetry(s, ctx, "DeleteEntity", id.String(), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, deleteTx)
	}))
	if err == nil {
		s.notify(ctx, ChangeNotice{Action: ActionDeleted, Subject: string(t), SubjectID: id})
	}
	return err
}

func entityLabel(rec contentdb.OrderedRecord) string {
	if rec == nil {
		return ""
	}
	return fmt.Sprintf("%s/%s", rec.EntityType(), rec.GetID())
}
