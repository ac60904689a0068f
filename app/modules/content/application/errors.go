package contentservice

import (
	"errors"
	"fmt"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/google/uuid"
)

var (
	// ErrConcurrentOrderConflict is returned when the storage-level order constraint
	// rejects a commit that passed the sibling check under a concurrent writer.
	ErrConcurrentOrderConflict = errors.New("display order was taken by a concurrent change")
	// ErrNavigationCycle is returned when a navigation item would become its own descendant.
	ErrNavigationCycle = errors.New("navigation item cannot be its own descendant")
	// ErrInvalidInput is returned for malformed operation arguments.
	ErrInvalidInput = errors.New("invalid input")
)

// FieldError is implemented by failures that belong to one request field.
type FieldError interface {
	error
	Field() string
}

// OrderConflict reports that an order value is already used inside a scope.
type OrderConflict struct {
	EntityType           contentdb.EntityType
	EntityID             uuid.UUID
	DisplayName          string
	Order                int
	ContainerType        contentdb.ContainerType
	ContainerID          uuid.UUID
	ContainerDisplayName string
}

func (e *OrderConflict) Error() string {
	return fmt.Sprintf("Order [%d] of %s [%s] already used by another %s in the %s \"%s\".",
		e.Order, e.EntityType, e.DisplayName, e.EntityType, e.ContainerType, e.ContainerDisplayName)
}

func (e *OrderConflict) Field() string { return "order" }

// InvalidValue reports a field holding a value outside its allowed set.
type InvalidValue struct {
	FieldKey string
	Value    string
}

func (e *InvalidValue) Error() string {
	return fmt.Sprintf("%s %q is not allowed", e.FieldKey, e.Value)
}

func (e *InvalidValue) Field() string { return e.FieldKey }

func (e *InvalidValue) Unwrap() error { return ErrInvalidInput }

// RenderTypeIncompatible reports a Render whose type does not fit the slot it is attached to.
type RenderTypeIncompatible struct {
	RenderID   uuid.UUID
	RenderType contentdb.RenderType
	Slot       contentdb.SlotPurpose
}

func (e *RenderTypeIncompatible) Error() string {
	return fmt.Sprintf("render %s of type %q cannot be attached to a %q slot", e.RenderID, e.RenderType, e.Slot)
}

func (e *RenderTypeIncompatible) Field() string { return "render_id" }

// NavigationItemInvalid reports a navigation item that fails validation.
type NavigationItemInvalid struct {
	ItemID   uuid.UUID
	Label    string
	FieldKey string
	Reason   string
}

func (e *NavigationItemInvalid) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("navigation item is invalid: %s", e.Reason)
	}
	return fmt.Sprintf("navigation item %q is invalid: %s", e.Label, e.Reason)
}

func (e *NavigationItemInvalid) Field() string { return e.FieldKey }

// RenderRejected wraps a dependent failure that caused a Render update to be rejected.
type RenderRejected struct {
	RenderID uuid.UUID
	Cause    error
}

func (e *RenderRejected) Error() string {
	return fmt.Sprintf("render %s update rejected: %v", e.RenderID, e.Cause)
}

func (e *RenderRejected) Unwrap() error { return e.Cause }

// isDomainFailure reports whether err is a validation outcome rather than an infrastructure error.
func isDomainFailure(err error) bool {
	var fe FieldError
	var rr *RenderRejected
	return errors.As(err, &fe) ||
		errors.As(err, &rr) ||
		errors.Is(err, contentdb.ErrNotFound) ||
		errors.Is(err, ErrNavigationCycle) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrConcurrentOrderConflict)
}
