package contentdb

import (
	"errors"
	"strings"

	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	// ErrNotFound is returned when a content record does not exist.
	ErrNotFound = errors.New("content record not found")

	ErrUnknownEntityType    = errors.New("unknown entity type")
	ErrUnknownContainerType = errors.New("unknown container type")
)

const (
	uniqueViolation = "23505"
	// Join tables name their display order constraint <table>_order_key.
	orderKeySuffix = "_order_key"
)

// IsOrderConflict reports whether err is a unique_violation of a join table's display
// order constraint. Other unique violations (primary keys, slot indexes) do not match.
func IsOrderConflict(err error) bool {
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) {
		return false
	}
	return isOrderKeyViolation(pgErr.Field('C'), pgErr.Field('n'))
}

func isOrderKeyViolation(code, constraint string) bool {
	return code == uniqueViolation && strings.HasSuffix(constraint, orderKeySuffix)
}
