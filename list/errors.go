package list

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a name or quantity is rejected before any store call.
	ErrValidation = errors.New("shoplist: validation failed")

	// ErrDuplicateItem is returned when an item with the same name (case-insensitive)
	// is already on the list.
	ErrDuplicateItem = errors.New("shoplist: item already on the list")

	// ErrNotSignedIn is returned when a mutation is attempted without an authenticated owner.
	ErrNotSignedIn = errors.New("shoplist: no authenticated owner")

	// ErrListNotFound is returned when the target list is not in the cache.
	ErrListNotFound = errors.New("shoplist: list not found")

	// ErrItemNotFound is returned when the target item is not on its list.
	ErrItemNotFound = errors.New("shoplist: item not found")

	// ErrStaleOwner is returned when a store response arrives for an owner
	// that is no longer signed in. The response is discarded.
	ErrStaleOwner = errors.New("shoplist: response belongs to a previous owner")
)

// StoreError reports a failed call to the list store. The cache is untouched
// whenever a StoreError is returned.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("shoplist: store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ValidationError describes which field was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("shoplist: invalid %s: %s", e.Field, e.Reason)
}

// Is reports ErrValidation so callers can match any validation failure.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
