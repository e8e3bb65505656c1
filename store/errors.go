package store

import "errors"

var (
	// ErrNotFound is returned when a list doesn't exist, is deleted (has TTL <= now),
	// or is not owned by the caller.
	ErrNotFound = errors.New("shoplist: list not found in store")

	// ErrAlreadyExists is returned when attempting to create a list with an existing ID.
	ErrAlreadyExists = errors.New("shoplist: list already exists")

	// ErrInvalidRecord is returned when a stored item cannot be decoded into a list.
	ErrInvalidRecord = errors.New("shoplist: invalid list record")

	// ErrMissingOwner is returned when an operation is called without an owner ID.
	ErrMissingOwner = errors.New("shoplist: owner id is required")
)
