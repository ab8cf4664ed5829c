package domain

import "errors"

// Sentinel errors for the item domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates no item matches the requested id.
	ErrItemNotFound = errors.New("item not found")

	// ErrItemAlreadyExists indicates another item already has the same text, compared case-insensitively.
	ErrItemAlreadyExists = errors.New("item already exists")

	// ErrInvalidItem indicates the input violates item constraints (missing or malformed text, bad id).
	ErrInvalidItem = errors.New("invalid item")

	// ErrNothingToUpdate indicates an update request carried neither text nor completed.
	ErrNothingToUpdate = errors.New("no fields to update")
)
