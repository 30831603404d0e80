package service

import (
	"errors"

	"gorm.io/gorm"
)

// Service errors surfaced to callers. Remote failures never escape as
// uncaught rejections: reads degrade to empty results, writes map to one of
// these, and the caller renders a notice instead of crashing.
var (
	// ErrNotLoggedIn marks a write attempted without an active session.
	ErrNotLoggedIn = errors.New("must be logged in")
	// ErrNotFound is a distinct state, not a transient error.
	ErrNotFound = errors.New("not found")
	// ErrEmptyContent marks a submission whose trimmed content is empty.
	ErrEmptyContent = errors.New("content must not be empty")
	// ErrInvalidContentType marks an unrecognised post content type.
	ErrInvalidContentType = errors.New("invalid content type")
	// ErrFetchInFlight marks a paginated fetch skipped because one is
	// already outstanding for the same hook instance.
	ErrFetchInFlight = errors.New("fetch already in flight")
)

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
