package core

import "errors"

var (
	// ErrInvalidInput rejects a submission with neither content nor media,
	// or an otherwise malformed request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized means no verified identity accompanies the request.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the caller is not the owner of the target row.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the referenced post, comment or profile does not exist.
	ErrNotFound = errors.New("not found")

	// ErrModerationUnavailable means the classifier call failed or returned
	// malformed data. The submission fails outright: unavailability is never
	// treated as approval.
	ErrModerationUnavailable = errors.New("moderation unavailable")

	// ErrStorage means a persistence write failed after classification.
	ErrStorage = errors.New("storage error")
)
