package models

import "errors"

// Error taxonomy shared by every layer. Handlers translate these to HTTP
// statuses; lower layers wrap them with context via fmt.Errorf and %w.
var (
	// ErrValidation - malformed or missing required field.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidReference - referenced Poll/Option does not exist, or an
	// option does not belong to the stated poll.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrDuplicateVote - the (poll, voter identity) slot is already taken.
	ErrDuplicateVote = errors.New("already voted on this poll")

	// ErrForbidden - caller is not allowed to perform the action.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound - referenced entity id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated - action requires authentication and none was
	// supplied, or the supplied credential is invalid.
	ErrUnauthenticated = errors.New("authentication required")
)
