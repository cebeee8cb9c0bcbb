package store

import "errors"

// Structural violations are handled inside the store: the offending event is
// dropped and counted, never partially applied.
var (
	// ErrMissingParent is returned when an upsert or move references a
	// parent id absent from the store.
	ErrMissingParent = errors.New("parent row not found")

	// ErrRowNotFound is returned when an update or move targets an id with
	// no row.
	ErrRowNotFound = errors.New("row not found")

	// ErrBadPatch is returned when an event payload does not match the
	// entity it is addressed to.
	ErrBadPatch = errors.New("payload does not match entity kind")

	// ErrUnknownEntity is returned for an entity kind with no reducer.
	ErrUnknownEntity = errors.New("unknown entity kind")

	// ErrUnsupportedMove is returned for entity kinds without an ordering
	// among siblings.
	ErrUnsupportedMove = errors.New("entity kind is not movable")
)
