package model

import (
	"strings"

	"github.com/google/uuid"
)

// LocalIDPrefix marks identifiers minted by a client before the server has
// confirmed the creation. Confirmed ids are opaque server-issued strings and
// never carry the prefix.
const LocalIDPrefix = "local:"

// NewID mints a confirmed identifier. Only the server calls this.
func NewID() string {
	return uuid.NewString()
}

// NewLocalID mints a provisional identifier for an optimistic creation.
func NewLocalID() string {
	return LocalIDPrefix + uuid.NewString()
}

// IsLocalID reports whether id is provisional.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}
