package cloner

import "github.com/google/uuid"

// IDFunc produces identifiers for new clones.
type IDFunc func() string

// GenerateID returns a random (version 4) UUID, the same shape Codex uses for
// its own session ids.
func GenerateID() string {
	return uuid.NewString()
}
